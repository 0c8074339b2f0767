package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/polyscan/polyscan/internal/types"
)

var javascriptChecks = []check{
	findJSNaming,
	findJSParamCounts,
	findJSNesting,
	findJSChildProcess,
}

var (
	reJSFuncDecl  = regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_]\w*)\s*\(([^)]*)\)`)
	reJSArrowDecl = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_]\w*)\s*=\s*(?:async\s+)?\(([^)]*)\)\s*=>`)
	reJSXReturn   = regexp.MustCompile(`<[A-Z][A-Za-z0-9]*`)
	reCamelCase   = regexp.MustCompile(`^[a-z][A-Za-z0-9]*$`)
	reChildProc   = regexp.MustCompile(`\b(?:require\s*\(\s*['"]child_process['"]\s*\)|from\s+['"]child_process['"]|child_process\s*\.\s*(?:exec|execSync|spawn))`)
)

const (
	maxJSParams  = 6
	maxJSNesting = 4
)

func findJSNaming(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	componentHint := reJSXReturn.Match(unit.Content)
	eachLine(unit, func(n int, text string) {
		m := reJSFuncDecl.FindStringSubmatchIndex(text)
		if m == nil {
			m = reJSArrowDecl.FindStringSubmatchIndex(text)
		}
		if m == nil {
			return
		}
		name := text[m[2]:m[3]]
		if componentHint && reUpperCamel.MatchString(name) {
			return
		}
		if reUpperCamel.MatchString(name) {
			out = append(out, NewIssue("SS302", unit, n, m[2]+1,
				"UpperCamelCase names are reserved for React components."))
			return
		}
		if !reCamelCase.MatchString(name) {
			out = append(out, NewIssue("SS301", unit, n, m[2]+1,
				"Function names should be camelCase."))
		}
	})
	return out
}

func findJSParamCounts(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := reJSFuncDecl.FindStringSubmatch(text)
		if m == nil {
			m = reJSArrowDecl.FindStringSubmatch(text)
		}
		if m == nil {
			return
		}
		if count := countParams(m[2]); count > maxJSParams {
			out = append(out, NewIssue("SS303", unit, n, 1,
				fmt.Sprintf("Function has %d parameters; target at most %d.", count, maxJSParams)))
		}
	})
	return out
}

func findJSNesting(unit types.SourceUnit) []types.Issue {
	return braceNestingIssue(unit, "SS305", maxJSNesting)
}

func findJSChildProcess(unit types.SourceUnit) []types.Issue {
	return findSimple(unit, reChildProc, "SS306",
		"Avoid child_process execution with untrusted input.")
}

// braceNestingIssue reports a single file-level issue when brace nesting
// exceeds the limit. Shared by the curly-brace language checks.
func braceNestingIssue(unit types.SourceUnit, ruleID string, limit int) []types.Issue {
	depth, maxDepth := 0, 0
	eachLine(unit, func(_ int, text string) {
		depth += strings.Count(text, "{")
		if d := depth - 1; d > maxDepth {
			maxDepth = d
		}
		depth -= strings.Count(text, "}")
		if depth < 0 {
			depth = 0
		}
	})
	if maxDepth <= limit {
		return nil
	}
	return []types.Issue{NewIssue(ruleID, unit, 1, 1,
		fmt.Sprintf("Maximum block nesting depth is %d; keep it at or below %d.", maxDepth, limit))}
}
