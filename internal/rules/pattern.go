package rules

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"

	"github.com/polyscan/polyscan/internal/types"
)

// check evaluates one rule family against a single source unit.
type check func(unit types.SourceUnit) []types.Issue

// genericChecks run on every unit regardless of language.
var genericChecks = []check{
	findTodoMarkers,
	findSecrets,
	findMergeMarkers,
	findDynamicEval,
	findPrivateKeys,
	findInsecureHTTP,
	findLongLines,
	findTrailingWhitespace,
}

// languageChecks are pattern checks keyed by the unit's language.
var languageChecks = map[types.Language][]check{
	types.LangPython:     pythonChecks,
	types.LangJavaScript: javascriptChecks,
	types.LangJava:       javaChecks,
	types.LangKotlin:     kotlinChecks,
	types.LangDockerfile: dockerChecks,
	types.LangYAML:       kubernetesChecks,
}

// Evaluate runs every applicable pattern check for the unit and keeps
// only issues whose rule is in the active set.
func Evaluate(unit types.SourceUnit, active ActiveSet) []types.Issue {
	var out []types.Issue
	for _, c := range genericChecks {
		out = append(out, c(unit)...)
	}
	for _, c := range languageChecks[unit.Language] {
		out = append(out, c(unit)...)
	}
	return filterActive(out, active)
}

// EvaluateGeneric runs only the cross-language checks. The structural
// evaluator uses it as the fallback subset when a parse fails, and as the
// pattern complement for structurally analyzed files.
func EvaluateGeneric(unit types.SourceUnit, active ActiveSet) []types.Issue {
	var out []types.Issue
	for _, c := range genericChecks {
		out = append(out, c(unit)...)
	}
	return filterActive(out, active)
}

func filterActive(issues []types.Issue, active ActiveSet) []types.Issue {
	out := issues[:0]
	for _, is := range issues {
		if active.Enabled(is.RuleID) {
			out = append(out, is)
		}
	}
	return out
}

// NewIssue builds an issue inheriting title and severity from the catalog.
func NewIssue(ruleID string, unit types.SourceUnit, line, col int, msg string) types.Issue {
	r := byID[ruleID]
	return types.Issue{
		RuleID:   ruleID,
		Title:    r.Title,
		Severity: r.Severity,
		Message:  msg,
		Path:     unit.Path,
		Line:     line,
		Column:   col,
	}
}

// eachLine walks unit content line by line with 1-based numbering.
func eachLine(unit types.SourceUnit, fn func(n int, text string)) {
	sc := bufio.NewScanner(bytes.NewReader(unit.Content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		fn(n, sc.Text())
	}
}

// findSimple emits one issue per line matching re.
func findSimple(unit types.SourceUnit, re *regexp.Regexp, ruleID, msg string) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		if loc := re.FindStringIndex(text); loc != nil {
			out = append(out, NewIssue(ruleID, unit, n, loc[0]+1, msg))
		}
	})
	return out
}

var (
	reTodoMarker = regexp.MustCompile(`(?i)\b(TODO|FIXME)\b`)
	reSecret     = regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password)\s*[:=]\s*['"][^'"]{8,}['"]`)
	reDynEval    = regexp.MustCompile(`(?i)\b(eval|Function)\s*\(`)
	rePrivateKey = regexp.MustCompile(`-----BEGIN [A-Z0-9 ]*PRIVATE KEY-----`)
	reHTTPURL    = regexp.MustCompile(`http://[^\s'"<>]+`)
	reLoopback   = regexp.MustCompile(`http://(localhost|127\.0\.0\.1|0\.0\.0\.0|\[::1\])`)
)

const maxLineLength = 200

func findTodoMarkers(unit types.SourceUnit) []types.Issue {
	return findSimple(unit, reTodoMarker, "SS004",
		"Found TODO/FIXME marker. Track and resolve before release.")
}

func findSecrets(unit types.SourceUnit) []types.Issue {
	return findSimple(unit, reSecret, "SS003",
		"Potential credential/token assignment found in source.")
}

func findMergeMarkers(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		if len(text) >= 7 {
			head := text[:7]
			if head == "<<<<<<<" || head == ">>>>>>>" || (head == "=======" && len(text) == 7) {
				out = append(out, NewIssue("SS005", unit, n, 1,
					"Unresolved git merge marker found in source file."))
			}
		}
	})
	return out
}

func findDynamicEval(unit types.SourceUnit) []types.Issue {
	return findSimple(unit, reDynEval, "SS101",
		"Avoid dynamic evaluation patterns like eval()/Function().")
}

func findPrivateKeys(unit types.SourceUnit) []types.Issue {
	return findSimple(unit, rePrivateKey, "SS102",
		"Private key block marker detected. Remove secrets from source control.")
}

func findInsecureHTTP(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		for _, loc := range reHTTPURL.FindAllStringIndex(text, -1) {
			if reLoopback.MatchString(text[loc[0]:loc[1]]) {
				continue
			}
			out = append(out, NewIssue("SS107", unit, n, loc[0]+1,
				"Plain HTTP URL in source; prefer HTTPS."))
			return
		}
	})
	return out
}

func findLongLines(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		if len(text) > maxLineLength {
			out = append(out, NewIssue("SS010", unit, n, maxLineLength+1,
				fmt.Sprintf("Line has %d characters; keep it at or below %d.", len(text), maxLineLength)))
		}
	})
	return out
}

func findTrailingWhitespace(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		if text == "" {
			return
		}
		last := text[len(text)-1]
		if last == ' ' || last == '\t' {
			out = append(out, NewIssue("SS011", unit, n, len(text),
				"Line has trailing whitespace."))
		}
	})
	return out
}
