package rules

import (
	"fmt"
	"regexp"

	"github.com/polyscan/polyscan/internal/types"
)

var javaChecks = []check{
	findJavaPackageNaming,
	findJavaTypeNaming,
	findJavaMethodNaming,
	findJavaConstantNaming,
	findJavaParamCounts,
	findJavaNesting,
	findJavaCommandExec,
}

var (
	reJavaPackage  = regexp.MustCompile(`^\s*package\s+([A-Za-z_][\w.]*)\s*;`)
	reJavaType     = regexp.MustCompile(`^\s*(?:public\s+|final\s+|abstract\s+)*(?:class|interface|enum|record)\s+([A-Za-z_]\w*)`)
	reJavaMethod   = regexp.MustCompile(`^\s*(?:public|protected|private)\s+(?:static\s+)?[\w<>\[\], ?]+\s+([A-Za-z_]\w*)\s*\(([^)]*)\)`)
	reJavaConstant = regexp.MustCompile(`\b(?:public\s+)?static\s+final\s+[\w<>\[\], ?]+\s+([A-Za-z_]\w*)\b`)
	reJavaExec     = regexp.MustCompile(`\bRuntime\s*\.\s*getRuntime\s*\(\s*\)\s*\.\s*exec\s*\(|\bnew\s+ProcessBuilder\s*\(`)
	reLowerDotted  = regexp.MustCompile(`^[a-z][a-z0-9]*(\.[a-z][a-z0-9_]*)*$`)
	reUpperSnake   = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

const (
	maxJavaParams  = 6
	maxJavaNesting = 4
)

func findJavaPackageNaming(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := reJavaPackage.FindStringSubmatchIndex(text)
		if m == nil {
			return
		}
		if !reLowerDotted.MatchString(text[m[2]:m[3]]) {
			out = append(out, NewIssue("SS201", unit, n, m[2]+1,
				"Java package names should be lowercase dotted identifiers."))
		}
	})
	return out
}

func findJavaTypeNaming(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := reJavaType.FindStringSubmatchIndex(text)
		if m == nil {
			return
		}
		if !reUpperCamel.MatchString(text[m[2]:m[3]]) {
			out = append(out, NewIssue("SS202", unit, n, m[2]+1,
				"Type names should be UpperCamelCase."))
		}
	})
	return out
}

func findJavaMethodNaming(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := reJavaMethod.FindStringSubmatchIndex(text)
		if m == nil {
			return
		}
		name := text[m[2]:m[3]]
		// Constructors share the type's UpperCamelCase name.
		if reUpperCamel.MatchString(name) {
			return
		}
		if !reCamelCase.MatchString(name) {
			out = append(out, NewIssue("SS204", unit, n, m[2]+1,
				"Method names should be camelCase."))
		}
	})
	return out
}

func findJavaConstantNaming(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := reJavaConstant.FindStringSubmatchIndex(text)
		if m == nil {
			return
		}
		if !reUpperSnake.MatchString(text[m[2]:m[3]]) {
			out = append(out, NewIssue("SS205", unit, n, m[2]+1,
				"Constants should be UPPER_SNAKE_CASE."))
		}
	})
	return out
}

func findJavaParamCounts(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := reJavaMethod.FindStringSubmatch(text)
		if m == nil {
			return
		}
		if count := countParams(m[2]); count > maxJavaParams {
			out = append(out, NewIssue("SS206", unit, n, 1,
				fmt.Sprintf("Method has %d parameters; target at most %d.", count, maxJavaParams)))
		}
	})
	return out
}

func findJavaNesting(unit types.SourceUnit) []types.Issue {
	return braceNestingIssue(unit, "SS208", maxJavaNesting)
}

func findJavaCommandExec(unit types.SourceUnit) []types.Issue {
	return findSimple(unit, reJavaExec, "SS221",
		"Avoid Runtime.exec/ProcessBuilder with untrusted input.")
}
