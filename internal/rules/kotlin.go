package rules

import (
	"fmt"
	"regexp"

	"github.com/polyscan/polyscan/internal/types"
)

var kotlinChecks = []check{
	findKtPackageNaming,
	findKtClassNaming,
	findKtFunctionNaming,
	findKtParamCounts,
	findKtNesting,
	findKtCommandExec,
}

var (
	reKtPackage = regexp.MustCompile(`^\s*package\s+([A-Za-z_][\w.]*)`)
	reKtClass   = regexp.MustCompile(`^\s*(?:data\s+|sealed\s+|open\s+|abstract\s+|enum\s+)*class\s+([A-Za-z_]\w*)`)
	reKtFun     = regexp.MustCompile(`^\s*(?:suspend\s+|inline\s+|private\s+|internal\s+|public\s+)*fun\s+(?:<[^>]*>\s*)?([A-Za-z_]\w*)\s*\(([^)]*)\)?`)
	reKtExec    = regexp.MustCompile(`\bRuntime\s*\.\s*getRuntime\s*\(\s*\)\s*\.\s*exec\s*\(|\bProcessBuilder\s*\(`)
)

const (
	maxKtParams  = 6
	maxKtNesting = 4
)

func findKtPackageNaming(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := reKtPackage.FindStringSubmatchIndex(text)
		if m == nil {
			return
		}
		if !reLowerDotted.MatchString(text[m[2]:m[3]]) {
			out = append(out, NewIssue("SS501", unit, n, m[2]+1,
				"Kotlin package names should be lowercase dotted identifiers."))
		}
	})
	return out
}

func findKtClassNaming(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := reKtClass.FindStringSubmatchIndex(text)
		if m == nil {
			return
		}
		if !reUpperCamel.MatchString(text[m[2]:m[3]]) {
			out = append(out, NewIssue("SS502", unit, n, m[2]+1,
				"Class names should be UpperCamelCase."))
		}
	})
	return out
}

func findKtFunctionNaming(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := reKtFun.FindStringSubmatchIndex(text)
		if m == nil {
			return
		}
		if !reCamelCase.MatchString(text[m[2]:m[3]]) {
			out = append(out, NewIssue("SS503", unit, n, m[2]+1,
				"Function names should be camelCase."))
		}
	})
	return out
}

func findKtParamCounts(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := reKtFun.FindStringSubmatch(text)
		if m == nil {
			return
		}
		if count := countParams(m[2]); count > maxKtParams {
			out = append(out, NewIssue("SS504", unit, n, 1,
				fmt.Sprintf("Function has %d parameters; target at most %d.", count, maxKtParams)))
		}
	})
	return out
}

func findKtNesting(unit types.SourceUnit) []types.Issue {
	return braceNestingIssue(unit, "SS506", maxKtNesting)
}

func findKtCommandExec(unit types.SourceUnit) []types.Issue {
	return findSimple(unit, reKtExec, "SS507",
		"Avoid Runtime.exec/ProcessBuilder with untrusted input.")
}
