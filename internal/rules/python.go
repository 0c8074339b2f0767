package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/polyscan/polyscan/internal/types"
)

var pythonChecks = []check{
	findPySubprocessShell,
	findPyUnsafeYAML,
	findPyPickleLoad,
	findPyVerifyFalse,
	findPyNaming,
	findPyParamCounts,
}

var (
	rePyShellTrue   = regexp.MustCompile(`\bsubprocess\s*\.\s*(run|Popen|call|check_call|check_output)\s*\([^)]*shell\s*=\s*True`)
	rePyYAMLLoad    = regexp.MustCompile(`\byaml\s*\.\s*load\s*\(`)
	rePySafeLoader  = regexp.MustCompile(`Loader\s*=\s*yaml\s*\.\s*SafeLoader`)
	rePyPickleLoad  = regexp.MustCompile(`\bpickle\s*\.\s*loads?\s*\(`)
	rePyVerifyFalse = regexp.MustCompile(`\brequests\s*\.\s*\w+\s*\([^)]*verify\s*=\s*False`)
	rePyDef         = regexp.MustCompile(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(([^)]*)\)?`)
	rePyClass       = regexp.MustCompile(`^\s*class\s+([A-Za-z_]\w*)`)
	reSnakeCase     = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	reUpperCamel    = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
)

const maxPyParams = 6

func findPySubprocessShell(unit types.SourceUnit) []types.Issue {
	return findSimple(unit, rePyShellTrue, "SS006",
		"Avoid subprocess calls with shell=True; pass argument arrays instead.")
}

func findPyUnsafeYAML(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		if rePyYAMLLoad.MatchString(text) && !rePySafeLoader.MatchString(text) {
			out = append(out, NewIssue("SS007", unit, n, 1,
				"Use yaml.safe_load() or pass Loader=yaml.SafeLoader to yaml.load()."))
		}
	})
	return out
}

func findPyPickleLoad(unit types.SourceUnit) []types.Issue {
	return findSimple(unit, rePyPickleLoad, "SS008",
		"Avoid unpickling untrusted data; use a safe serialization format.")
}

func findPyVerifyFalse(unit types.SourceUnit) []types.Issue {
	return findSimple(unit, rePyVerifyFalse, "SS009",
		"Certificate verification disabled with verify=False.")
}

func findPyNaming(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		if m := rePyDef.FindStringSubmatchIndex(text); m != nil {
			name := text[m[2]:m[3]]
			if !pyFunctionNameAllowed(name) {
				out = append(out, NewIssue("SS213", unit, n, m[2]+1,
					"Function names should be snake_case."))
			}
		}
		if m := rePyClass.FindStringSubmatchIndex(text); m != nil {
			name := text[m[2]:m[3]]
			if !reUpperCamel.MatchString(name) {
				out = append(out, NewIssue("SS214", unit, n, m[2]+1,
					"Class names should be UpperCamelCase."))
			}
		}
	})
	return out
}

func findPyParamCounts(unit types.SourceUnit) []types.Issue {
	var out []types.Issue
	eachLine(unit, func(n int, text string) {
		m := rePyDef.FindStringSubmatch(text)
		if m == nil {
			return
		}
		count := countParams(m[2], "self", "cls")
		if count > maxPyParams {
			out = append(out, NewIssue("SS211", unit, n, 1,
				fmt.Sprintf("Function has %d parameters; target at most %d.", count, maxPyParams)))
		}
	})
	return out
}

func pyFunctionNameAllowed(name string) bool {
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return true
	}
	return reSnakeCase.MatchString(name)
}

// countParams counts comma-separated parameters, skipping the listed
// receiver-style names.
func countParams(params string, skip ...string) int {
	text := strings.TrimSpace(params)
	if text == "" {
		return 0
	}
	count := 0
	for _, part := range strings.Split(text, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		name := p
		if i := strings.IndexAny(name, ":=* "); i >= 0 && i > 0 {
			name = name[:i]
		}
		skipped := false
		for _, s := range skip {
			if name == s {
				skipped = true
				break
			}
		}
		if !skipped {
			count++
		}
	}
	return count
}
