// Package rules holds the immutable rule catalog and the pattern rule
// evaluator. Structural evaluation of Go sources lives in
// internal/structural; both produce the same Issue shape.
package rules

import (
	"fmt"
	"sort"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/polyscan/polyscan/internal/types"
)

// Strategy says how a rule is detected.
type Strategy string

const (
	StrategyPattern    Strategy = "pattern"
	StrategyStructural Strategy = "structural"
)

// RuleDuplicateBlock is detected by the cross-file duplicate pass rather
// than a per-file check, so the engine references it by ID.
const RuleDuplicateBlock = "SS020"

// Rule is static metadata for one check. Rules are process-wide
// configuration, constructed once and never mutated during a scan.
type Rule struct {
	ID       string
	Title    string
	Severity types.Severity
	Strategy Strategy
	Security bool
	// Languages the rule applies to; empty means every language.
	Languages []types.Language
}

var catalog = []Rule{
	// Generic, every language.
	{ID: "SS003", Title: "Potential hardcoded secret", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true},
	{ID: "SS004", Title: "Work item marker in source", Severity: types.SevLow, Strategy: StrategyPattern},
	{ID: "SS005", Title: "Unresolved merge conflict marker", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true},
	{ID: "SS010", Title: "Line exceeds maximum length", Severity: types.SevLow, Strategy: StrategyPattern},
	{ID: "SS011", Title: "Trailing whitespace", Severity: types.SevLow, Strategy: StrategyPattern},
	{ID: "SS020", Title: "Duplicated code block", Severity: types.SevMedium, Strategy: StrategyPattern},
	{ID: "SS101", Title: "Dynamic code evaluation usage", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true},
	{ID: "SS102", Title: "Private key material in source", Severity: types.SevCritical, Strategy: StrategyPattern, Security: true},
	{ID: "SS107", Title: "Insecure HTTP URL literal", Severity: types.SevMedium, Strategy: StrategyPattern, Security: true},

	// Dockerfile hardening.
	{ID: "SS108", Title: "Dockerfile runs as root", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangDockerfile}},
	{ID: "SS109", Title: "Docker image uses latest tag", Severity: types.SevMedium, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangDockerfile}},
	{ID: "SS110", Title: "Docker curl/wget piped to shell", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangDockerfile}},

	// Kubernetes manifest hardening.
	{ID: "SS111", Title: "Kubernetes privileged container", Severity: types.SevCritical, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangYAML}},
	{ID: "SS112", Title: "Kubernetes privilege escalation allowed", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangYAML}},
	{ID: "SS113", Title: "Kubernetes container may run as root", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangYAML}},
	{ID: "SS114", Title: "Kubernetes host namespace sharing", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangYAML}},

	// Java.
	{ID: "SS201", Title: "Java package naming convention", Severity: types.SevLow, Strategy: StrategyPattern, Languages: []types.Language{types.LangJava}},
	{ID: "SS202", Title: "Java type naming convention", Severity: types.SevMedium, Strategy: StrategyPattern, Languages: []types.Language{types.LangJava}},
	{ID: "SS204", Title: "Java method naming convention", Severity: types.SevLow, Strategy: StrategyPattern, Languages: []types.Language{types.LangJava}},
	{ID: "SS205", Title: "Java constant naming convention", Severity: types.SevLow, Strategy: StrategyPattern, Languages: []types.Language{types.LangJava}},
	{ID: "SS206", Title: "Java method has too many parameters", Severity: types.SevMedium, Strategy: StrategyPattern, Languages: []types.Language{types.LangJava}},
	{ID: "SS208", Title: "Java nesting depth too high", Severity: types.SevMedium, Strategy: StrategyPattern, Languages: []types.Language{types.LangJava}},
	{ID: "SS221", Title: "Java command execution usage", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangJava}},

	// Python (pattern analysis).
	{ID: "SS006", Title: "Shell execution with shell=True", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangPython}},
	{ID: "SS007", Title: "Unsafe YAML deserialization", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangPython}},
	{ID: "SS008", Title: "Unsafe pickle deserialization", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangPython}},
	{ID: "SS009", Title: "TLS verification disabled", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangPython}},
	{ID: "SS211", Title: "Too many function parameters", Severity: types.SevMedium, Strategy: StrategyPattern, Languages: []types.Language{types.LangPython}},
	{ID: "SS213", Title: "Python function naming convention", Severity: types.SevLow, Strategy: StrategyPattern, Languages: []types.Language{types.LangPython}},
	{ID: "SS214", Title: "Python class naming convention", Severity: types.SevLow, Strategy: StrategyPattern, Languages: []types.Language{types.LangPython}},

	// JavaScript / TypeScript.
	{ID: "SS301", Title: "JavaScript function naming convention", Severity: types.SevLow, Strategy: StrategyPattern, Languages: []types.Language{types.LangJavaScript}},
	{ID: "SS302", Title: "React component naming convention", Severity: types.SevLow, Strategy: StrategyPattern, Languages: []types.Language{types.LangJavaScript}},
	{ID: "SS303", Title: "JavaScript function has too many parameters", Severity: types.SevMedium, Strategy: StrategyPattern, Languages: []types.Language{types.LangJavaScript}},
	{ID: "SS305", Title: "JavaScript nesting depth too high", Severity: types.SevMedium, Strategy: StrategyPattern, Languages: []types.Language{types.LangJavaScript}},
	{ID: "SS306", Title: "Node.js command execution usage", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangJavaScript}},

	// Go (structural analysis over the parse tree).
	{ID: "SS401", Title: "Go package naming convention", Severity: types.SevLow, Strategy: StrategyStructural, Languages: []types.Language{types.LangGo}},
	{ID: "SS402", Title: "Go function naming convention", Severity: types.SevLow, Strategy: StrategyStructural, Languages: []types.Language{types.LangGo}},
	{ID: "SS403", Title: "Go function has too many parameters", Severity: types.SevMedium, Strategy: StrategyStructural, Languages: []types.Language{types.LangGo}},
	{ID: "SS404", Title: "Go function too long", Severity: types.SevMedium, Strategy: StrategyStructural, Languages: []types.Language{types.LangGo}},
	{ID: "SS405", Title: "Go nesting depth too high", Severity: types.SevMedium, Strategy: StrategyStructural, Languages: []types.Language{types.LangGo}},
	{ID: "SS406", Title: "Go import fan-out too high", Severity: types.SevMedium, Strategy: StrategyStructural, Languages: []types.Language{types.LangGo}},
	{ID: "SS407", Title: "Go TLS verification disabled", Severity: types.SevCritical, Strategy: StrategyStructural, Security: true, Languages: []types.Language{types.LangGo}},
	{ID: "SS408", Title: "Go shell command execution", Severity: types.SevHigh, Strategy: StrategyStructural, Security: true, Languages: []types.Language{types.LangGo}},
	{ID: "SS409", Title: "Broad recover without re-panic", Severity: types.SevMedium, Strategy: StrategyStructural, Languages: []types.Language{types.LangGo}},
	{ID: "SS410", Title: "Go constant naming convention", Severity: types.SevLow, Strategy: StrategyStructural, Languages: []types.Language{types.LangGo}},
	{ID: "SS411", Title: "Unsafe memory or dynamic loading", Severity: types.SevHigh, Strategy: StrategyStructural, Security: true, Languages: []types.Language{types.LangGo}},
	{ID: "SS412", Title: "Type has too many methods", Severity: types.SevMedium, Strategy: StrategyStructural, Languages: []types.Language{types.LangGo}},
	{ID: "SS413", Title: "Low type cohesion", Severity: types.SevMedium, Strategy: StrategyStructural, Languages: []types.Language{types.LangGo}},

	// Kotlin.
	{ID: "SS501", Title: "Kotlin package naming convention", Severity: types.SevLow, Strategy: StrategyPattern, Languages: []types.Language{types.LangKotlin}},
	{ID: "SS502", Title: "Kotlin class naming convention", Severity: types.SevLow, Strategy: StrategyPattern, Languages: []types.Language{types.LangKotlin}},
	{ID: "SS503", Title: "Kotlin function naming convention", Severity: types.SevLow, Strategy: StrategyPattern, Languages: []types.Language{types.LangKotlin}},
	{ID: "SS504", Title: "Kotlin function has too many parameters", Severity: types.SevMedium, Strategy: StrategyPattern, Languages: []types.Language{types.LangKotlin}},
	{ID: "SS506", Title: "Kotlin nesting depth too high", Severity: types.SevMedium, Strategy: StrategyPattern, Languages: []types.Language{types.LangKotlin}},
	{ID: "SS507", Title: "Kotlin command execution usage", Severity: types.SevHigh, Strategy: StrategyPattern, Security: true, Languages: []types.Language{types.LangKotlin}},
}

var byID = func() map[string]Rule {
	m := make(map[string]Rule, len(catalog))
	for _, r := range catalog {
		m[r.ID] = r
	}
	return m
}()

// All returns the full catalog ordered by rule ID.
func All() []Rule {
	out := make([]Rule, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup returns the rule for id.
func Lookup(id string) (Rule, bool) {
	r, ok := byID[id]
	return r, ok
}

// ActiveSet is the resolved set of enabled rule IDs for one scan.
type ActiveSet map[string]bool

// Enabled reports whether id participates in the scan.
func (s ActiveSet) Enabled(id string) bool {
	return s[id]
}

// Fingerprint is a stable hash of the active rule IDs, recorded in the
// report metadata so two runs are comparable.
func (s ActiveSet) Fingerprint() string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join(ids, ",")))
}

// Resolve builds the active set from an optional allowlist, a disable
// list, and security-only mode. Unknown IDs are configuration errors.
// An allowlist combined with security-only narrows within the security
// subset rather than overriding it.
func Resolve(enabled []string, disabled []string, securityOnly bool) (ActiveSet, error) {
	for _, id := range append(append([]string{}, enabled...), disabled...) {
		if _, ok := byID[strings.ToUpper(id)]; !ok {
			return nil, fmt.Errorf("unknown rule id %q", id)
		}
	}
	set := ActiveSet{}
	if len(enabled) > 0 {
		for _, id := range enabled {
			set[strings.ToUpper(id)] = true
		}
	} else {
		for _, r := range catalog {
			set[r.ID] = true
		}
	}
	if securityOnly {
		for id := range set {
			if !byID[id].Security {
				delete(set, id)
			}
		}
	}
	for _, id := range disabled {
		delete(set, strings.ToUpper(id))
	}
	return set, nil
}

// SecurityRuleIDs returns the security-tagged subset of the catalog.
func SecurityRuleIDs() []string {
	var ids []string
	for _, r := range All() {
		if r.Security {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// IsSecurityRule reports whether id carries the security tag.
func IsSecurityRule(id string) bool {
	r, ok := byID[id]
	return ok && r.Security
}
