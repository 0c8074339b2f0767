// Package gate applies severity and count thresholds to a finished scan
// report and produces the pass/fail verdict CI pipelines act on. The
// evaluator never errors and never short-circuits: every violated
// threshold appears in the result.
package gate

import (
	"fmt"

	"github.com/polyscan/polyscan/internal/config"
	"github.com/polyscan/polyscan/internal/report"
	"github.com/polyscan/polyscan/internal/types"
)

// Options carries the gate inputs beyond the report itself. Baseline is
// optional; when set together with OnlyNewIssues, baseline-known issues
// are excluded from every count used for gating while staying visible in
// the raw report.
type Options struct {
	Baseline      *report.Baseline
	OnlyNewIssues bool
}

// Evaluate runs the single-pass threshold evaluation.
func Evaluate(rep types.ScanReport, cfg config.Gate, opts Options) types.QualityGateResult {
	issues := gatedIssues(rep.Issues, opts)

	var violations []types.GateViolation
	add := func(threshold string, observed, msg string) {
		violations = append(violations, types.GateViolation{
			Threshold: threshold,
			Observed:  observed,
			Message:   msg,
		})
	}

	sevCounts := map[types.Severity]int{}
	files := map[string]bool{}
	for _, is := range issues {
		sevCounts[is.Severity]++
		files[is.Path] = true
	}

	if cfg.FailOn != "" {
		threshold := types.Severity(cfg.FailOn)
		n := 0
		for _, is := range issues {
			if is.Severity.Rank() >= threshold.Rank() {
				n++
			}
		}
		if n > 0 {
			add("fail_on", fmt.Sprintf("%d", n),
				fmt.Sprintf("Detected %d issue(s) at or above severity %q.", n, cfg.FailOn))
		}
	}

	if cfg.MaxIssues != nil && len(issues) > *cfg.MaxIssues {
		add("max_issues", fmt.Sprintf("%d", len(issues)),
			fmt.Sprintf("Issue count %d exceeds max_issues=%d.", len(issues), *cfg.MaxIssues))
	}
	if cfg.MaxFilesWithIssue != nil && len(files) > *cfg.MaxFilesWithIssue {
		add("max_files_with_issues", fmt.Sprintf("%d", len(files)),
			fmt.Sprintf("Affected file count %d exceeds max_files_with_issues=%d.", len(files), *cfg.MaxFilesWithIssue))
	}

	perSeverity := []struct {
		name     string
		severity types.Severity
		limit    *int
	}{
		{"max_low", types.SevLow, cfg.MaxLow},
		{"max_medium", types.SevMedium, cfg.MaxMedium},
		{"max_high", types.SevHigh, cfg.MaxHigh},
		{"max_critical", types.SevCritical, cfg.MaxCritical},
	}
	for _, ps := range perSeverity {
		if ps.limit == nil {
			continue
		}
		if n := sevCounts[ps.severity]; n > *ps.limit {
			add(ps.name, fmt.Sprintf("%d", n),
				fmt.Sprintf("%s issue count %d exceeds %s=%d.", ps.severity, n, ps.name, *ps.limit))
		}
	}

	if cfg.MinCoverage != nil && rep.Coverage != nil {
		if pct := rep.Coverage.Percent(); pct < *cfg.MinCoverage {
			add("min_coverage", fmt.Sprintf("%.2f", pct),
				fmt.Sprintf("Coverage %.2f%% is below min_coverage=%.2f%%.", pct, *cfg.MinCoverage))
		}
	}

	return types.QualityGateResult{
		Passed:     len(violations) == 0,
		Violations: violations,
	}
}

// gatedIssues returns the issues counted for gating. Novelty filtering
// drops baseline-known fingerprints; the raw report is untouched.
func gatedIssues(issues []types.Issue, opts Options) []types.Issue {
	if opts.Baseline == nil || !opts.OnlyNewIssues {
		return issues
	}
	var out []types.Issue
	for _, is := range issues {
		if !opts.Baseline.Has(is) {
			out = append(out, is)
		}
	}
	return out
}
