package report

import (
	"strings"
	"testing"

	"github.com/polyscan/polyscan/internal/types"
)

func TestPrintSummary(t *testing.T) {
	var sb strings.Builder
	verdict := types.QualityGateResult{
		Passed: false,
		Violations: []types.GateViolation{
			{Threshold: "max_high", Observed: "2", Message: "high issue count 2 exceeds max_high=1."},
		},
	}
	PrintSummary(&sb, sampleReport(), PrintOptions{NoColor: true, Verdict: &verdict})
	out := sb.String()

	for _, want := range []string{
		"SS003", "a.py:2", "Files scanned: 4", "high: 2",
		"Quality gate: FAILED", "max_high",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummaryPassedAndTruncated(t *testing.T) {
	var sb strings.Builder
	verdict := types.QualityGateResult{Passed: true}
	PrintSummary(&sb, sampleReport(), PrintOptions{NoColor: true, MaxRows: 1, Verdict: &verdict})
	out := sb.String()
	if !strings.Contains(out, "... and 2 more") {
		t.Errorf("output missing truncation marker:\n%s", out)
	}
	if !strings.Contains(out, "Quality gate: PASSED") {
		t.Errorf("output missing pass verdict:\n%s", out)
	}
}

func TestPrintSummaryEmpty(t *testing.T) {
	var sb strings.Builder
	PrintSummary(&sb, types.ScanReport{FilesScanned: 3}, PrintOptions{NoColor: true})
	if !strings.Contains(sb.String(), "No issues found") {
		t.Errorf("output = %q", sb.String())
	}
}
