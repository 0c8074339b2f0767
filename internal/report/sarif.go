package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/polyscan/polyscan/internal/rules"
	"github.com/polyscan/polyscan/internal/types"
)

const toolName = "polyscan"

// WriteSARIF serializes the report as SARIF 2.1.0 to the given path, or
// stdout when the path is empty.
func WriteSARIF(rep types.ScanReport, out string) error {
	doc, err := buildSARIF(rep)
	if err != nil {
		return err
	}
	var w io.Writer = os.Stdout
	if out != "" {
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create report directory: %w", err)
			}
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return doc.PrettyWrite(w)
}

func buildSARIF(rep types.ScanReport) (*sarif.Report, error) {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("create sarif report: %w", err)
	}
	run := sarif.NewRunWithInformationURI(toolName, "https://github.com/polyscan/polyscan")

	seen := map[string]bool{}
	for _, is := range rep.Issues {
		if !seen[is.RuleID] {
			seen[is.RuleID] = true
			desc := is.Title
			if r, ok := rules.Lookup(is.RuleID); ok {
				desc = r.Title
			}
			run.AddRule(is.RuleID).
				WithDescription(desc).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: severityToLevel(is.Severity),
				})
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(is.Path)).
				WithRegion(sarif.NewRegion().WithStartLine(is.Line)),
		)
		result := sarif.NewRuleResult(is.RuleID).
			WithMessage(sarif.NewTextMessage(fmt.Sprintf("%s: %s", is.Title, is.Message))).
			WithLevel(severityToLevel(is.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}

	if rep.Coverage != nil {
		run.Properties = sarif.Properties{"coverageLinePercent": rep.Coverage.Percent()}
	}
	doc.AddRun(run)
	return doc, nil
}

func severityToLevel(s types.Severity) string {
	switch s {
	case types.SevHigh, types.SevCritical:
		return "error"
	case types.SevMedium:
		return "warning"
	default:
		return "note"
	}
}
