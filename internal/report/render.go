package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/polyscan/polyscan/internal/types"
)

// PrintOptions controls the terminal rendering of a report.
type PrintOptions struct {
	NoColor bool
	MaxRows int
	Verdict *types.QualityGateResult
}

// PrintSummary writes a human-oriented issue listing and summary footer.
// Issues arrive already ordered by the engine.
func PrintSummary(w io.Writer, rep types.ScanReport, opts PrintOptions) {
	issues := rep.Issues
	if opts.MaxRows > 0 && len(issues) > opts.MaxRows {
		issues = issues[:opts.MaxRows]
	}
	if len(rep.Issues) == 0 {
		fmt.Fprintln(w, "No issues found")
	}
	for _, is := range issues {
		fmt.Fprintf(w, "%-8s %-6s %s:%d  %s\n",
			renderSeverity(is.Severity, opts.NoColor), is.RuleID, is.Path, is.Line, is.Message)
	}
	if opts.MaxRows > 0 && len(rep.Issues) > opts.MaxRows {
		fmt.Fprintf(w, "... and %d more\n", len(rep.Issues)-opts.MaxRows)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files scanned: %d  Issues: %d (low: %d, medium: %d, high: %d, critical: %d)\n",
		rep.FilesScanned, len(rep.Issues),
		rep.SeverityCounts[types.SevLow], rep.SeverityCounts[types.SevMedium],
		rep.SeverityCounts[types.SevHigh], rep.SeverityCounts[types.SevCritical])
	if rep.Coverage != nil {
		fmt.Fprintf(w, "Coverage: %.2f%%\n", rep.Coverage.Percent())
	}
	for _, note := range rep.Notes {
		if note.Path != "" {
			fmt.Fprintf(w, "note: %s: %s\n", note.Path, note.Message)
		} else {
			fmt.Fprintf(w, "note: %s\n", note.Message)
		}
	}

	if opts.Verdict != nil {
		printVerdict(w, *opts.Verdict, opts.NoColor)
	}
}

func printVerdict(w io.Writer, verdict types.QualityGateResult, noColor bool) {
	fmt.Fprintln(w)
	if verdict.Passed {
		fmt.Fprintln(w, statusText("Quality gate: PASSED", color.FgGreen, noColor))
		return
	}
	fmt.Fprintln(w, statusText("Quality gate: FAILED", color.FgRed, noColor))
	for _, v := range verdict.Violations {
		fmt.Fprintf(w, "  %s: %s\n", v.Threshold, v.Message)
	}
}

func renderSeverity(s types.Severity, noColor bool) string {
	if noColor {
		return string(s)
	}
	switch s {
	case types.SevCritical:
		return color.New(color.FgRed, color.Bold).Sprint(string(s))
	case types.SevHigh:
		return color.New(color.FgRed).Sprint(string(s))
	case types.SevMedium:
		return color.New(color.FgYellow).Sprint(string(s))
	default:
		return color.New(color.FgCyan).Sprint(string(s))
	}
}

func statusText(text string, c color.Attribute, noColor bool) string {
	if noColor {
		return text
	}
	return color.New(c, color.Bold).Sprint(text)
}
