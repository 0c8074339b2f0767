package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/polyscan/polyscan/internal/rules"
	"github.com/polyscan/polyscan/internal/types"
)

// Payload is the serialized JSON report shape.
type Payload struct {
	FilesScanned       int              `json:"files_scanned"`
	FilesWithIssues    int              `json:"files_with_issues"`
	IssuesTotal        int              `json:"issues_total"`
	SeverityCounts     map[string]int   `json:"severity_counts"`
	RuleCounts         map[string]int   `json:"rule_counts"`
	SecuritySummary    SecuritySummary  `json:"security_summary"`
	RuleSetFingerprint string           `json:"rule_set_fingerprint"`
	GeneratedAt        time.Time        `json:"generated_at"`
	Notes              []types.Note     `json:"notes,omitempty"`
	Coverage           *CoveragePayload `json:"coverage,omitempty"`
	Issues             []types.Issue    `json:"issues"`
}

// SecuritySummary aggregates the security-tagged subset of the report.
type SecuritySummary struct {
	IssuesTotal     int            `json:"issues_total"`
	FilesWithIssues int            `json:"files_with_issues"`
	SeverityCounts  map[string]int `json:"severity_counts"`
	RuleCounts      map[string]int `json:"rule_counts"`
	TopFiles        []FileCount    `json:"top_files"`
}

// FileCount pairs a path with its security issue count.
type FileCount struct {
	Path   string `json:"file_path"`
	Issues int    `json:"issues"`
}

// CoveragePayload serializes the coverage block.
type CoveragePayload struct {
	LineRate     float64 `json:"line_rate"`
	LinePercent  float64 `json:"line_percent"`
	LinesCovered int     `json:"lines_covered,omitempty"`
	LinesValid   int     `json:"lines_valid,omitempty"`
}

// BuildPayload assembles the serializable report from a ScanReport.
func BuildPayload(rep types.ScanReport) Payload {
	sevCounts := map[string]int{}
	for _, s := range types.Severities() {
		sevCounts[string(s)] = rep.SeverityCounts[s]
	}
	ruleCounts := map[string]int{}
	for _, is := range rep.Issues {
		ruleCounts[is.RuleID]++
	}

	p := Payload{
		FilesScanned:       rep.FilesScanned,
		FilesWithIssues:    rep.FilesWithIssues,
		IssuesTotal:        len(rep.Issues),
		SeverityCounts:     sevCounts,
		RuleCounts:         ruleCounts,
		SecuritySummary:    buildSecuritySummary(rep.Issues),
		RuleSetFingerprint: rep.RuleSetFingerprint,
		GeneratedAt:        rep.GeneratedAt,
		Notes:              rep.Notes,
		Issues:             rep.Issues,
	}
	if p.Issues == nil {
		p.Issues = []types.Issue{}
	}
	if rep.Coverage != nil {
		p.Coverage = &CoveragePayload{
			LineRate:     rep.Coverage.LineRate,
			LinePercent:  rep.Coverage.Percent(),
			LinesCovered: rep.Coverage.LinesCovered,
			LinesValid:   rep.Coverage.LinesValid,
		}
	}
	return p
}

func buildSecuritySummary(issues []types.Issue) SecuritySummary {
	s := SecuritySummary{
		SeverityCounts: map[string]int{},
		RuleCounts:     map[string]int{},
	}
	for _, sev := range types.Severities() {
		s.SeverityCounts[string(sev)] = 0
	}
	fileCounts := map[string]int{}
	for _, is := range issues {
		if !rules.IsSecurityRule(is.RuleID) {
			continue
		}
		s.IssuesTotal++
		s.SeverityCounts[string(is.Severity)]++
		s.RuleCounts[is.RuleID]++
		fileCounts[is.Path]++
	}
	s.FilesWithIssues = len(fileCounts)
	for path, n := range fileCounts {
		s.TopFiles = append(s.TopFiles, FileCount{Path: path, Issues: n})
	}
	sort.Slice(s.TopFiles, func(i, j int) bool {
		if s.TopFiles[i].Issues != s.TopFiles[j].Issues {
			return s.TopFiles[i].Issues > s.TopFiles[j].Issues
		}
		return s.TopFiles[i].Path < s.TopFiles[j].Path
	})
	if len(s.TopFiles) > 10 {
		s.TopFiles = s.TopFiles[:10]
	}
	return s
}

// WriteJSON serializes the payload to the given path, or stdout when the
// path is empty.
func WriteJSON(rep types.ScanReport, out string) error {
	data, err := json.MarshalIndent(BuildPayload(rep), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	return os.WriteFile(out, data, 0o644)
}
