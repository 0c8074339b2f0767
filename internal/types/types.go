package types

import "time"

// Severity is the ordered risk ladder for an issue.
type Severity string

const (
	SevLow      Severity = "low"
	SevMedium   Severity = "medium"
	SevHigh     Severity = "high"
	SevCritical Severity = "critical"
)

// Rank maps a severity onto the ordered ladder. Unknown severities rank
// below low so threshold comparisons stay safe.
func (s Severity) Rank() int {
	switch s {
	case SevLow:
		return 1
	case SevMedium:
		return 2
	case SevHigh:
		return 3
	case SevCritical:
		return 4
	default:
		return 0
	}
}

// Valid reports whether s names one of the four ladder levels.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// Severities lists the ladder from low to critical.
func Severities() []Severity {
	return []Severity{SevLow, SevMedium, SevHigh, SevCritical}
}

// SourceUnit is one candidate file handed to the engine: path relative to
// the scan root, detected language, and full content. Immutable once read.
type SourceUnit struct {
	Path     string
	Language Language
	Content  []byte
	Size     int64
}

// Issue describes one finding at a path and line. Severity is inherited
// from the rule at match time and never recomputed afterwards.
type Issue struct {
	RuleID   string   `json:"rule_id"`
	Title    string   `json:"title"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Path     string   `json:"file_path"`
	Line     int      `json:"line"`
	Column   int      `json:"column,omitempty"`
	Snippet  string   `json:"snippet,omitempty"`
}

// Note records a file-level degradation (skipped, oversized, parse
// fallback). Notes ride along with the report but are not issues.
type Note struct {
	Path    string `json:"file_path,omitempty"`
	Message string `json:"message"`
}

// Coverage is a parsed line-coverage summary. LineRate is in [0,1].
type Coverage struct {
	LineRate     float64 `json:"line_rate"`
	LinesCovered int     `json:"lines_covered,omitempty"`
	LinesValid   int     `json:"lines_valid,omitempty"`
}

// Percent returns the line rate as a percentage.
func (c Coverage) Percent() float64 {
	return c.LineRate * 100.0
}

// ScanReport is the assembled result of one scan run. Issues are ordered
// by (path, line, rule id) regardless of scan concurrency.
type ScanReport struct {
	Issues             []Issue          `json:"issues"`
	Notes              []Note           `json:"notes,omitempty"`
	FilesScanned       int              `json:"files_scanned"`
	FilesWithIssues    int              `json:"files_with_issues"`
	SeverityCounts     map[Severity]int `json:"severity_counts"`
	RuleSetFingerprint string           `json:"rule_set_fingerprint"`
	GeneratedAt        time.Time        `json:"generated_at"`
	Coverage           *Coverage        `json:"coverage,omitempty"`
}

// GateViolation names one violated threshold with the observed value.
type GateViolation struct {
	Threshold string `json:"threshold"`
	Observed  string `json:"observed"`
	Message   string `json:"message"`
}

// QualityGateResult is the terminal pass/fail verdict. Violations carry
// every threshold that failed, never just the first.
type QualityGateResult struct {
	Passed     bool            `json:"passed"`
	Violations []GateViolation `json:"violations,omitempty"`
}
