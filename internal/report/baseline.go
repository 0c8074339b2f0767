package report

import (
	"encoding/json"
	"fmt"
	"os"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/polyscan/polyscan/internal/types"
)

// Baseline is a prior report's issue set reduced to stable fingerprints.
// Read-only once loaded; the engine never writes it during a scan.
type Baseline struct {
	items map[uint64]bool
}

// Fingerprint derives the stable identity of an issue for baseline
// comparison: rule id, path, line, and message.
func Fingerprint(is types.Issue) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%s|%s|%d|%s", is.RuleID, is.Path, is.Line, is.Message))
}

// Has reports whether the issue was present in the baseline.
func (b Baseline) Has(is types.Issue) bool {
	return b.items[Fingerprint(is)]
}

// Len returns the number of baseline fingerprints.
func (b Baseline) Len() int {
	return len(b.items)
}

// FromIssues builds a baseline in memory, mostly for tests and for the
// baseline write path.
func FromIssues(issues []types.Issue) Baseline {
	b := Baseline{items: make(map[uint64]bool, len(issues))}
	for _, is := range issues {
		b.items[Fingerprint(is)] = true
	}
	return b
}

// LoadBaseline reads a previously serialized JSON report and reduces its
// issues to fingerprints. A missing or malformed file is an error; the
// caller treats it as a configuration failure, never a silent pass.
func LoadBaseline(path string) (Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Baseline{}, fmt.Errorf("load baseline: %w", err)
	}
	var payload struct {
		Issues []types.Issue `json:"issues"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return Baseline{}, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	if payload.Issues == nil {
		return Baseline{}, fmt.Errorf("baseline %s has no issues array", path)
	}
	return FromIssues(payload.Issues), nil
}
