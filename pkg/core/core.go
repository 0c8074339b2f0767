package core

import (
	"context"

	"github.com/polyscan/polyscan/internal/engine"
	"github.com/polyscan/polyscan/internal/gate"
	"github.com/polyscan/polyscan/internal/rules"
	"github.com/polyscan/polyscan/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Config = engine.Config
type Issue = types.Issue
type ScanReport = types.ScanReport
type GateOptions = gate.Options
type QualityGateResult = types.QualityGateResult

// Scan is the stable entrypoint for other programs.
func Scan(ctx context.Context, cfg Config) (ScanReport, error) {
	return engine.Scan(ctx, cfg)
}

// RuleIDs returns the IDs of every catalog rule.
func RuleIDs() []string {
	all := rules.All()
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	return ids
}

// SecurityRuleIDs returns the IDs of the security-tagged rules.
func SecurityRuleIDs() []string { return rules.SecurityRuleIDs() }
