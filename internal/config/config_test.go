package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "polyscan.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	_ = cfg

	cfg, err = Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultExcludes, cfg.Scan.Exclude)
	require.Equal(t, 1024, cfg.Scan.MaxFileSizeKB)
	require.Equal(t, "json", cfg.Report.Format)
	require.True(t, cfg.Scan.SkipGeneratedEnabled())
	require.True(t, cfg.Scan.InlineIgnoreEnabled())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[scan]
exclude = ["target"]
enabled_rules = ["ss003", "ss101"]
inline_ignore = false
max_file_size_kb = 256

[quality_gate]
fail_on = "high"
max_issues = 10
min_coverage = 80.0
baseline_report = "old.json"
only_new_issues = true

[report]
format = "sarif"
out = "report.sarif"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"target"}, cfg.Scan.Exclude)
	require.Equal(t, []string{"SS003", "SS101"}, cfg.Scan.EnabledRules)
	require.False(t, cfg.Scan.InlineIgnoreEnabled())
	require.Equal(t, 256, cfg.Scan.MaxFileSizeKB)
	require.Equal(t, "high", cfg.Gate.FailOn)
	require.NotNil(t, cfg.Gate.MaxIssues)
	require.Equal(t, 10, *cfg.Gate.MaxIssues)
	require.NotNil(t, cfg.Gate.MinCoverage)
	require.Equal(t, 80.0, *cfg.Gate.MinCoverage)
	require.True(t, cfg.Gate.OnlyNewIssues)
	require.Equal(t, "sarif", cfg.Report.Format)
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, `[scan`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateEmptyAllowlist(t *testing.T) {
	cfg := Default()
	cfg.Scan.EnabledRules = []string{}
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "enabled_rules")

	cfg.Scan.EnabledRules = nil
	require.Empty(t, cfg.Validate())
}

func TestValidateFailOn(t *testing.T) {
	cfg := Default()
	cfg.Gate.FailOn = "severe"
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	require.True(t, errors.Is(errs[0], ErrInvalidGate))
}

func TestValidateNegativeCaps(t *testing.T) {
	neg := -1
	cfg := Default()
	cfg.Gate.MaxIssues = &neg
	cfg.Gate.MaxHigh = &neg
	errs := cfg.Validate()
	require.Len(t, errs, 2)
}

func TestValidateCoverageBounds(t *testing.T) {
	over := 120.0
	cfg := Default()
	cfg.Gate.MinCoverage = &over
	cfg.Scan.CoverageXML = "cov.xml"
	require.Len(t, cfg.Validate(), 1)

	ok := 80.0
	cfg.Gate.MinCoverage = &ok
	require.Empty(t, cfg.Validate())
}

func TestValidateMinCoverageNeedsSource(t *testing.T) {
	v := 80.0
	cfg := Default()
	cfg.Gate.MinCoverage = &v
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "coverage_xml")
}

func TestValidateNewOnlyNeedsBaseline(t *testing.T) {
	cfg := Default()
	cfg.Gate.OnlyNewIssues = true
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "baseline_report")
}

func TestValidateReportsEveryProblem(t *testing.T) {
	neg := -5
	cfg := Default()
	cfg.Gate.FailOn = "bogus"
	cfg.Gate.MaxCritical = &neg
	cfg.Gate.OnlyNewIssues = true
	require.Len(t, cfg.Validate(), 3)
}
