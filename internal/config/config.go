// Package config loads the polyscan.toml configuration file and
// validates the quality-gate section. Gate misconfiguration fails fast
// before a verdict is produced.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/polyscan/polyscan/internal/types"
)

// DefaultFileName is looked up in the working directory when no
// --config is given.
const DefaultFileName = "polyscan.toml"

// Scan controls file selection and rule activation.
type Scan struct {
	Exclude          []string `toml:"exclude"`
	ExcludeGlobs     []string `toml:"exclude_globs"`
	IncludeExts      []string `toml:"include_extensions"`
	IncludeFilenames []string `toml:"include_filenames"`
	MaxFileSizeKB    int      `toml:"max_file_size_kb"`
	SkipGenerated    *bool    `toml:"skip_generated"`
	EnabledRules     []string `toml:"enabled_rules"`
	DisabledRules    []string `toml:"disabled_rules"`
	SecurityOnly     bool     `toml:"security_only"`
	InlineIgnore     *bool    `toml:"inline_ignore"`
	CoverageXML      string   `toml:"coverage_xml"`
	MinDupLines      int      `toml:"min_duplicate_lines"`
	Threads          int      `toml:"threads"`
}

// Gate carries the quality-gate thresholds. Nil means "not configured".
type Gate struct {
	FailOn            string   `toml:"fail_on"`
	MaxIssues         *int     `toml:"max_issues"`
	MaxFilesWithIssue *int     `toml:"max_files_with_issues"`
	MaxLow            *int     `toml:"max_low"`
	MaxMedium         *int     `toml:"max_medium"`
	MaxHigh           *int     `toml:"max_high"`
	MaxCritical       *int     `toml:"max_critical"`
	MinCoverage       *float64 `toml:"min_coverage"`
	BaselineReport    string   `toml:"baseline_report"`
	OnlyNewIssues     bool     `toml:"only_new_issues"`
}

// Report selects the output encoding and destination.
type Report struct {
	Format string `toml:"format"`
	Out    string `toml:"out"`
}

// Config is the root of polyscan.toml.
type Config struct {
	Scan   Scan   `toml:"scan"`
	Gate   Gate   `toml:"quality_gate"`
	Report Report `toml:"report"`
}

// DefaultExcludes mirror common build and dependency directories.
var DefaultExcludes = []string{".git", ".venv", "venv", "node_modules", "vendor", "build", "dist", "__pycache__"}

// DefaultIncludeExts is the candidate extension list when the config is
// silent.
var DefaultIncludeExts = []string{
	".go", ".py", ".js", ".jsx", ".ts", ".tsx", ".java", ".kt", ".kts",
	".rs", ".c", ".h", ".cpp", ".hpp", ".cs", ".php", ".rb", ".swift",
	".scala", ".sql", ".yaml", ".yml", ".json", ".toml", ".ini", ".cfg",
	".sh", ".bash", ".zsh", ".ps1", ".dockerfile", ".md",
}

// DefaultIncludeFilenames are extensionless files scanned by name.
var DefaultIncludeFilenames = []string{"Dockerfile", "Jenkinsfile", "Makefile", "Vagrantfile", ".env"}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Scan: Scan{
			Exclude:          append([]string{}, DefaultExcludes...),
			IncludeExts:      append([]string{}, DefaultIncludeExts...),
			IncludeFilenames: append([]string{}, DefaultIncludeFilenames...),
			MaxFileSizeKB:    1024,
		},
		Report: Report{Format: "json"},
	}
}

// Load reads a config file, applying defaults for unset fields. An empty
// path falls back to DefaultFileName when it exists, else pure defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFileName); err != nil {
			return cfg, nil
		}
		path = DefaultFileName
	}
	var fileCfg Config
	if _, err := toml.DecodeFile(path, &fileCfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	mergeFile(&cfg, fileCfg)
	normalize(&cfg)
	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if len(src.Scan.Exclude) > 0 {
		dst.Scan.Exclude = src.Scan.Exclude
	}
	if len(src.Scan.IncludeExts) > 0 {
		dst.Scan.IncludeExts = src.Scan.IncludeExts
	}
	if len(src.Scan.IncludeFilenames) > 0 {
		dst.Scan.IncludeFilenames = src.Scan.IncludeFilenames
	}
	dst.Scan.ExcludeGlobs = src.Scan.ExcludeGlobs
	if src.Scan.MaxFileSizeKB > 0 {
		dst.Scan.MaxFileSizeKB = src.Scan.MaxFileSizeKB
	}
	dst.Scan.SkipGenerated = src.Scan.SkipGenerated
	dst.Scan.EnabledRules = src.Scan.EnabledRules
	dst.Scan.DisabledRules = src.Scan.DisabledRules
	dst.Scan.SecurityOnly = src.Scan.SecurityOnly
	dst.Scan.InlineIgnore = src.Scan.InlineIgnore
	dst.Scan.CoverageXML = src.Scan.CoverageXML
	dst.Scan.MinDupLines = src.Scan.MinDupLines
	dst.Scan.Threads = src.Scan.Threads
	dst.Gate = src.Gate
	if src.Report.Format != "" {
		dst.Report.Format = src.Report.Format
	}
	dst.Report.Out = src.Report.Out
}

func normalize(cfg *Config) {
	for i, id := range cfg.Scan.EnabledRules {
		cfg.Scan.EnabledRules[i] = strings.ToUpper(id)
	}
	for i, id := range cfg.Scan.DisabledRules {
		cfg.Scan.DisabledRules[i] = strings.ToUpper(id)
	}
}

// SkipGeneratedEnabled resolves the tri-state skip_generated flag;
// generated artifacts are skipped unless explicitly overridden.
func (s Scan) SkipGeneratedEnabled() bool {
	return s.SkipGenerated == nil || *s.SkipGenerated
}

// InlineIgnoreEnabled resolves the tri-state inline_ignore flag; inline
// suppression is honored by default.
func (s Scan) InlineIgnoreEnabled() bool {
	return s.InlineIgnore == nil || *s.InlineIgnore
}

// ErrInvalidGate marks configuration errors detected before gating.
var ErrInvalidGate = errors.New("invalid quality gate configuration")

// Validate checks the gate and rule configuration. Every problem is
// reported, not just the first.
func (c Config) Validate() []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidGate, fmt.Sprintf(format, args...)))
	}

	// An explicitly empty allowlist would fall through to the full
	// catalog in rules.Resolve, the opposite of what was asked for.
	if c.Scan.EnabledRules != nil && len(c.Scan.EnabledRules) == 0 {
		fail("enabled_rules must be non-empty when set")
	}
	if c.Gate.FailOn != "" && !types.Severity(c.Gate.FailOn).Valid() {
		fail("fail_on must be one of: low, medium, high, critical")
	}
	caps := []struct {
		name  string
		value *int
	}{
		{"max_issues", c.Gate.MaxIssues},
		{"max_files_with_issues", c.Gate.MaxFilesWithIssue},
		{"max_low", c.Gate.MaxLow},
		{"max_medium", c.Gate.MaxMedium},
		{"max_high", c.Gate.MaxHigh},
		{"max_critical", c.Gate.MaxCritical},
	}
	for _, limit := range caps {
		if limit.value != nil && *limit.value < 0 {
			fail("%s must be >= 0", limit.name)
		}
	}
	if c.Gate.MinCoverage != nil && (*c.Gate.MinCoverage < 0 || *c.Gate.MinCoverage > 100) {
		fail("min_coverage must be between 0 and 100")
	}
	if c.Gate.MinCoverage != nil && c.Scan.CoverageXML == "" {
		fail("min_coverage requires coverage_xml")
	}
	if c.Gate.OnlyNewIssues && c.Gate.BaselineReport == "" {
		fail("only_new_issues requires baseline_report")
	}
	return errs
}
