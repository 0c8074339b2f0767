package polyscan

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/polyscan/polyscan/internal/config"
	"github.com/polyscan/polyscan/internal/coverage"
	"github.com/polyscan/polyscan/internal/engine"
	"github.com/polyscan/polyscan/internal/gate"
	"github.com/polyscan/polyscan/internal/report"
	"github.com/polyscan/polyscan/internal/rules"
	"github.com/polyscan/polyscan/internal/types"
)

var (
	flagConfig       string
	flagPath         string
	flagExclude      []string
	flagExcludeGlob  []string
	flagEnable       []string
	flagDisable      []string
	flagSecurityOnly bool
	flagNoInline     bool
	flagGenerated    bool
	flagMaxSizeKB    int
	flagThreads      int
	flagMinDupLines  int

	flagFormat string
	flagOut    string

	flagFailOn      string
	flagMaxIssues   int
	flagMaxFiles    int
	flagMaxLow      int
	flagMaxMedium   int
	flagMaxHigh     int
	flagMaxCritical int
	flagCoverageXML string
	flagMinCoverage float64
	flagBaseline    string
	flagGateNewOnly bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Analyze a source tree and evaluate the quality gate",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to polyscan.toml (default: ./polyscan.toml if present)")
	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "path to scan")
	cmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "directory names to skip (repeatable)")
	cmd.Flags().StringSliceVar(&flagExcludeGlob, "exclude-glob", nil, "path globs to skip, ** supported (repeatable)")
	cmd.Flags().StringSliceVar(&flagEnable, "enable-rule", nil, "only run these rule IDs (repeatable)")
	cmd.Flags().StringSliceVar(&flagDisable, "disable-rule", nil, "disable these rule IDs (repeatable)")
	cmd.Flags().BoolVar(&flagSecurityOnly, "security-only", false, "restrict the scan to security rules")
	cmd.Flags().BoolVar(&flagNoInline, "no-inline-ignore", false, "do not honor polyscan:ignore comments")
	cmd.Flags().BoolVar(&flagGenerated, "include-generated", false, "also scan generated artifacts and lockfiles")
	cmd.Flags().IntVar(&flagMaxSizeKB, "max-file-size-kb", 0, "skip files larger than this (0 = config default)")
	cmd.Flags().IntVar(&flagThreads, "threads", 0, "worker count (0 = NumCPU)")
	cmd.Flags().IntVar(&flagMinDupLines, "min-dup-lines", 0, "minimum duplicated block height (0 = default)")

	cmd.Flags().StringVar(&flagFormat, "format", "", "report format: json|sarif")
	cmd.Flags().StringVarP(&flagOut, "out", "o", "", "write the report to this file instead of stdout")

	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "fail when any issue is at or above: low|medium|high|critical")
	cmd.Flags().IntVar(&flagMaxIssues, "max-issues", -1, "fail when total issues exceed this")
	cmd.Flags().IntVar(&flagMaxFiles, "max-files-with-issues", -1, "fail when files with issues exceed this")
	cmd.Flags().IntVar(&flagMaxLow, "max-low", -1, "fail when low issues exceed this")
	cmd.Flags().IntVar(&flagMaxMedium, "max-medium", -1, "fail when medium issues exceed this")
	cmd.Flags().IntVar(&flagMaxHigh, "max-high", -1, "fail when high issues exceed this")
	cmd.Flags().IntVar(&flagMaxCritical, "max-critical", -1, "fail when critical issues exceed this")
	cmd.Flags().StringVar(&flagCoverageXML, "coverage-xml", "", "Cobertura XML coverage report")
	cmd.Flags().Float64Var(&flagMinCoverage, "min-coverage", -1, "fail when line coverage percent is below this")
	cmd.Flags().StringVar(&flagBaseline, "baseline-report", "", "previous JSON report used for novelty gating")
	cmd.Flags().BoolVar(&flagGateNewOnly, "gate-new-only", false, "gate only issues absent from the baseline report")
}

func runScan(cmd *cobra.Command, args []string) error {
	root := flagPath
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return errors.New(strings.Join(msgs, "; "))
	}

	active, err := rules.Resolve(cfg.Scan.EnabledRules, cfg.Scan.DisabledRules, cfg.Scan.SecurityOnly)
	if err != nil {
		return err
	}

	var cov *types.Coverage
	if cfg.Scan.CoverageXML != "" {
		c, err := coverage.ReadFile(cfg.Scan.CoverageXML)
		if err != nil {
			return fmt.Errorf("coverage: %w", err)
		}
		cov = &c
	}

	var baseline *report.Baseline
	if cfg.Gate.BaselineReport != "" {
		b, err := report.LoadBaseline(cfg.Gate.BaselineReport)
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		baseline = &b
	}

	logger := newLogger()
	rep, err := engine.Scan(cmd.Context(), engine.Config{
		Root:             root,
		Excludes:         cfg.Scan.Exclude,
		ExcludeGlobs:     cfg.Scan.ExcludeGlobs,
		IncludeExts:      cfg.Scan.IncludeExts,
		IncludeFilenames: cfg.Scan.IncludeFilenames,
		MaxFileSize:      int64(cfg.Scan.MaxFileSizeKB) * 1024,
		SkipGenerated:    cfg.Scan.SkipGeneratedEnabled(),
		InlineIgnore:     cfg.Scan.InlineIgnoreEnabled(),
		MinDupLines:      cfg.Scan.MinDupLines,
		Threads:          cfg.Scan.Threads,
		Active:           active,
		Coverage:         cov,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	verdict := gate.Evaluate(rep, cfg.Gate, gate.Options{
		Baseline:      baseline,
		OnlyNewIssues: cfg.Gate.OnlyNewIssues,
	})

	if err := writeReport(rep, cfg, verdict); err != nil {
		return err
	}
	if !verdict.Passed {
		return errGateFailed
	}
	return nil
}

// applyFlags layers explicitly set CLI flags over the file config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if len(flagExclude) > 0 {
		cfg.Scan.Exclude = append(cfg.Scan.Exclude, flagExclude...)
	}
	if len(flagExcludeGlob) > 0 {
		cfg.Scan.ExcludeGlobs = append(cfg.Scan.ExcludeGlobs, flagExcludeGlob...)
	}
	if len(flagEnable) > 0 {
		cfg.Scan.EnabledRules = upperAll(flagEnable)
	}
	if len(flagDisable) > 0 {
		cfg.Scan.DisabledRules = upperAll(flagDisable)
	}
	if flagSecurityOnly {
		cfg.Scan.SecurityOnly = true
	}
	if flagNoInline {
		off := false
		cfg.Scan.InlineIgnore = &off
	}
	if flagGenerated {
		off := false
		cfg.Scan.SkipGenerated = &off
	}
	if flagMaxSizeKB > 0 {
		cfg.Scan.MaxFileSizeKB = flagMaxSizeKB
	}
	if flagThreads > 0 {
		cfg.Scan.Threads = flagThreads
	}
	if flagMinDupLines > 0 {
		cfg.Scan.MinDupLines = flagMinDupLines
	}
	if flagCoverageXML != "" {
		cfg.Scan.CoverageXML = flagCoverageXML
	}

	if flagFormat != "" {
		cfg.Report.Format = flagFormat
	}
	if flagOut != "" {
		cfg.Report.Out = flagOut
	}

	if flagFailOn != "" {
		cfg.Gate.FailOn = strings.ToLower(flagFailOn)
	}
	setCap := func(name string, value int, dst **int) {
		if f.Changed(name) {
			v := value
			*dst = &v
		}
	}
	setCap("max-issues", flagMaxIssues, &cfg.Gate.MaxIssues)
	setCap("max-files-with-issues", flagMaxFiles, &cfg.Gate.MaxFilesWithIssue)
	setCap("max-low", flagMaxLow, &cfg.Gate.MaxLow)
	setCap("max-medium", flagMaxMedium, &cfg.Gate.MaxMedium)
	setCap("max-high", flagMaxHigh, &cfg.Gate.MaxHigh)
	setCap("max-critical", flagMaxCritical, &cfg.Gate.MaxCritical)
	if f.Changed("min-coverage") {
		v := flagMinCoverage
		cfg.Gate.MinCoverage = &v
	}
	if flagBaseline != "" {
		cfg.Gate.BaselineReport = flagBaseline
	}
	if flagGateNewOnly {
		cfg.Gate.OnlyNewIssues = true
	}
}

func writeReport(rep types.ScanReport, cfg config.Config, verdict types.QualityGateResult) error {
	switch cfg.Report.Format {
	case "", "json":
		if err := report.WriteJSON(rep, cfg.Report.Out); err != nil {
			return err
		}
	case "sarif":
		if err := report.WriteSARIF(rep, cfg.Report.Out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown report format %q", cfg.Report.Format)
	}

	// The machine report owns stdout when no output file is set, so the
	// human summary goes to stderr in that case.
	summaryOut := os.Stdout
	if cfg.Report.Out == "" {
		summaryOut = os.Stderr
	}
	report.PrintSummary(summaryOut, rep, report.PrintOptions{
		NoColor: flagNoColor,
		Verdict: &verdict,
	})
	return nil
}

func upperAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strings.ToUpper(strings.TrimSpace(id))
	}
	return out
}
