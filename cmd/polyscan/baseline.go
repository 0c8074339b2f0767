package polyscan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/polyscan/polyscan/internal/config"
	"github.com/polyscan/polyscan/internal/engine"
	"github.com/polyscan/polyscan/internal/report"
	"github.com/polyscan/polyscan/internal/rules"
)

var flagBaselineOut string

func init() {
	cmd := &cobra.Command{
		Use:   "baseline [path]",
		Short: "Scan and write a baseline report for novelty gating",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBaseline,
	}
	cmd.Flags().StringVarP(&flagBaselineOut, "out", "o", "polyscan.baseline.json", "baseline report file")
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to polyscan.toml")
	rootCmd.AddCommand(cmd)
}

func runBaseline(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	active, err := rules.Resolve(cfg.Scan.EnabledRules, cfg.Scan.DisabledRules, cfg.Scan.SecurityOnly)
	if err != nil {
		return err
	}
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
		Logger:           newLogger(),
	})
	if err != nil {
		return err
	}
	if err := report.WriteJSON(rep, flagBaselineOut); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Baseline written to %s (%d issues).\n", flagBaselineOut, len(rep.Issues))
	return nil
}
