package polyscan

import (
	"errors"
	"fmt"
	"os"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var (
	flagNoColor bool
	flagVerbose bool

	version = "0.1.0"
)

// errGateFailed distinguishes a failed verdict (exit 1) from
// configuration and runtime errors (exit 2).
var errGateFailed = errors.New("quality gate failed")

// rootCmd is the base Cobra command for the polyscan CLI.
var rootCmd = &cobra.Command{
	Use:           "polyscan",
	Short:         "Static analysis with a quality gate",
	Long:          "Polyscan analyzes a source tree with structural and pattern rules, detects duplicated blocks, and evaluates a configurable quality gate for CI.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the polyscan CLI. It should be called by the main package.
// Exit codes: 0 gate passed (or nothing to gate), 1 gate failed,
// 2 configuration or runtime error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errGateFailed) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func newLogger() hclog.Logger {
	level := hclog.Warn
	if flagVerbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "polyscan",
		Level:  level,
		Output: os.Stderr,
		Color:  hclog.AutoColor,
	})
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}
