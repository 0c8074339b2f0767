package polyscan

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/polyscan/polyscan/internal/config"
)

func scanCommand(t *testing.T) *cobra.Command {
	t.Helper()
	for _, c := range rootCmd.Commands() {
		if c.Name() == "scan" {
			return c
		}
	}
	t.Fatal("scan command not registered")
	return nil
}

func TestApplyFlagsLayersOverConfig(t *testing.T) {
	cmd := scanCommand(t)
	require.NoError(t, cmd.Flags().Set("max-issues", "5"))
	require.NoError(t, cmd.Flags().Set("min-coverage", "80"))
	t.Cleanup(func() {
		flagMaxIssues = -1
		flagMinCoverage = -1
		flagEnable = nil
		flagSecurityOnly = false
		flagFailOn = ""
		cmd.Flags().Lookup("max-issues").Changed = false
		cmd.Flags().Lookup("min-coverage").Changed = false
	})
	flagEnable = []string{"ss003"}
	flagSecurityOnly = true
	flagFailOn = "HIGH"

	cfg := config.Default()
	applyFlags(cmd, &cfg)

	require.NotNil(t, cfg.Gate.MaxIssues)
	require.Equal(t, 5, *cfg.Gate.MaxIssues)
	require.NotNil(t, cfg.Gate.MinCoverage)
	require.Equal(t, 80.0, *cfg.Gate.MinCoverage)
	require.Equal(t, []string{"SS003"}, cfg.Scan.EnabledRules)
	require.True(t, cfg.Scan.SecurityOnly)
	require.Equal(t, "high", cfg.Gate.FailOn)
}

func TestApplyFlagsLeavesConfigAlone(t *testing.T) {
	cmd := scanCommand(t)
	ten := 10
	cfg := config.Default()
	cfg.Gate.MaxIssues = &ten
	cfg.Gate.FailOn = "medium"

	applyFlags(cmd, &cfg)

	require.NotNil(t, cfg.Gate.MaxIssues)
	require.Equal(t, 10, *cfg.Gate.MaxIssues)
	require.Equal(t, "medium", cfg.Gate.FailOn)
}
