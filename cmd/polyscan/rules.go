package polyscan

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/polyscan/polyscan/internal/rules"
)

var flagRulesSecurity bool

func init() {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule catalog",
		RunE:  runRules,
	}
	cmd.Flags().BoolVar(&flagRulesSecurity, "security", false, "only list security rules")
	rootCmd.AddCommand(cmd)
}

func runRules(_ *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEVERITY\tSTRATEGY\tSECURITY\tTITLE")
	for _, r := range rules.All() {
		if flagRulesSecurity && !r.Security {
			continue
		}
		sec := ""
		if r.Security {
			sec = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Severity, r.Strategy, sec, r.Title)
	}
	return w.Flush()
}
