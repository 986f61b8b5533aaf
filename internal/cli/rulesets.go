package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rulesetsCmd = &cobra.Command{
	Use:   "rulesets",
	Short: "List the available rulesets",
	Long: `List every registered ruleset: the built-ins plus those loaded from
ruleset.dir and ruleset.script_dir. The active one is marked with *.`,
	Args: cobra.NoArgs,
	RunE: runRulesets,
}

func init() {
	rootCmd.AddCommand(rulesetsCmd)
}

func runRulesets(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tSUCCESS\tFREE\tDESCRIPTION")
	for _, p := range a.registry.All() {
		mark := ""
		if p.ID == a.policy.ID {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, p.ID, p.Name, faceList(p.SuccessFaces()), faceList(p.FreeFaces()), p.Description)
	}
	return tw.Flush()
}

func faceList(faces []int) string {
	if len(faces) == 0 {
		return "-"
	}
	parts := make([]string, len(faces))
	for i, f := range faces {
		parts[i] = strconv.Itoa(f)
	}
	return strings.Join(parts, ",")
}
