package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var probabilityCmd = &cobra.Command{
	Use:     "probability <pool> <target>",
	Aliases: []string{"p"},
	Short:   "Print the odds of reaching a target",
	Args:    cobra.ExactArgs(2),
	RunE:    runProbability,
}

func init() {
	rootCmd.AddCommand(probabilityCmd)
}

func runProbability(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	pool, target, err := poolAndTarget(args)
	if err != nil {
		return err
	}

	svc, closeStore, err := newService(cmd.Context(), a)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := svc.Cell(cmd.Context(), a.policy.ID, pool, target)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %d vs %s %d = %.*f%%\n",
		a.policy.Name, a.policy.PoolTerm(), pool, a.policy.TargetTerm(), target,
		a.cfg.Table.Precision, 100*p)
	return err
}
