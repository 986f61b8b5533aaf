package cli

import (
	"github.com/spf13/cobra"

	"github.com/cory-johannsen/risus/internal/game/probability"
	"github.com/cory-johannsen/risus/internal/report"
)

var failuresCmd = &cobra.Command{
	Use:   "failures <pool> <target>",
	Short: "List every roll sequence that misses the target",
	Long: `List every die-face sequence that exhausts the pool without reaching
the target, in ascending face order, each with its probability.

The list can be very long for large pools; it is streamed as it is found.`,
	Args: cobra.ExactArgs(2),
	RunE: runFailures,
}

func init() {
	rootCmd.AddCommand(failuresCmd)

	failuresCmd.Flags().Int("precision", 0, "decimals per percentage")
	bindFlag(failuresCmd.Flags(), "precision", "failures.precision")
}

func runFailures(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	pool, target, err := poolAndTarget(args)
	if err != nil {
		return err
	}

	calc := probability.NewCalculator(a.policy, a.logger)
	fw := report.NewFailureWriter(cmd.OutOrStdout(), calc.MaxFailureLength(pool, target), a.cfg.Failures.Precision)
	fw.Header()
	calc.ListFailures(pool, target, fw.Write)
	return fw.Close()
}
