package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/risus/internal/game/dice"
	"github.com/cory-johannsen/risus/internal/game/probability"
	"github.com/cory-johannsen/risus/internal/game/simulate"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <pool> <target>",
	Short: "Estimate the odds by rolling dice and compare with the exact value",
	Long: `Roll the pool --trials times and report the observed success rate with
its standard error next to the exact probability.

--seed makes a run reproducible; 0 draws from crypto/rand.`,
	Args: cobra.ExactArgs(2),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	fs := simulateCmd.Flags()
	fs.Int("trials", 0, "number of rolls")
	fs.Int64("seed", 0, "random seed (0 = crypto/rand)")
	bindFlag(fs, "trials", "simulation.trials")
	bindFlag(fs, "seed", "simulation.seed")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	pool, target, err := poolAndTarget(args)
	if err != nil {
		return err
	}

	src := dice.NewCryptoSource()
	if a.cfg.Simulation.Seed != 0 {
		src = dice.NewSeededSource(a.cfg.Simulation.Seed)
	}
	est, err := simulate.Run(cmd.Context(), dice.NewLoggedRoller(src, a.logger), pool, target, a.policy, a.cfg.Simulation.Trials)
	if err != nil {
		return err
	}
	exact := probability.NewCalculator(a.policy, a.logger).SuccessProbability(pool, target)

	prec := a.cfg.Table.Precision
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %d vs %d: simulated %.*f%% ± %.*f%% over %d trials (exact %.*f%%)\n",
		a.policy.Name, pool, target,
		prec, 100*est.Probability, prec, 100*est.StdErr, est.Trials,
		prec, 100*exact)
	return err
}
