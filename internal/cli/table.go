package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/risus/internal/report"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the success odds table of the active ruleset",
	Long: `Print a table of success probabilities with one column per pool size
(1 to --max-pool, at most 6) and one row per target (1 to --max-target).

With --progress a "Computed cells: n/N" line is written to stderr as each
cell completes.`,
	Args: cobra.NoArgs,
	RunE: runTable,
}

func init() {
	rootCmd.AddCommand(tableCmd)

	fs := tableCmd.Flags()
	fs.Int("max-pool", 0, "largest pool size column (1-6)")
	fs.Int("max-target", 0, "largest target row")
	fs.Int("precision", 0, "decimals per percentage")
	fs.Bool("progress", false, "report each computed cell on stderr")
	fs.Int("workers", 0, "cells computed concurrently")
	bindFlag(fs, "max-pool", "table.max_pool_size")
	bindFlag(fs, "max-target", "table.max_target")
	bindFlag(fs, "precision", "table.precision")
	bindFlag(fs, "progress", "table.show_progress")
	bindFlag(fs, "workers", "table.workers")
}

func runTable(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd)
	tc := a.cfg.Table
	if err := report.ValidateTableBounds(tc.MaxPoolSize, tc.MaxTarget); err != nil {
		return err
	}

	svc, closeStore, err := newService(cmd.Context(), a)
	if err != nil {
		return err
	}
	defer closeStore()

	var progress io.Writer
	if tc.ShowProgress {
		progress = cmd.ErrOrStderr()
	}
	grid, err := svc.Grid(cmd.Context(), a.policy.ID, tc.MaxPoolSize, tc.MaxTarget, progress)
	if err != nil {
		return err
	}
	return report.RenderTable(cmd.OutOrStdout(), grid, a.policy.PoolTerm(), tc.Precision)
}
