package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/exam-review/internal/reconcile"
	"github.com/kingrea/exam-review/internal/records"
)

func newReconcileCommand(e *env) *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Merge marking results into the error log",
		Long: `Reads the marking results and the existing error log and rewrites the log:
new non-confirmed results are added, entries whose result is now confirmed are
removed, and entries already in the log are kept as they are.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := e.cfg.Paths()
			if input != "" {
				paths.Results = e.cfg.ResolvePath(input)
			}
			if output != "" {
				paths.ErrorLog = e.cfg.ResolvePath(output)
			}
			summary, err := reconcile.Run(records.NewStore(paths), e.logger)
			if err != nil {
				e.journal.Error("Reconcile aborted: %v", err)
				return err
			}
			e.journal.Info("Reconciled error log: %d added, %d removed, %d total",
				len(summary.Added), len(summary.Removed), summary.Total)
			fmt.Fprintf(cmd.OutOrStdout(), "Error log %s now holds %d entries.\n", paths.ErrorLog, summary.Total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "marking results file (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "error log file (default from config)")
	return cmd
}
