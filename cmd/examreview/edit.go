package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/exam-review/internal/editor"
	"github.com/kingrea/exam-review/internal/records"
	"github.com/kingrea/exam-review/internal/tui"
)

func newEditCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Correct or delete entries in the error log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := e.store()
			out := cmd.OutOrStdout()
			path := store.Paths().ErrorLog
			session, err := editor.Open(store)
			switch {
			case errors.Is(err, os.ErrNotExist):
				e.logger.Info("error log not found", zap.String("path", path))
				fmt.Fprintf(out, "Error log %s not found. Run \"examreview reconcile\" first.\n", path)
				return nil
			case errors.Is(err, records.ErrMalformed):
				e.logger.Warn("error log is malformed", zap.String("path", path), zap.Error(err))
				fmt.Fprintf(out, "Warning: error log %s is not valid JSON, nothing to edit.\n", path)
				return nil
			case err != nil:
				return fmt.Errorf("open error log: %w", err)
			}
			if session.Empty() {
				fmt.Fprintf(out, "Error log %s is empty, nothing to edit.\n", path)
				return nil
			}

			e.logger.Info("editor session starting", zap.Int("entries", session.Len()))
			model := tui.NewEditor(session, e.cfg, e.journal)
			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("run editor UI: %w", err)
			}
			if model.Ended() {
				fmt.Fprintln(out, "Error log is empty. Nothing left to edit.")
			}
			e.logger.Info("editor session ended", zap.Int("entries", session.Len()))
			return nil
		},
	}
}
