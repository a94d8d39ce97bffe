package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/exam-review/internal/marking"
	"github.com/kingrea/exam-review/internal/tui"
)

func newMarkCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "mark",
		Short: "Confirm or flag each extracted question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := e.store()
			questions, err := store.LoadQuestions()
			if err != nil {
				e.logger.Error("questions file unreadable", zap.Error(err))
				return fmt.Errorf("load questions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(questions) == 0 {
				fmt.Fprintf(out, "No questions in %s.\n", store.Paths().Questions)
				return nil
			}

			session := marking.New(questions, store)
			if session.Done() {
				fmt.Fprintf(out, "All %d questions are already marked.\n", session.Total())
				return nil
			}
			e.logger.Info("marking session starting",
				zap.Int("questions", session.Total()),
				zap.Int("resume_at", session.Index()+1),
			)

			marker := tui.NewMarker(session, e.cfg, e.journal)
			if _, err := tea.NewProgram(marker, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("run marking UI: %w", err)
			}
			if marker.Finished() {
				fmt.Fprintf(out, "All %d questions are marked. Run \"examreview reconcile\" to update the error log.\n", session.Total())
			} else {
				fmt.Fprintf(out, "Stopped at question %d of %d. Run \"examreview mark\" again to resume.\n", session.Index()+1, session.Total())
			}
			e.logger.Info("marking session ended", zap.Int("index", session.Index()), zap.Bool("finished", marker.Finished()))
			return nil
		},
	}
}
