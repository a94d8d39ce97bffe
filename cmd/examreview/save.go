package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/exam-review/internal/records"
)

func newSaveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "save <status-json> <question-json> <index>",
		Short: "Record one marking verdict",
		Long: `Records a verdict for the question at the zero-based index. The status is
"confirmed" or a JSON array of error categories; the question is the JSON
object as it appears in the questions file.`,
		Example: `  examreview save '"confirmed"' "$QUESTION" 0
  examreview save '["text-error","image-error"]' "$QUESTION" 4`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var status records.Status
			if err := json.Unmarshal([]byte(args[0]), &status); err != nil {
				return fmt.Errorf("parse status: %w", err)
			}
			var q records.Question
			if err := json.Unmarshal([]byte(args[1]), &q); err != nil {
				return fmt.Errorf("parse question: %w", err)
			}
			position, err := strconv.Atoi(args[2])
			if err != nil || position < 0 {
				return fmt.Errorf("index must be a non-negative integer, got %q", args[2])
			}
			if err := e.store().RecordDecision(position, q, status); err != nil {
				e.logger.Error("save failed", zap.Int("position", position), zap.Error(err))
				return fmt.Errorf("save verdict: %w", err)
			}
			e.logger.Info("verdict saved", zap.Int("total_question_number", records.Key(position)), zap.String("status", status.String()))
			e.journal.Info("Question %d marked %s", records.Key(position), status)
			return nil
		},
	}
}
