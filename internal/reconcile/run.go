package reconcile

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kingrea/exam-review/internal/records"
)

// Store is the persistence a reconciliation run needs.
type Store interface {
	LoadResults() ([]records.MarkingResult, error)
	LoadErrorLog() ([]records.ErrorLogEntry, error)
	SaveErrorLog([]records.ErrorLogEntry) error
}

// Run merges the results file into the error log file. The existing log is
// read first and falls back to empty when absent or malformed. A missing or
// malformed results file aborts the run before anything is written.
func Run(store Store, logger *zap.Logger) (Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	existing, err := store.LoadErrorLog()
	switch {
	case err == nil:
		logger.Info("loaded existing error log", zap.Int("entries", len(existing)))
	case errors.Is(err, os.ErrNotExist):
		logger.Info("no existing error log, a new one will be created", zap.Error(err))
		existing = nil
	case errors.Is(err, records.ErrMalformed):
		logger.Warn("existing error log is malformed or empty, it will be recreated", zap.Error(err))
		existing = nil
	default:
		return Summary{}, fmt.Errorf("reconcile: load error log: %w", err)
	}

	batch, err := store.LoadResults()
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Error("marking results file not found", zap.Error(err))
		case errors.Is(err, records.ErrMalformed):
			logger.Error("marking results file is malformed", zap.Error(err))
		}
		return Summary{}, fmt.Errorf("reconcile: load results: %w", err)
	}

	merged, summary := Merge(existing, batch)
	for _, key := range summary.Added {
		logger.Info("added new error", zap.Int("total_question_number", key))
	}
	for _, key := range summary.Kept {
		logger.Info("kept edited error log version", zap.Int("total_question_number", key))
	}
	for _, key := range summary.Removed {
		logger.Info("removed error now confirmed", zap.Int("total_question_number", key))
	}
	for _, key := range summary.Skipped {
		logger.Warn("skipped result without a status", zap.Int("total_question_number", key))
	}

	if err := store.SaveErrorLog(merged); err != nil {
		return summary, fmt.Errorf("reconcile: save error log: %w", err)
	}
	logger.Info("error log updated", zap.Int("entries", summary.Total))
	return summary, nil
}
