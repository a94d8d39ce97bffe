package reconcile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kingrea/exam-review/internal/records"
)

func newFileStore(t *testing.T) *records.Store {
	t.Helper()
	dir := t.TempDir()
	return records.NewStore(records.Paths{
		Questions: filepath.Join(dir, "new_exam_output.json"),
		Results:   filepath.Join(dir, "check_exam_output.json"),
		ErrorLog:  filepath.Join(dir, "error_exam_output.json"),
	})
}

func TestRunAbortsWithoutResultsAndKeepsLog(t *testing.T) {
	store := newFileStore(t)
	original := []byte("[\n    {\"total_question_number\": 2, \"status\": [\"image-error\"], \"question_data\": {}}\n]\n")
	if err := os.WriteFile(store.Paths().ErrorLog, original, 0o644); err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zapcore.InfoLevel)
	if _, err := Run(store, zap.New(core)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	data, err := os.ReadFile(store.Paths().ErrorLog)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(original) {
		t.Fatalf("error log was touched:\n%s", data)
	}
	if logs.FilterMessage("marking results file not found").Len() != 1 {
		t.Fatalf("expected missing results to be reported")
	}
}

func TestRunAbortsOnMalformedResults(t *testing.T) {
	store := newFileStore(t)
	if err := os.WriteFile(store.Paths().Results, []byte(`[{"status": 5}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Run(store, nil); !errors.Is(err, records.ErrMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	if _, err := os.Stat(store.Paths().ErrorLog); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error log must not be created on abort")
	}
}

func TestRunCreatesLogFromResults(t *testing.T) {
	store := newFileStore(t)
	text, _ := records.Flagged(records.CategoryText)
	results := []records.MarkingResult{
		{TotalQuestionNumber: 1, Status: text, QuestionData: question(1, "one")},
		{TotalQuestionNumber: 2, Status: records.Confirmed(), QuestionData: question(2, "two")},
	}
	if err := store.SaveResults(results); err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zapcore.InfoLevel)
	summary, err := Run(store, zap.New(core))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Total != 1 {
		t.Fatalf("total = %d, want 1", summary.Total)
	}
	entries, err := store.LoadErrorLog()
	if err != nil {
		t.Fatalf("load log: %v", err)
	}
	if len(entries) != 1 || entries[0].TotalQuestionNumber != 1 {
		t.Fatalf("unexpected log %+v", entries)
	}
	if logs.FilterMessage("no existing error log, a new one will be created").Len() != 1 {
		t.Fatalf("expected missing log to be reported")
	}
	if logs.FilterMessage("added new error").Len() != 1 {
		t.Fatalf("expected added key to be reported")
	}
}

func TestRunRecreatesMalformedLog(t *testing.T) {
	store := newFileStore(t)
	if err := os.WriteFile(store.Paths().ErrorLog, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	path, _ := records.Flagged(records.CategoryPath)
	if err := store.SaveResults([]records.MarkingResult{{TotalQuestionNumber: 4, Status: path, QuestionData: question(4, "four")}}); err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zapcore.InfoLevel)
	if _, err := Run(store, zap.New(core)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if logs.FilterMessage("existing error log is malformed or empty, it will be recreated").Len() != 1 {
		t.Fatalf("expected malformed log warning")
	}
	entries, err := store.LoadErrorLog()
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected recreated log with one entry, got %v, %v", entries, err)
	}
}
