package marking

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kingrea/exam-review/internal/records"
)

type memoryStore struct {
	results  []records.MarkingResult
	loadErr  error
	saveErr  error
	loads    int
	recorded int
}

func (m *memoryStore) LoadResults() ([]records.MarkingResult, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]records.MarkingResult(nil), m.results...), nil
}

func (m *memoryStore) RecordDecision(position int, q records.Question, status records.Status) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.recorded++
	m.results = records.ApplyDecision(m.results, position, q, status)
	return nil
}

func questions(n int) []records.Question {
	out := make([]records.Question, n)
	for i := range out {
		out[i] = records.Question{
			School:         "South",
			Department:     "Math",
			Year:           records.NumberLabel(111),
			QuestionNumber: records.NumberLabel(i + 1),
			QuestionText:   "question text " + string(rune('A'+i)),
		}
	}
	return out
}

func TestNewStartsAtFirstQuestionWithoutResultsFile(t *testing.T) {
	dir := t.TempDir()
	store := records.NewStore(records.Paths{
		Questions: filepath.Join(dir, "new_exam_output.json"),
		Results:   filepath.Join(dir, "check_exam_output.json"),
		ErrorLog:  filepath.Join(dir, "error_exam_output.json"),
	})
	s := New(questions(3), store)
	if s.Index() != 0 || s.Total() != 3 {
		t.Fatalf("expected question 1/3, got %d/%d", s.Index()+1, s.Total())
	}
	if !errors.Is(s.ReloadErr(), os.ErrNotExist) {
		t.Fatalf("expected missing results file to be noted, got %v", s.ReloadErr())
	}
	if s.SavedStatus().IsMarked() {
		t.Fatalf("first question should be unmarked")
	}
}

func TestNewResumesAfterMarkedQuestions(t *testing.T) {
	qs := questions(3)
	store := &memoryStore{}
	store.results = records.ApplyDecision(store.results, 0, qs[0], records.Confirmed())
	s := New(qs, store)
	if s.Index() != 1 {
		t.Fatalf("resume index = %d, want 1", s.Index())
	}
	store.results = records.ApplyDecision(store.results, 1, qs[1], records.Confirmed())
	store.results = records.ApplyDecision(store.results, 2, qs[2], records.Confirmed())
	s = New(qs, store)
	if !s.Done() {
		t.Fatalf("expected completed session when every question has a result")
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("completed session must not expose a current question")
	}
}

func TestConfirmRecordsAndAdvances(t *testing.T) {
	store := &memoryStore{}
	s := New(questions(2), store)
	loadsBefore := store.loads
	if err := s.Confirm(); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if s.Index() != 1 {
		t.Fatalf("index = %d, want 1", s.Index())
	}
	if store.loads != loadsBefore+1 {
		t.Fatalf("expected navigation to re-read results")
	}
	if len(store.results) != 1 || !store.results[0].Status.IsConfirmed() || store.results[0].TotalQuestionNumber != 1 {
		t.Fatalf("unexpected results %+v", store.results)
	}
	if err := s.Confirm(); err != nil {
		t.Fatalf("confirm last: %v", err)
	}
	if !s.Done() {
		t.Fatalf("expected session to finish after the last question")
	}
	if err := s.Confirm(); !errors.Is(err, ErrFinished) {
		t.Fatalf("expected ErrFinished, got %v", err)
	}
}

func TestFlagWithoutCategoriesChangesNothing(t *testing.T) {
	store := &memoryStore{}
	s := New(questions(2), store)
	if err := s.Flag(); !errors.Is(err, ErrNoCategories) {
		t.Fatalf("expected ErrNoCategories, got %v", err)
	}
	if err := s.FlagSelection(); !errors.Is(err, ErrNoCategories) {
		t.Fatalf("expected ErrNoCategories for empty selection, got %v", err)
	}
	if s.Index() != 0 || store.recorded != 0 || len(store.results) != 0 {
		t.Fatalf("empty flag mutated state: index=%d recorded=%d", s.Index(), store.recorded)
	}
}

func TestFlagSelectionRecordsCategoriesAndClears(t *testing.T) {
	store := &memoryStore{}
	s := New(questions(2), store)
	s.Toggle(records.CategoryImage)
	s.Toggle(records.CategoryText)
	s.Toggle(records.CategoryPath)
	s.Toggle(records.CategoryPath)
	if err := s.FlagSelection(); err != nil {
		t.Fatalf("flag: %v", err)
	}
	got := store.results[0].Status.Categories()
	if len(got) != 2 || got[0] != records.CategoryText || got[1] != records.CategoryImage {
		t.Fatalf("recorded categories = %v", got)
	}
	if len(s.Selection()) != 0 {
		t.Fatalf("selection should clear after flagging")
	}
	if s.Index() != 1 {
		t.Fatalf("expected advance after flagging")
	}
}

func TestSaveFailureLeavesStateUnchanged(t *testing.T) {
	store := &memoryStore{saveErr: errors.New("disk full")}
	s := New(questions(2), store)
	s.Toggle(records.CategoryNumber)
	err := s.FlagSelection()
	if err == nil {
		t.Fatalf("expected save failure to surface")
	}
	if s.Index() != 0 {
		t.Fatalf("failed save must not advance")
	}
	if !s.IsSelected(records.CategoryNumber) {
		t.Fatalf("failed save must keep the pending selection")
	}
}

func TestBackStopsAtFirstQuestionAndShowsSavedStatus(t *testing.T) {
	store := &memoryStore{}
	s := New(questions(3), store)
	if s.Back() {
		t.Fatalf("back on the first question should report false")
	}
	if err := s.Flag(records.CategoryOptions); err != nil {
		t.Fatalf("flag: %v", err)
	}
	if !s.Back() {
		t.Fatalf("expected back to succeed")
	}
	if s.Index() != 0 {
		t.Fatalf("index = %d, want 0", s.Index())
	}
	if !s.SavedStatus().Has(records.CategoryOptions) {
		t.Fatalf("saved status not reflected after back: %v", s.SavedStatus())
	}
	if err := s.Confirm(); err != nil {
		t.Fatalf("re-mark: %v", err)
	}
	if len(store.results) != 1 || !store.results[0].Status.IsConfirmed() {
		t.Fatalf("re-marking should overwrite, got %+v", store.results)
	}
}

func TestReloadFallsBackToEmptyOnMalformedResults(t *testing.T) {
	store := &memoryStore{}
	s := New(questions(2), store)
	if err := s.Confirm(); err != nil {
		t.Fatal(err)
	}
	store.loadErr = records.ErrMalformed
	s.Back()
	if s.SavedStatus().IsMarked() {
		t.Fatalf("malformed results should read as empty")
	}
	if !errors.Is(s.ReloadErr(), records.ErrMalformed) {
		t.Fatalf("expected reload error to be kept, got %v", s.ReloadErr())
	}
}
