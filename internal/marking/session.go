// Package marking walks the source questions one at a time and records the
// operator's verdict for each.
package marking

import (
	"errors"
	"fmt"

	"github.com/kingrea/exam-review/internal/records"
)

// ErrNoCategories rejects a flag action with nothing selected.
var ErrNoCategories = errors.New("marking: select at least one error category")

// ErrFinished is returned by actions attempted after the last question.
var ErrFinished = errors.New("marking: all questions are done")

// ResultStore is the persistence the session needs.
type ResultStore interface {
	LoadResults() ([]records.MarkingResult, error)
	RecordDecision(position int, q records.Question, status records.Status) error
}

// Session is the state of one marking run: the question sequence, the
// current position, the pending category selection and the last snapshot of
// persisted results.
type Session struct {
	questions []records.Question
	store     ResultStore
	index     int
	selected  map[records.Category]struct{}
	results   []records.MarkingResult
	reloadErr error
}

// New loads the persisted results and positions the session at the resume
// point.
func New(questions []records.Question, store ResultStore) *Session {
	s := &Session{
		questions: questions,
		store:     store,
		selected:  map[records.Category]struct{}{},
	}
	s.Reload()
	s.index = records.ResumePoint(questions, s.results)
	return s
}

// Reload re-reads the results file so out-of-band edits show up. A missing
// or malformed file counts as empty; the cause is kept for ReloadErr.
func (s *Session) Reload() {
	results, err := s.store.LoadResults()
	if err != nil {
		s.results = nil
		s.reloadErr = err
		return
	}
	s.results = results
	s.reloadErr = nil
}

// ReloadErr returns why the last reload fell back to an empty collection.
func (s *Session) ReloadErr() error {
	return s.reloadErr
}

// Index is the zero-based current position.
func (s *Session) Index() int { return s.index }

// Total is the number of questions.
func (s *Session) Total() int { return len(s.questions) }

// Done reports whether the session has moved past the last question.
func (s *Session) Done() bool { return s.index >= len(s.questions) }

// Current returns the question under review.
func (s *Session) Current() (records.Question, bool) {
	if s.Done() {
		return records.Question{}, false
	}
	return s.questions[s.index], true
}

// SavedStatus returns the persisted verdict for the current question; the
// zero Status means unmarked.
func (s *Session) SavedStatus() records.Status {
	q, ok := s.Current()
	if !ok {
		return records.Status{}
	}
	if idx := records.FindResult(s.results, s.index, q); idx >= 0 {
		return s.results[idx].Status
	}
	return records.Status{}
}

// Toggle flips a category in the pending selection.
func (s *Session) Toggle(c records.Category) {
	if _, ok := s.selected[c]; ok {
		delete(s.selected, c)
		return
	}
	s.selected[c] = struct{}{}
}

// IsSelected reports whether c is in the pending selection.
func (s *Session) IsSelected(c records.Category) bool {
	_, ok := s.selected[c]
	return ok
}

// Selection returns the pending categories in canonical order.
func (s *Session) Selection() []records.Category {
	var out []records.Category
	for _, c := range records.Categories {
		if s.IsSelected(c) {
			out = append(out, c)
		}
	}
	return out
}

// Confirm records the current question as confirmed and advances.
func (s *Session) Confirm() error {
	return s.decide(records.Confirmed())
}

// Flag records cats for the current question and advances. An empty set is
// rejected with ErrNoCategories and changes nothing.
func (s *Session) Flag(cats ...records.Category) error {
	if s.Done() {
		return ErrFinished
	}
	if len(cats) == 0 {
		return ErrNoCategories
	}
	status, err := records.Flagged(cats...)
	if err != nil {
		return fmt.Errorf("marking: %w", err)
	}
	return s.decide(status)
}

// FlagSelection flags the pending selection.
func (s *Session) FlagSelection() error {
	return s.Flag(s.Selection()...)
}

// Back moves to the previous question. It returns false on the first one.
func (s *Session) Back() bool {
	if s.index == 0 {
		return false
	}
	s.index--
	s.clearSelection()
	s.Reload()
	return true
}

// decide persists status for the current question. On failure the position
// and selection are left untouched so the operator can retry.
func (s *Session) decide(status records.Status) error {
	q, ok := s.Current()
	if !ok {
		return ErrFinished
	}
	if err := s.store.RecordDecision(s.index, q, status); err != nil {
		return fmt.Errorf("marking: save question %d: %w", records.Key(s.index), err)
	}
	s.index++
	s.clearSelection()
	s.Reload()
	return nil
}

func (s *Session) clearSelection() {
	for c := range s.selected {
		delete(s.selected, c)
	}
}
