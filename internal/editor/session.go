// Package editor walks the error log so the operator can correct the copied
// question data of each outstanding entry or drop entries outright.
//
// Edits stay in memory until SaveAll, except deletion, which is written
// immediately.
package editor

import (
	"errors"
	"fmt"

	"github.com/kingrea/exam-review/internal/records"
)

var (
	// ErrNotFound is returned by Search for an unknown key.
	ErrNotFound = errors.New("editor: no error entry with that total question number")
	// ErrEmpty is returned by actions on a session with no entries left.
	ErrEmpty = errors.New("editor: no error entries")
)

// LogStore is the persistence the session needs.
type LogStore interface {
	LoadErrorLog() ([]records.ErrorLogEntry, error)
	SaveErrorLog([]records.ErrorLogEntry) error
}

// Session holds the working copy of the error log and the cursor.
type Session struct {
	store   LogStore
	entries []records.ErrorLogEntry
	index   int
	byKey   map[int]int
}

// Open loads the error log. Load errors are returned as-is so the caller can
// tell a missing file from a malformed one.
func Open(store LogStore) (*Session, error) {
	entries, err := store.LoadErrorLog()
	if err != nil {
		return nil, err
	}
	s := &Session{store: store, entries: entries}
	s.rebuildIndex()
	return s, nil
}

func (s *Session) rebuildIndex() {
	s.byKey = make(map[int]int, len(s.entries))
	for i, e := range s.entries {
		// first occurrence wins so search lands on the earliest duplicate
		if _, ok := s.byKey[e.TotalQuestionNumber]; !ok {
			s.byKey[e.TotalQuestionNumber] = i
		}
	}
	s.clamp()
}

func (s *Session) clamp() {
	if s.index >= len(s.entries) {
		s.index = len(s.entries) - 1
	}
	if s.index < 0 {
		s.index = 0
	}
}

// Empty reports whether there is nothing left to edit.
func (s *Session) Empty() bool { return len(s.entries) == 0 }

// Index is the zero-based cursor.
func (s *Session) Index() int { return s.index }

// Len is the number of entries in the working copy.
func (s *Session) Len() int { return len(s.entries) }

// Current returns the entry under the cursor.
func (s *Session) Current() (records.ErrorLogEntry, bool) {
	if s.Empty() {
		return records.ErrorLogEntry{}, false
	}
	return s.entries[s.index], true
}

// Fields returns the current entry's editable text.
func (s *Session) Fields() Fields {
	entry, ok := s.Current()
	if !ok {
		return Fields{}
	}
	return FieldsOf(entry.QuestionData)
}

// Entries returns a copy of the working collection.
func (s *Session) Entries() []records.ErrorLogEntry {
	return append([]records.ErrorLogEntry(nil), s.entries...)
}

// Apply writes edits into the current entry's question data.
func (s *Session) Apply(edits Fields) {
	if s.Empty() {
		return
	}
	entry := &s.entries[s.index]
	entry.QuestionData = edits.applyTo(entry.QuestionData.Clone())
}

// Next applies edits and advances. On the last entry it stays put and
// returns false so the caller can prompt for SaveAll.
func (s *Session) Next(edits Fields) bool {
	s.Apply(edits)
	if s.index+1 >= len(s.entries) {
		return false
	}
	s.index++
	return true
}

// Previous applies edits and steps back. It returns false on the first entry.
func (s *Session) Previous(edits Fields) bool {
	s.Apply(edits)
	if s.index == 0 {
		return false
	}
	s.index--
	return true
}

// Search applies edits and jumps to the entry keyed by totalQuestionNumber.
func (s *Session) Search(edits Fields, totalQuestionNumber int) error {
	s.Apply(edits)
	idx, ok := s.byKey[totalQuestionNumber]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, totalQuestionNumber)
	}
	s.index = idx
	return nil
}

// SaveAll applies edits, writes the working copy, then reloads it from disk
// and rebuilds the index so external truncation is picked up. A reload that
// finds the file missing or malformed leaves the session empty.
func (s *Session) SaveAll(edits Fields) error {
	s.Apply(edits)
	if err := s.store.SaveErrorLog(s.entries); err != nil {
		return fmt.Errorf("editor: save: %w", err)
	}
	entries, err := s.store.LoadErrorLog()
	if err != nil && !records.IsRecoverable(err) {
		return fmt.Errorf("editor: reload: %w", err)
	}
	// a file emptied or removed behind our back reads as no entries left
	s.entries = entries
	s.rebuildIndex()
	return nil
}

// DeleteCurrent removes the entry under the cursor and persists the working
// copy right away. Pending edits to other entries are written too, since the
// whole collection is rewritten. The session changes only once the write
// succeeds.
func (s *Session) DeleteCurrent() error {
	if s.Empty() {
		return ErrEmpty
	}
	removed := s.entries[s.index]
	remaining := append(s.entries[:s.index:s.index], s.entries[s.index+1:]...)
	if err := s.store.SaveErrorLog(remaining); err != nil {
		return fmt.Errorf("editor: delete %d: %w", removed.TotalQuestionNumber, err)
	}
	s.entries = remaining
	s.rebuildIndex()
	return nil
}
