package tui

import (
	"strings"
	"testing"

	"github.com/kingrea/exam-review/internal/editor"
	"github.com/kingrea/exam-review/internal/records"
)

func newTestEditor(t *testing.T, f fixture, keys ...int) *Editor {
	t.Helper()
	flagged, _ := records.Flagged(records.CategoryImage)
	entries := make([]records.ErrorLogEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, records.ErrorLogEntry{
			TotalQuestionNumber: key,
			Status:              flagged,
			QuestionData:        question(key, "text for "+string(rune('a'+key))),
		})
	}
	if err := f.store.SaveErrorLog(entries); err != nil {
		t.Fatal(err)
	}
	session, err := editor.Open(f.store)
	if err != nil {
		t.Fatalf("open editor session: %v", err)
	}
	return NewEditor(session, f.cfg, f.logbook)
}

func TestEditorNavigation(t *testing.T) {
	f := newFixture(t)
	e := newTestEditor(t, f, 2, 5, 7)
	press(t, e, "ctrl+p")
	if !strings.Contains(e.notice, "first entry") {
		t.Fatalf("expected first-entry notice, got %q", e.notice)
	}
	press(t, e, "ctrl+n", "ctrl+n")
	if e.session.Index() != 2 {
		t.Fatalf("index = %d, want 2", e.session.Index())
	}
	press(t, e, "ctrl+n")
	if e.session.Index() != 2 || !strings.Contains(e.notice, "ctrl+s") {
		t.Fatalf("expected to stay on the last entry with a save prompt, notice %q", e.notice)
	}
	if e.number.Value() != "7" {
		t.Fatalf("form shows question number %q, want 7", e.number.Value())
	}
}

func TestEditorSaveAllWritesEdits(t *testing.T) {
	f := newFixture(t)
	e := newTestEditor(t, f, 2, 5)
	e.text.SetValue("  corrected text ")
	e.options.SetValue("(A) 10\n\n(B) 20")
	press(t, e, "ctrl+n", "ctrl+s")
	if !strings.Contains(e.notice, "Saved 2 entries") {
		t.Fatalf("unexpected notice %q", e.notice)
	}
	entries, err := f.store.LoadErrorLog()
	if err != nil {
		t.Fatal(err)
	}
	q := entries[0].QuestionData
	if q.QuestionText != "corrected text" {
		t.Fatalf("question text = %q", q.QuestionText)
	}
	if len(q.Options) != 2 || q.Options[1] != "(B) 20" {
		t.Fatalf("options = %v", q.Options)
	}
	if e.session.Index() != 1 {
		t.Fatalf("cursor should stay on the second entry, got %d", e.session.Index())
	}
}

func TestEditorDeleteNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	e := newTestEditor(t, f, 2, 5)
	press(t, e, "ctrl+d", "n")
	if e.session.Len() != 2 || !strings.Contains(e.notice, "cancelled") {
		t.Fatalf("delete should be cancelled, len=%d notice=%q", e.session.Len(), e.notice)
	}
	_, cmd := press(t, e, "ctrl+d", "y")
	if isQuit(cmd) {
		t.Fatalf("deleting one of two entries must not quit")
	}
	entries, _ := f.store.LoadErrorLog()
	if len(entries) != 1 || entries[0].TotalQuestionNumber != 5 {
		t.Fatalf("unexpected log after delete: %+v", entries)
	}
	_, cmd = press(t, e, "ctrl+d", "y")
	if !isQuit(cmd) || !e.Ended() {
		t.Fatalf("deleting the last entry should end the session")
	}
	entries, err := f.store.LoadErrorLog()
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected an empty log, got %+v (%v)", entries, err)
	}
}

func TestEditorSearch(t *testing.T) {
	f := newFixture(t)
	e := newTestEditor(t, f, 2, 5, 7)
	press(t, e, "ctrl+f", "a", "b", "enter")
	if !strings.Contains(e.notice, "not a number") {
		t.Fatalf("expected non-numeric notice, got %q", e.notice)
	}
	press(t, e, "ctrl+f", "9", "enter")
	if !strings.Contains(e.notice, "No error entry 9") {
		t.Fatalf("expected not-found notice, got %q", e.notice)
	}
	press(t, e, "ctrl+f", "7", "enter")
	if e.session.Index() != 2 || e.number.Value() != "7" {
		t.Fatalf("search should land on entry 7, index %d", e.session.Index())
	}
	if e.mode != modeEdit {
		t.Fatalf("search prompt should close after enter")
	}
}

func TestEditorTypingGoesToFocusedField(t *testing.T) {
	f := newFixture(t)
	e := newTestEditor(t, f, 3)
	e.number.SetValue("")
	press(t, e, "1", "2")
	if e.number.Value() != "12" {
		t.Fatalf("question number = %q, want 12", e.number.Value())
	}
	press(t, e, "tab")
	if e.focus != fieldText {
		t.Fatalf("tab should move focus to the question text")
	}
}
