package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/exam-review/internal/config"
	"github.com/kingrea/exam-review/internal/logbook"
	"github.com/kingrea/exam-review/internal/records"
)

type fixture struct {
	cfg     *config.Config
	store   *records.Store
	logbook *logbook.Logbook
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	projectDir := t.TempDir()
	if err := config.InitReviewDir(projectDir); err != nil {
		t.Fatalf("init review dir: %v", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	lb, err := logbook.New(cfg.JournalPath())
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	return fixture{cfg: cfg, store: records.NewStore(cfg.Paths()), logbook: lb}
}

func (f fixture) writeQuestions(t *testing.T, questions []records.Question) {
	t.Helper()
	data, err := records.Encode(questions)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.store.Paths().Questions, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func (f fixture) journal(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Clean(f.logbook.Path()))
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	return string(data)
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyCtrlF}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// press feeds keys through Update and returns the final model and the last
// command produced.
func press(t *testing.T, model tea.Model, keys ...string) (tea.Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, key := range keys {
		model, cmd = model.Update(keyMsg(key))
		if model == nil {
			t.Fatalf("update returned a nil model for %q", key)
		}
	}
	return model, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func question(n int, text string) records.Question {
	return records.Question{
		School:         "北區大學",
		Department:     "資工系",
		Year:           records.NumberLabel(112),
		QuestionNumber: records.NumberLabel(n),
		QuestionText:   text,
		Options:        []string{"(A) 1", "(B) 2"},
	}
}
