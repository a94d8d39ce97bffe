// internal/tui/marker.go
//
// The marking screen. One question at a time; the operator confirms it or
// flags it with one or more error categories. Every verdict is saved before
// the cursor moves.

package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/exam-review/internal/config"
	"github.com/kingrea/exam-review/internal/logbook"
	"github.com/kingrea/exam-review/internal/marking"
	"github.com/kingrea/exam-review/internal/records"
)

// Marker is the bubbletea model for a marking session.
type Marker struct {
	session *marking.Session
	themes  ThemeStore
	logbook *logbook.Logbook
	palette palette
	theme   config.Theme

	notice   string
	warn     bool
	finished bool

	width  int
	height int
}

// NewMarker wraps a marking session.
func NewMarker(session *marking.Session, themes ThemeStore, lb *logbook.Logbook) *Marker {
	theme := themes.Theme()
	m := &Marker{
		session: session,
		themes:  themes,
		logbook: lb,
		palette: paletteFor(theme),
		theme:   theme,
	}
	lb.Info("Marking opened at question %d of %d", session.Index()+1, session.Total())
	m.noteReload()
	return m
}

// Finished reports whether the operator marked past the last question.
func (m *Marker) Finished() bool { return m.finished }

// Init implements tea.Model.
func (m *Marker) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Marker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m *Marker) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		m.logbook.Info("Marking closed at question %d of %d", m.session.Index()+1, m.session.Total())
		return m, tea.Quit
	case "t":
		theme, notice, failed := toggleTheme(m.themes, m.logbook)
		m.theme = theme
		m.palette = paletteFor(theme)
		m.setNotice(notice, failed)
		return m, nil
	case "c":
		pos := m.session.Index() + 1
		return m.record(pos, m.session.Confirm(), "confirmed")
	case "f", "enter":
		pos, selection := m.session.Index()+1, m.session.Selection()
		err := m.session.FlagSelection()
		if errors.Is(err, marking.ErrNoCategories) {
			m.setNotice("Select at least one error category (1-5) before flagging.", true)
			return m, nil
		}
		return m.record(pos, err, joinTitles(selection))
	case "b", "left":
		if !m.session.Back() {
			m.setNotice("Already at the first question.", true)
			return m, nil
		}
		m.setNotice(fmt.Sprintf("Back to question %d.", m.session.Index()+1), false)
		m.noteReload()
		return m, nil
	}
	if c, ok := categoryForKey(key); ok {
		m.session.Toggle(c)
		m.notice = ""
	}
	return m, nil
}

func (m *Marker) record(pos int, err error, verdict string) (tea.Model, tea.Cmd) {
	if err != nil {
		m.logbook.Error("Saving question %d failed: %v", pos, err)
		m.setNotice(fmt.Sprintf("Save failed, nothing changed: %v", err), true)
		return m, nil
	}
	m.logbook.Info("Question %d marked %s", pos, verdict)
	m.noteReload()
	if m.session.Done() {
		m.finished = true
		m.logbook.Info("All %d questions marked", m.session.Total())
		return m, tea.Quit
	}
	m.setNotice(fmt.Sprintf("Saved: %s.", verdict), false)
	return m, nil
}

func (m *Marker) noteReload() {
	if err := m.session.ReloadErr(); err != nil {
		m.logbook.Warn("Results re-read fell back to empty: %v", err)
	}
}

func (m *Marker) setNotice(text string, warn bool) {
	m.notice = text
	m.warn = warn
}

func categoryForKey(key string) (records.Category, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return "", false
	}
	idx := int(key[0] - '1')
	if idx >= len(records.Categories) {
		return "", false
	}
	return records.Categories[idx], true
}

func joinTitles(cats []records.Category) string {
	titles := make([]string, 0, len(cats))
	for _, c := range cats {
		titles = append(titles, c.Title())
	}
	return strings.Join(titles, ", ")
}

// View implements tea.Model.
func (m *Marker) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}
	p := m.palette
	if m.session.Done() {
		return p.box(width-2, p.title("All questions are marked."))
	}
	q, _ := m.session.Current()
	header := p.title(fmt.Sprintf("QUESTION %d / %d", m.session.Index()+1, m.session.Total()))
	lines := []string{
		header,
		p.hint(q.Heading()),
		"",
		p.body(fmt.Sprintf("%s. %s", q.QuestionNumber, q.QuestionText)),
	}
	for _, opt := range q.Options {
		lines = append(lines, p.body("   "+opt))
	}
	if len(q.ImageFile) > 0 {
		lines = append(lines, "", p.hint("Images: "+strings.Join(q.ImageFile, ", ")))
	}
	lines = append(lines, "", "Saved status: "+p.status(m.session.SavedStatus()), "", m.renderCategories())
	sections := []string{p.box(width-2, strings.Join(lines, "\n"))}
	if panel := p.logPanel(m.logbook, width-2); panel != "" {
		sections = append(sections, panel)
	}
	if m.notice != "" {
		sections = append(sections, p.notice(m.notice, m.warn))
	}
	sections = append(sections, p.hint("c confirm · 1-5 toggle category · f/enter flag · b back · t theme · q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Marker) renderCategories() string {
	parts := make([]string, 0, len(records.Categories))
	for i, c := range records.Categories {
		box := "[ ]"
		if m.session.IsSelected(c) {
			box = "[x]"
		}
		parts = append(parts, fmt.Sprintf("%d %s %s", i+1, box, c.Title()))
	}
	return m.palette.body(strings.Join(parts, "   "))
}
