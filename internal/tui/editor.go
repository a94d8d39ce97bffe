// internal/tui/editor.go
//
// The error editor screen. Walks the error log entry by entry; the operator
// fixes the copied question data in place, saves everything with ctrl+s, or
// deletes an entry after confirming.

package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/exam-review/internal/config"
	"github.com/kingrea/exam-review/internal/editor"
	"github.com/kingrea/exam-review/internal/logbook"
)

type editorField int

const (
	fieldNumber editorField = iota
	fieldText
	fieldOptions
	fieldImages
	fieldCount
)

type editorMode int

const (
	modeEdit editorMode = iota
	modeSearch
	modeConfirmDelete
)

// Editor is the bubbletea model for an error editor session.
type Editor struct {
	session *editor.Session
	themes  ThemeStore
	logbook *logbook.Logbook
	palette palette
	theme   config.Theme

	number  textinput.Model
	text    textarea.Model
	options textarea.Model
	images  textarea.Model
	search  textinput.Model
	focus   editorField
	mode    editorMode

	notice string
	warn   bool
	ended  bool

	width  int
	height int
}

// NewEditor wraps an editor session and loads the first entry into the form.
func NewEditor(session *editor.Session, themes ThemeStore, lb *logbook.Logbook) *Editor {
	theme := themes.Theme()
	e := &Editor{
		session: session,
		themes:  themes,
		logbook: lb,
		palette: paletteFor(theme),
		theme:   theme,
		number:  newLineInput("question number"),
		text:    newArea("question text", 4),
		options: newArea("one option per line", 5),
		images:  newArea("one image path per line", 2),
		search:  newLineInput("total question number"),
	}
	lb.Info("Editor opened with %d error entries", session.Len())
	e.load()
	return e
}

func newLineInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 0
	in.Prompt = ""
	return in
}

func newArea(placeholder string, height int) textarea.Model {
	area := textarea.New()
	area.Placeholder = placeholder
	area.CharLimit = 0
	area.MaxHeight = 0
	area.ShowLineNumbers = false
	area.SetHeight(height)
	area.SetWidth(72)
	return area
}

// Ended reports whether the session ran out of entries.
func (e *Editor) Ended() bool { return e.ended }

// Init implements tea.Model.
func (e *Editor) Init() tea.Cmd {
	return textinput.Blink
}

// load copies the current entry into the form widgets.
func (e *Editor) load() {
	fields := e.session.Fields()
	e.number.SetValue(fields.QuestionNumber)
	e.text.SetValue(fields.QuestionText)
	e.options.SetValue(fields.Options)
	e.images.SetValue(fields.ImageFiles)
	e.setFocus(e.focus)
}

// edits reads the form back out.
func (e *Editor) edits() editor.Fields {
	return editor.Fields{
		QuestionNumber: e.number.Value(),
		QuestionText:   e.text.Value(),
		Options:        e.options.Value(),
		ImageFiles:     e.images.Value(),
	}
}

func (e *Editor) setFocus(field editorField) tea.Cmd {
	e.focus = field
	e.number.Blur()
	e.text.Blur()
	e.options.Blur()
	e.images.Blur()
	switch field {
	case fieldNumber:
		return e.number.Focus()
	case fieldText:
		return e.text.Focus()
	case fieldOptions:
		return e.options.Focus()
	default:
		return e.images.Focus()
	}
}

// Update implements tea.Model.
func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
		inner := max(20, msg.Width-8)
		e.text.SetWidth(inner)
		e.options.SetWidth(inner)
		e.images.SetWidth(inner)
		return e, nil
	case tea.KeyMsg:
		switch e.mode {
		case modeSearch:
			return e.handleSearchKey(msg)
		case modeConfirmDelete:
			return e.handleDeleteKey(msg.String())
		}
		if model, cmd, handled := e.handleEditKey(msg.String()); handled {
			return model, cmd
		}
	}
	return e, e.updateFocused(msg)
}

func (e *Editor) handleEditKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", "esc":
		e.logbook.Info("Editor closed at entry %d of %d", e.session.Index()+1, e.session.Len())
		return e, tea.Quit, true
	case "tab":
		return e, e.setFocus((e.focus + 1) % fieldCount), true
	case "shift+tab":
		return e, e.setFocus((e.focus + fieldCount - 1) % fieldCount), true
	case "ctrl+n":
		if !e.session.Next(e.edits()) {
			e.setNotice("Last entry. Press ctrl+s to save all changes.", true)
		} else {
			e.notice = ""
		}
		e.load()
		return e, nil, true
	case "ctrl+p":
		if !e.session.Previous(e.edits()) {
			e.setNotice("Already at the first entry.", true)
		} else {
			e.notice = ""
		}
		e.load()
		return e, nil, true
	case "ctrl+s":
		return e.saveAll()
	case "ctrl+d":
		if entry, ok := e.session.Current(); ok {
			e.mode = modeConfirmDelete
			e.setNotice(fmt.Sprintf("Delete entry %d? (y/n)", entry.TotalQuestionNumber), true)
		}
		return e, nil, true
	case "ctrl+t":
		theme, notice, failed := toggleTheme(e.themes, e.logbook)
		e.theme = theme
		e.palette = paletteFor(theme)
		e.setNotice(notice, failed)
		return e, nil, true
	case "ctrl+f":
		e.mode = modeSearch
		e.search.SetValue("")
		e.notice = ""
		return e, e.search.Focus(), true
	}
	return e, nil, false
}

func (e *Editor) saveAll() (tea.Model, tea.Cmd, bool) {
	if err := e.session.SaveAll(e.edits()); err != nil {
		e.logbook.Error("Saving error log failed: %v", err)
		e.setNotice(fmt.Sprintf("Save failed: %v", err), true)
		return e, nil, true
	}
	e.logbook.Info("Error log saved with %d entries", e.session.Len())
	if e.session.Empty() {
		return e.end("Error log is empty after saving. Nothing left to edit.")
	}
	e.load()
	e.setNotice(fmt.Sprintf("Saved %d entries.", e.session.Len()), false)
	return e, nil, true
}

func (e *Editor) handleDeleteKey(key string) (tea.Model, tea.Cmd) {
	e.mode = modeEdit
	if key != "y" && key != "Y" {
		e.setNotice("Delete cancelled.", false)
		return e, nil
	}
	entry, _ := e.session.Current()
	if err := e.session.DeleteCurrent(); err != nil {
		e.logbook.Error("Deleting entry %d failed: %v", entry.TotalQuestionNumber, err)
		e.setNotice(fmt.Sprintf("Delete failed: %v", err), true)
		return e, nil
	}
	e.logbook.Info("Deleted error entry %d", entry.TotalQuestionNumber)
	if e.session.Empty() {
		model, cmd, _ := e.end("Deleted the last entry. The error log is now empty.")
		return model, cmd
	}
	e.load()
	e.setNotice(fmt.Sprintf("Deleted entry %d.", entry.TotalQuestionNumber), false)
	return e, nil
}

func (e *Editor) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return e, tea.Quit
	case "esc":
		e.mode = modeEdit
		e.search.Blur()
		return e, e.setFocus(e.focus)
	case "enter":
		e.mode = modeEdit
		e.search.Blur()
		e.runSearch(strings.TrimSpace(e.search.Value()))
		return e, e.setFocus(e.focus)
	}
	var cmd tea.Cmd
	e.search, cmd = e.search.Update(msg)
	return e, cmd
}

func (e *Editor) runSearch(input string) {
	key, err := strconv.Atoi(input)
	if err != nil {
		e.setNotice(fmt.Sprintf("%q is not a number.", input), true)
		return
	}
	if err := e.session.Search(e.edits(), key); err != nil {
		if errors.Is(err, editor.ErrNotFound) {
			e.setNotice(fmt.Sprintf("No error entry %d.", key), true)
		} else {
			e.setNotice(err.Error(), true)
		}
		return
	}
	e.load()
	e.setNotice(fmt.Sprintf("Jumped to entry %d.", key), false)
}

func (e *Editor) end(notice string) (tea.Model, tea.Cmd, bool) {
	e.ended = true
	e.setNotice(notice, false)
	e.logbook.Info("%s", notice)
	return e, tea.Quit, true
}

func (e *Editor) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch e.focus {
	case fieldNumber:
		e.number, cmd = e.number.Update(msg)
	case fieldText:
		e.text, cmd = e.text.Update(msg)
	case fieldOptions:
		e.options, cmd = e.options.Update(msg)
	case fieldImages:
		e.images, cmd = e.images.Update(msg)
	}
	return cmd
}

func (e *Editor) setNotice(text string, warn bool) {
	e.notice = text
	e.warn = warn
}

// View implements tea.Model.
func (e *Editor) View() string {
	width := e.width
	if width <= 0 {
		width = 100
	}
	p := e.palette
	entry, ok := e.session.Current()
	if !ok {
		return p.box(width-2, p.title("No error entries to edit.")) + "\n" + p.notice(e.notice, e.warn)
	}
	q := entry.QuestionData
	label := func(field editorField, name string) string {
		if e.focus == field && e.mode == modeEdit {
			return p.title("▸ " + name)
		}
		return p.hint("  " + name)
	}
	lines := []string{
		p.title(fmt.Sprintf("ERROR ENTRY %d / %d · total question %d", e.session.Index()+1, e.session.Len(), entry.TotalQuestionNumber)),
		p.hint(q.Heading()),
		"Status: " + p.status(entry.Status),
		"",
		label(fieldNumber, "Question number"),
		"  " + e.number.View(),
		label(fieldText, "Question text"),
		e.text.View(),
		label(fieldOptions, "Options"),
		e.options.View(),
		label(fieldImages, "Image files"),
		e.images.View(),
	}
	sections := []string{p.box(width-2, strings.Join(lines, "\n"))}
	if e.mode == modeSearch {
		sections = append(sections, p.box(width-2, p.title("Search")+" "+e.search.View()))
	}
	if panel := p.logPanel(e.logbook, width-2); panel != "" {
		sections = append(sections, panel)
	}
	if e.notice != "" {
		sections = append(sections, p.notice(e.notice, e.warn))
	}
	sections = append(sections, p.hint("tab next field · ctrl+n/ctrl+p entry · ctrl+f search · ctrl+s save all · ctrl+d delete · ctrl+t theme · esc quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
