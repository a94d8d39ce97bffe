package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/exam-review/internal/config"
	"github.com/kingrea/exam-review/internal/logbook"
	"github.com/kingrea/exam-review/internal/records"
)

const logPanelLines = 6

// ThemeStore reads and persists the operator's palette choice.
type ThemeStore interface {
	Theme() config.Theme
	SetTheme(config.Theme) error
}

type palette struct {
	accent    lipgloss.Color
	text      lipgloss.Color
	muted     lipgloss.Color
	border    lipgloss.Color
	confirmed lipgloss.Color
	flagged   lipgloss.Color
	warning   lipgloss.Color
}

func paletteFor(theme config.Theme) palette {
	if theme == config.ThemeDark {
		return palette{
			accent:    lipgloss.Color("#5B8DEF"),
			text:      lipgloss.Color("#E6E6E6"),
			muted:     lipgloss.Color("#888888"),
			border:    lipgloss.Color("#444444"),
			confirmed: lipgloss.Color("#4CD07D"),
			flagged:   lipgloss.Color("#FF6B6B"),
			warning:   lipgloss.Color("#F5C542"),
		}
	}
	return palette{
		accent:    lipgloss.Color("#1F5FBF"),
		text:      lipgloss.Color("#1A1A1A"),
		muted:     lipgloss.Color("#666666"),
		border:    lipgloss.Color("#BBBBBB"),
		confirmed: lipgloss.Color("#1E8E3E"),
		flagged:   lipgloss.Color("#C62828"),
		warning:   lipgloss.Color("#B26A00"),
	}
}

func (p palette) title(text string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(p.accent).Render(text)
}

func (p palette) body(text string) string {
	return lipgloss.NewStyle().Foreground(p.text).Render(text)
}

func (p palette) hint(text string) string {
	return lipgloss.NewStyle().Foreground(p.muted).Render(text)
}

func (p palette) box(width int, content string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1).
		Width(max(20, width)).
		Render(content)
}

// status renders a saved verdict: green when confirmed, red when flagged.
func (p palette) status(s records.Status) string {
	switch {
	case s.IsConfirmed():
		return lipgloss.NewStyle().Bold(true).Foreground(p.confirmed).Render("confirmed")
	case s.IsMarked():
		titles := make([]string, 0, len(s.Categories()))
		for _, c := range s.Categories() {
			titles = append(titles, c.Title())
		}
		return lipgloss.NewStyle().Bold(true).Foreground(p.flagged).Render(strings.Join(titles, ", "))
	default:
		return p.hint("unmarked")
	}
}

func (p palette) notice(text string, warn bool) string {
	style := lipgloss.NewStyle().Foreground(p.muted).MarginTop(1)
	if warn {
		style = style.Foreground(p.warning)
	}
	return style.Render(text)
}

func (p palette) logPanel(lb *logbook.Logbook, width int) string {
	if lb == nil {
		return ""
	}
	lines, total := lb.Tail(logPanelLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(lb.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := p.title(fmt.Sprintf("LOG · %s · %d entries", fileName, total))
	return p.box(width, head+"\n"+p.hint(strings.Join(lines, "\n")))
}

func toggleTheme(store ThemeStore, lb *logbook.Logbook) (config.Theme, string, bool) {
	next := store.Theme().Toggle()
	if err := store.SetTheme(next); err != nil {
		lb.Error("Theme change failed: %v", err)
		return store.Theme(), fmt.Sprintf("Theme not saved: %v", err), true
	}
	lb.Info("Theme set to %s", next)
	return next, fmt.Sprintf("Theme: %s", next), false
}
