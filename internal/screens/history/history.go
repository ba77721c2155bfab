package history

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	hist "github.com/abhisek/studyaudit/internal/history"
	"github.com/abhisek/studyaudit/internal/screen"
	"github.com/abhisek/studyaudit/internal/session"
	"github.com/abhisek/studyaudit/internal/ui/layout"
	"github.com/abhisek/studyaudit/internal/ui/theme"
)

// HistoryScreen lists the stored audits, most recent first.
type HistoryScreen struct {
	deps     screen.Deps
	entries  []hist.Entry
	selected int
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates the history screen for state.
func New(deps screen.Deps, state session.State) *HistoryScreen {
	return &HistoryScreen{deps: deps, entries: state.History}
}

func (s *HistoryScreen) Init() tea.Cmd { return nil }

func (s *HistoryScreen) Title() string { return "History" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Close"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "esc":
		return s, screen.Do("close history", s.deps.Ctrl.CloseHistory)
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.entries)-1 {
			s.selected++
		}
	case "enter":
		if len(s.entries) == 0 {
			return s, nil
		}
		id, ctrl := s.entries[s.selected].ID, s.deps.Ctrl
		return s, screen.Do("open entry", func() error {
			return ctrl.OpenEntry(id)
		})
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if len(s.entries) == 0 {
		return theme.Hint.Render("\n\n  No audits yet. Finish a practice session to see it here.")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, e := range s.entries {
		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s  %-40s %5.0f%%",
			prefix, e.Time().Local().Format("Jan 02, 2006 15:04"), truncate(e.Title, 40), e.Percentage)

		style := theme.Unselected
		if i == s.selected {
			style = theme.Selected
		}
		b.WriteString("  " + style.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("  The last %d audits are kept.", hist.MaxEntries)))
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
