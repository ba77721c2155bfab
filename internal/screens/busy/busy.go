package busy

import (
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyaudit/internal/inference"
	"github.com/abhisek/studyaudit/internal/screen"
	"github.com/abhisek/studyaudit/internal/session"
	"github.com/abhisek/studyaudit/internal/ui/layout"
	"github.com/abhisek/studyaudit/internal/ui/theme"
)

// BusyScreen is shown while an inference call is in flight.
type BusyScreen struct {
	deps    screen.Deps
	spinner spinner.Model
	source  string
}

var _ screen.Screen = (*BusyScreen)(nil)
var _ screen.KeyHintProvider = (*BusyScreen)(nil)

// New creates the busy screen for state.
func New(deps screen.Deps, state session.State) *BusyScreen {
	s := &BusyScreen{
		deps:    deps,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Selected)),
	}
	if state.Source != nil {
		s.source = state.Source.Title()
	}
	return s
}

func (s *BusyScreen) Init() tea.Cmd {
	return s.spinner.Tick
}

func (s *BusyScreen) Title() string { return "Working" }

func (s *BusyScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Ctrl+R", Description: "Abandon and start over"}}
}

func (s *BusyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// stageText reads the stage on every render; one Busy screen spans the
// material and topic stages of a topic-only start.
func (s *BusyScreen) stageText() string {
	stage := s.deps.Ctrl.State().Stage
	if stage == "" {
		stage = inference.StageTopics
	}
	text := string(stage)
	return strings.ToUpper(text[:1]) + text[1:] + "..."
}

func (s *BusyScreen) View(width, height int) string {
	body := s.spinner.View() + " " + theme.Body.Render(s.stageText())
	if s.source != "" {
		body += "\n\n" + theme.Subtitle.Render(s.source)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}
