package review

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyaudit/internal/history"
	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/screen"
	"github.com/abhisek/studyaudit/internal/session"
	"github.com/abhisek/studyaudit/internal/ui/layout"
)

// ReviewScreen shows a graded audit, either the one just finished or an
// entry opened from history.
type ReviewScreen struct {
	deps   screen.Deps
	quiz   *quiz.Quiz
	eval   *quiz.EvaluationResult
	entry  *history.Entry
	offset int
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)
var _ screen.StatusProvider = (*ReviewScreen)(nil)

// New creates the review screen for state.
func New(deps screen.Deps, state session.State) *ReviewScreen {
	return &ReviewScreen{
		deps:  deps,
		quiz:  state.Quiz,
		eval:  state.Evaluation,
		entry: state.Entry,
	}
}

func (s *ReviewScreen) Init() tea.Cmd { return nil }

func (s *ReviewScreen) Title() string { return "Cognitive Audit" }

func (s *ReviewScreen) Status() string {
	if s.eval == nil {
		return ""
	}
	return fmt.Sprintf("%.0f%%", s.eval.Percentage)
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Scroll"}}
	if s.entry != nil {
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Back to history"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "New audit"})
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k":
		s.offset--
	case "down", "j":
		s.offset++
	case "pgup":
		s.offset -= 10
	case "pgdown", "space":
		s.offset += 10
	case "esc":
		if s.entry != nil {
			ctx, ctrl := s.deps.Ctx, s.deps.Ctrl
			return s, screen.Do("view history", func() error {
				ctrl.ViewHistory(ctx)
				return nil
			})
		}
	}
	s.offset = max(s.offset, 0)
	return s, nil
}

func (s *ReviewScreen) View(width, height int) string {
	if s.eval == nil {
		return ""
	}
	inner := min(width-4, 100)
	content := lipgloss.NewStyle().Padding(1, 2).Render(Report(s.quiz, s.eval, inner))

	var view string
	view, s.offset = layout.Window(content, s.offset, height)
	return view
}
