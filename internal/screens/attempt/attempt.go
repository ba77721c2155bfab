package attempt

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/screen"
	"github.com/abhisek/studyaudit/internal/session"
	"github.com/abhisek/studyaudit/internal/ui/components"
	"github.com/abhisek/studyaudit/internal/ui/layout"
	"github.com/abhisek/studyaudit/internal/ui/theme"
)

// AttemptScreen walks through the quiz one question at a time and
// records answers as they are given.
type AttemptScreen struct {
	deps    screen.Deps
	quiz    *quiz.Quiz
	answers quiz.AnswerMap
	current int
	choices components.ChoiceList
	input   components.TextInput
	errMsg  string
}

var _ screen.Screen = (*AttemptScreen)(nil)
var _ screen.KeyHintProvider = (*AttemptScreen)(nil)
var _ screen.StatusProvider = (*AttemptScreen)(nil)

// New creates the attempt screen for state.
func New(deps screen.Deps, state session.State) *AttemptScreen {
	s := &AttemptScreen{
		deps:    deps,
		quiz:    state.Quiz,
		answers: state.Answers.Clone(),
	}
	if s.answers == nil {
		s.answers = quiz.AnswerMap{}
	}
	s.load()
	return s
}

func (s *AttemptScreen) Init() tea.Cmd {
	if s.question().Type == quiz.FormatOpenEnded {
		return s.input.Focus()
	}
	return nil
}

func (s *AttemptScreen) Title() string {
	if s.quiz == nil {
		return "Practice"
	}
	return s.quiz.Title
}

func (s *AttemptScreen) Status() string {
	return fmt.Sprintf("%d/%d answered", len(s.answers), len(s.quiz.Questions))
}

func (s *AttemptScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Tab", Description: "Next"}, {Key: "Shift+Tab", Description: "Prev"}}
	if s.question().Type == quiz.FormatObjective {
		hints = append(hints, layout.KeyHint{Key: "A-D", Description: "Answer"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Save answer"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+S", Description: "Finish and grade"})
}

func (s *AttemptScreen) question() quiz.Question {
	if s.quiz == nil || len(s.quiz.Questions) == 0 {
		return quiz.Question{}
	}
	return s.quiz.Questions[s.current]
}

// load prepares the answer widget for the current question.
func (s *AttemptScreen) load() {
	q := s.question()
	prev := s.answers[q.ID]
	if q.Type == quiz.FormatObjective {
		s.choices = components.NewChoiceList(q.Choices, prev)
		return
	}
	s.input = components.NewTextInput("Your answer", "Type your answer...", 2000)
	s.input.SetValue(prev)
}

func (s *AttemptScreen) record(answer string) bool {
	id := s.question().ID
	if err := s.deps.Ctrl.RecordAnswer(id, answer); err != nil {
		s.errMsg = err.Error()
		return false
	}
	if strings.TrimSpace(answer) == "" {
		delete(s.answers, id)
	} else {
		s.answers[id] = answer
	}
	s.errMsg = ""
	return true
}

// move saves a pending free-text answer and shows question i.
func (s *AttemptScreen) move(i int) tea.Cmd {
	if s.quiz == nil || i < 0 || i >= len(s.quiz.Questions) || i == s.current {
		return nil
	}
	q := s.question()
	if q.Type == quiz.FormatOpenEnded && s.input.Value() != s.answers[q.ID] {
		if !s.record(s.input.Value()) {
			return nil
		}
	}
	s.current = i
	s.load()
	return s.Init()
}

func (s *AttemptScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	switch kmsg.String() {
	case "tab":
		return s, s.move(s.current + 1)
	case "shift+tab":
		return s, s.move(s.current - 1)
	case "ctrl+s":
		return s, s.finish()
	}

	if s.question().Type == quiz.FormatObjective {
		var picked bool
		s.choices, picked = s.choices.Update(msg)
		if picked && s.record(s.choices.Chosen) {
			return s, s.move(s.current + 1)
		}
		return s, nil
	}

	if kmsg.String() == "enter" {
		if s.record(s.input.Value()) {
			return s, s.move(s.current + 1)
		}
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *AttemptScreen) finish() tea.Cmd {
	q := s.question()
	if q.Type == quiz.FormatOpenEnded && s.input.Value() != s.answers[q.ID] {
		if !s.record(s.input.Value()) {
			return nil
		}
	}
	if len(s.answers) == 0 {
		s.errMsg = "Answer at least one question before finishing."
		return nil
	}
	ctx, ctrl := s.deps.Ctx, s.deps.Ctrl
	return screen.Do("end session", func() error {
		return ctrl.EndSession(ctx)
	})
}

func (s *AttemptScreen) View(width, height int) string {
	if s.quiz == nil || len(s.quiz.Questions) == 0 {
		return theme.Hint.Render("\n  No questions.")
	}
	total := len(s.quiz.Questions)
	q := s.question()
	inner := min(width-4, 100)

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(components.NewProgressBar("", float64(len(s.answers))/float64(total), inner).View())
	b.WriteString("\n\n")

	b.WriteString(theme.Label.Render(fmt.Sprintf("  Question %d of %d", s.current+1, total)))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  ·  %s  ·  %s", q.Type, s.quiz.Difficulty)))
	b.WriteString("\n")
	b.WriteString(theme.Rule.Render("  " + strings.Repeat("─", inner)))
	b.WriteString("\n\n")
	b.WriteString(layout.Wrap(theme.Body.Bold(true).PaddingLeft(2), q.Prompt, inner))
	b.WriteString("\n\n")

	if q.Type == quiz.FormatObjective {
		b.WriteString(s.choices.View())
	} else {
		b.WriteString(theme.Card.Width(inner).Render(s.input.View()))
	}

	b.WriteString("\n")
	b.WriteString(s.track())
	if s.errMsg != "" {
		b.WriteString("\n\n  " + theme.Incorrect.Render(s.errMsg))
	}
	return b.String()
}

// track renders one marker per question: filled when answered.
func (s *AttemptScreen) track() string {
	var b strings.Builder
	b.WriteString("  ")
	for i, q := range s.quiz.Questions {
		mark := "○"
		if _, ok := s.answers[q.ID]; ok {
			mark = "●"
		}
		if i == s.current {
			b.WriteString(theme.Selected.Render(mark))
		} else {
			b.WriteString(theme.Subtitle.Render(mark))
		}
		b.WriteString(" ")
	}
	return b.String()
}
