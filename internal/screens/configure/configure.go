package configure

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/samber/lo"

	"github.com/abhisek/studyaudit/internal/inference"
	"github.com/abhisek/studyaudit/internal/llm"
	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/screen"
	"github.com/abhisek/studyaudit/internal/session"
	"github.com/abhisek/studyaudit/internal/ui/components"
	"github.com/abhisek/studyaudit/internal/ui/layout"
	"github.com/abhisek/studyaudit/internal/ui/theme"
)

const (
	rowTopic = iota
	rowFormat
	rowQuestions
	rowDifficulty
	numRows
)

// ConfigureScreen picks topic, format, question count and difficulty.
type ConfigureScreen struct {
	deps   screen.Deps
	rows   [numRows]components.Picker
	cursor int
}

var _ screen.Screen = (*ConfigureScreen)(nil)
var _ screen.KeyHintProvider = (*ConfigureScreen)(nil)

// New creates the configure screen. It starts from the last config of
// the session, if any, so a failed quiz request keeps the choices.
func New(deps screen.Deps, state session.State) *ConfigureScreen {
	cfg := quiz.DefaultConfig()
	if state.Config != nil {
		cfg = *state.Config
	}

	topics := []string(state.Topics)
	if len(topics) == 0 {
		topics = []string{quiz.WholeContent}
	}

	s := &ConfigureScreen{deps: deps}
	s.rows[rowTopic] = components.NewPicker("Topic", topics, cfg.Topic)
	s.rows[rowFormat] = components.NewPicker("Format",
		lo.Map(quiz.Formats, func(f quiz.Format, _ int) string { return string(f) }), string(cfg.Format))
	s.rows[rowQuestions] = components.NewPicker("Questions",
		lo.Map(quiz.Counts, func(n int, _ int) string { return strconv.Itoa(n) }), strconv.Itoa(cfg.Count))
	s.rows[rowDifficulty] = components.NewPicker("Difficulty",
		lo.Map(quiz.Difficulties, func(d quiz.Difficulty, _ int) string { return string(d) }), string(cfg.Difficulty))
	return s
}

func (s *ConfigureScreen) Init() tea.Cmd { return nil }

func (s *ConfigureScreen) Title() string { return "Configure" }

func (s *ConfigureScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Field"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Start practice"},
	}
}

// Config returns the session config the pickers describe.
func (s *ConfigureScreen) Config() quiz.SessionConfig {
	count, _ := strconv.Atoi(s.rows[rowQuestions].Value())
	return quiz.SessionConfig{
		Topic:      s.rows[rowTopic].Value(),
		Format:     quiz.Format(s.rows[rowFormat].Value()),
		Count:      count,
		Difficulty: quiz.Difficulty(s.rows[rowDifficulty].Value()),
	}
}

func (s *ConfigureScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j", "tab":
		if s.cursor < len(s.rows)-1 {
			s.cursor++
		}
	case "enter":
		ctx, ctrl, cfg := s.deps.Ctx, s.deps.Ctrl, s.Config()
		return s, screen.Do("start practice", func() error {
			return ctrl.StartPractice(ctx, cfg)
		})
	default:
		s.rows[s.cursor] = s.rows[s.cursor].Update(msg)
	}
	return s, nil
}

func (s *ConfigureScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("  Practice session"))
	b.WriteString("\n\n")
	for i, row := range s.rows {
		b.WriteString("  " + row.View(i == s.cursor))
		b.WriteString("\n\n")
	}
	cfg := s.Config()
	if inference.TierFor(inference.StageQuiz, &cfg) == llm.TierPro ||
		inference.TierFor(inference.StageGrading, &cfg) == llm.TierPro {
		b.WriteString(theme.Hint.Render("  This session uses the higher-capability model."))
	}
	return b.String()
}
