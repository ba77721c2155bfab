package preview

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/screen"
	"github.com/abhisek/studyaudit/internal/session"
	"github.com/abhisek/studyaudit/internal/ui/layout"
	"github.com/abhisek/studyaudit/internal/ui/theme"
)

// PreviewScreen shows the source and the topics found in it.
type PreviewScreen struct {
	deps   screen.Deps
	source *quiz.Source
	topics quiz.TopicSet
}

var _ screen.Screen = (*PreviewScreen)(nil)
var _ screen.KeyHintProvider = (*PreviewScreen)(nil)

// New creates the preview screen for state.
func New(deps screen.Deps, state session.State) *PreviewScreen {
	return &PreviewScreen{deps: deps, source: state.Source, topics: state.Topics}
}

func (s *PreviewScreen) Init() tea.Cmd { return nil }

func (s *PreviewScreen) Title() string { return "Topics" }

func (s *PreviewScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Enter", Description: "Configure session"}}
}

func (s *PreviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return s, screen.Do("configure", s.deps.Ctrl.Configure)
	}
	return s, nil
}

func (s *PreviewScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	if s.source != nil {
		kind := "Document"
		if s.source.Kind == quiz.SourceSynthesized {
			kind = "Study text"
		}
		b.WriteString(theme.Subtitle.Render("  " + kind))
		b.WriteString("\n")
		b.WriteString(theme.Title.Render("  " + s.source.Title()))
		b.WriteString("\n\n")
	}

	b.WriteString(theme.Label.Render("  Topics found"))
	b.WriteString("\n")
	for i, t := range s.topics {
		line := fmt.Sprintf("  %d. %s", i+1, t)
		if t == quiz.WholeContent {
			b.WriteString(theme.Hint.Render(line))
		} else {
			b.WriteString(theme.Body.Render(line))
		}
		b.WriteString("\n")
	}
	if len(s.topics) <= 1 {
		b.WriteString(theme.Hint.Render("  No distinct topics were found; the whole content can still be practiced."))
		b.WriteString("\n")
	}
	return b.String()
}
