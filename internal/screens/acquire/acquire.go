package acquire

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyaudit/internal/ingest"
	"github.com/abhisek/studyaudit/internal/screen"
	"github.com/abhisek/studyaudit/internal/ui/components"
	"github.com/abhisek/studyaudit/internal/ui/layout"
	"github.com/abhisek/studyaudit/internal/ui/theme"
)

type mode int

const (
	modeMenu mode = iota
	modeDocument
	modeTopic
	modeText
)

type pickModeMsg mode

func pick(m mode) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return pickModeMsg(m) }
	}
}

// AcquireScreen collects the study source: a document, a topic to
// synthesize material for, or a topic with pasted text.
type AcquireScreen struct {
	deps   screen.Deps
	mode   mode
	menu   components.Menu
	path   components.TextInput
	topic  components.TextInput
	body   components.TextArea
	errMsg string
}

var _ screen.Screen = (*AcquireScreen)(nil)
var _ screen.KeyHintProvider = (*AcquireScreen)(nil)

// New creates the acquire screen.
func New(deps screen.Deps) *AcquireScreen {
	return &AcquireScreen{
		deps: deps,
		menu: components.NewMenu([]components.MenuItem{
			{Label: "Study a document", Hint: "PDF, text, markdown or an image of notes", Action: pick(modeDocument)},
			{Label: "Study a topic", Hint: "Study material is written for the topic first", Action: pick(modeTopic)},
			{Label: "Paste study text", Hint: "A topic plus your own notes", Action: pick(modeText)},
		}),
		path:  components.NewTextInput("Document path", "~/notes/lecture-04.pdf", 1024),
		topic: components.NewTextInput("Topic", "Binary search trees", 200),
		body:  components.NewTextArea("Study text", "Paste your notes here...", 8),
	}
}

func (s *AcquireScreen) Init() tea.Cmd {
	return nil
}

func (s *AcquireScreen) Title() string {
	return "New Audit"
}

func (s *AcquireScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeMenu:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
		}
	case modeText:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Switch field"},
			{Key: "Ctrl+S", Description: "Submit"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *AcquireScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case pickModeMsg:
		return s, s.enter(mode(msg))
	case tea.KeyMsg:
		if s.mode == modeMenu {
			var cmd tea.Cmd
			s.menu, cmd = s.menu.Update(msg)
			return s, cmd
		}
		return s.handleKey(msg)
	}
	return s, s.forward(msg)
}

func (s *AcquireScreen) enter(m mode) tea.Cmd {
	s.mode = m
	s.errMsg = ""
	s.path.Blur()
	s.topic.Blur()
	s.body.Blur()

	switch m {
	case modeDocument:
		return s.path.Focus()
	case modeTopic, modeText:
		return s.topic.Focus()
	}
	return nil
}

func (s *AcquireScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, s.enter(modeMenu)
	case "tab", "shift+tab":
		if s.mode == modeText {
			return s, s.toggleTextFocus()
		}
		return s, nil
	case "ctrl+s":
		return s, s.submit()
	case "enter":
		if s.mode == modeText {
			if s.topic.Focused() {
				return s, s.toggleTextFocus()
			}
			break
		}
		return s, s.submit()
	}
	return s, s.forward(msg)
}

func (s *AcquireScreen) toggleTextFocus() tea.Cmd {
	if s.topic.Focused() {
		s.topic.Blur()
		return s.body.Focus()
	}
	s.body.Blur()
	return s.topic.Focus()
}

func (s *AcquireScreen) forward(msg tea.Msg) tea.Cmd {
	var cmds [3]tea.Cmd
	s.path, cmds[0] = s.path.Update(msg)
	s.topic, cmds[1] = s.topic.Update(msg)
	s.body, cmds[2] = s.body.Update(msg)
	return tea.Batch(cmds[:]...)
}

// submit validates the fields locally and hands the source to the
// controller off the UI loop.
func (s *AcquireScreen) submit() tea.Cmd {
	ctx, ctrl := s.deps.Ctx, s.deps.Ctrl
	topic := strings.TrimSpace(s.topic.Value())
	s.errMsg = ""

	switch s.mode {
	case modeDocument:
		path := strings.TrimSpace(s.path.Value())
		if path == "" {
			s.errMsg = "Enter the path of a document."
			return nil
		}
		return screen.Do("submit document", func() error {
			src, err := ingest.ReadDocument(path)
			if err != nil {
				return err
			}
			return ctrl.SubmitSource(ctx, src)
		})

	case modeTopic:
		if topic == "" {
			s.errMsg = "Enter a topic to study."
			return nil
		}
		return screen.Do("submit topic", func() error {
			return ctrl.SubmitTopic(ctx, topic)
		})

	case modeText:
		body := strings.TrimSpace(s.body.Value())
		if topic == "" || body == "" {
			s.errMsg = "Both a topic and study text are needed."
			return nil
		}
		return screen.Do("submit text", func() error {
			return ctrl.SubmitText(ctx, topic, body)
		})
	}
	return nil
}

func (s *AcquireScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("  What are you studying?"))
	b.WriteString("\n\n")

	inner := min(width-4, 100)
	s.body.SetWidth(inner - 2)

	switch s.mode {
	case modeMenu:
		b.WriteString(s.menu.View())
	case modeDocument:
		b.WriteString(theme.Card.Width(inner).Render(s.path.View()))
	case modeTopic:
		b.WriteString(theme.Card.Width(inner).Render(s.topic.View()))
	case modeText:
		b.WriteString(theme.Card.Width(inner).Render(s.topic.View() + "\n\n" + s.body.View()))
	}

	if s.errMsg != "" {
		b.WriteString("\n\n  " + theme.Incorrect.Render(s.errMsg))
	}
	return b.String()
}
