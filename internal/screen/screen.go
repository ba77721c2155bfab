package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/session"
	"github.com/abhisek/studyaudit/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is an optional interface for screens that show a
// status on the right of the header.
type StatusProvider interface {
	Status() string
}

// Controller is the part of session.Controller that screens drive.
type Controller interface {
	State() session.State
	SubmitSource(ctx context.Context, src quiz.Source) error
	SubmitText(ctx context.Context, topic, body string) error
	SubmitTopic(ctx context.Context, topic string) error
	Configure() error
	StartPractice(ctx context.Context, cfg quiz.SessionConfig) error
	RecordAnswer(id int, answer string) error
	EndSession(ctx context.Context) error
	Reset()
	ViewHistory(ctx context.Context)
	OpenEntry(id string) error
	CloseHistory() error
}

var _ Controller = (*session.Controller)(nil)

// Deps are handed to every screen on construction.
type Deps struct {
	Ctx  context.Context
	Ctrl Controller
}

// DoneMsg reports that a controller operation returned.
type DoneMsg struct {
	Op  string
	Err error
}

// Do runs fn off the UI loop and reports its outcome as a DoneMsg.
// Inference-bearing operations block for the whole call, so screens
// always go through Do for them.
func Do(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return DoneMsg{Op: op, Err: fn()}
	}
}
