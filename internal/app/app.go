package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/studyaudit/internal/router"
	"github.com/abhisek/studyaudit/internal/screen"
	"github.com/abhisek/studyaudit/internal/screens/acquire"
	"github.com/abhisek/studyaudit/internal/screens/attempt"
	"github.com/abhisek/studyaudit/internal/screens/busy"
	"github.com/abhisek/studyaudit/internal/screens/configure"
	"github.com/abhisek/studyaudit/internal/screens/history"
	"github.com/abhisek/studyaudit/internal/screens/preview"
	"github.com/abhisek/studyaudit/internal/screens/review"
	"github.com/abhisek/studyaudit/internal/session"
	"github.com/abhisek/studyaudit/internal/ui/layout"
	"github.com/abhisek/studyaudit/internal/ui/theme"
)

// heartbeatInterval is how often the UI re-reads controller state while
// an operation runs in the background.
const heartbeatInterval = 150 * time.Millisecond

type heartbeatMsg time.Time

func heartbeat() tea.Cmd {
	return tea.Tick(heartbeatInterval, func(t time.Time) tea.Msg { return heartbeatMsg(t) })
}

// AppModel is the root Bubble Tea model. It owns no session state; every
// frame is derived from the controller.
type AppModel struct {
	deps   screen.Deps
	router *router.Router
	log    logrus.FieldLogger
	width  int
	height int
	status string
}

func newAppModel(deps screen.Deps, log logrus.FieldLogger) AppModel {
	return AppModel{
		deps:   deps,
		router: router.New(builder(deps)),
		log:    log,
	}
}

// builder maps each step to its screen.
func builder(deps screen.Deps) router.Builder {
	return func(state session.State) screen.Screen {
		switch state.Step {
		case session.StepPreviewing:
			return preview.New(deps, state)
		case session.StepConfiguring:
			return configure.New(deps, state)
		case session.StepBusy:
			return busy.New(deps, state)
		case session.StepAttempting:
			return attempt.New(deps, state)
		case session.StepReviewing:
			return review.New(deps, state)
		case session.StepBrowsingHistory:
			return history.New(deps, state)
		default:
			return acquire.New(deps)
		}
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Sync(m.deps.Ctrl.State()), heartbeat())
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case heartbeatMsg:
		return m, tea.Batch(heartbeat(), m.sync())

	case screen.DoneMsg:
		m.status = m.statusFor(msg)
		return m, m.sync()

	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			m.deps.Ctrl.Reset()
			m.router.Invalidate()
			return m, m.sync()
		case "ctrl+l":
			ctx, ctrl := m.deps.Ctx, m.deps.Ctrl
			return m, screen.Do("view history", func() error {
				ctrl.ViewHistory(ctx)
				return nil
			})
		}
	}

	cmd := m.router.Update(msg)
	return m, tea.Batch(cmd, m.sync())
}

func (m AppModel) sync() tea.Cmd {
	return m.router.Sync(m.deps.Ctrl.State())
}

// statusFor turns a finished operation into a status line. Failures the
// controller already explains with a notice, and abandoned calls, show
// nothing extra.
func (m AppModel) statusFor(msg screen.DoneMsg) string {
	if msg.Err == nil {
		return ""
	}
	if errors.Is(msg.Err, session.ErrAbandoned) {
		m.log.WithField("op", msg.Op).Debug("result of abandoned operation dropped")
		return ""
	}
	m.log.WithError(msg.Err).WithField("op", msg.Op).Info("operation failed")
	if m.deps.Ctrl.State().Notice != "" {
		return ""
	}
	return msg.Err.Error()
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the frame for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	hints := []layout.KeyHint{}
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
		if hp, ok := active.(screen.KeyHintProvider); ok {
			hints = append(hints, hp.KeyHints()...)
		}
	}
	hints = append(hints,
		layout.KeyHint{Key: "Ctrl+L", Description: "History"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
	)

	header := layout.RenderHeader(title, status+"  ", m.width)
	footer := layout.RenderFooter(hints, m.width)

	notice := m.status
	if n := m.deps.Ctrl.State().Notice; n != "" {
		notice = n
	}

	contentHeight := layout.ContentHeight(header, footer, m.height)
	var banner string
	if notice != "" {
		banner = theme.Notice.Render("  ! "+notice) + "\n"
		contentHeight--
	}

	content := banner + m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program over ctrl and blocks until the user
// quits.
func Run(ctx context.Context, ctrl screen.Controller, log logrus.FieldLogger) error {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	p := tea.NewProgram(newAppModel(screen.Deps{Ctx: ctx, Ctrl: ctrl}, log))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
