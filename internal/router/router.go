package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/screen"
	"github.com/abhisek/studyaudit/internal/session"
)

// Builder creates the screen that presents a session state.
type Builder func(session.State) screen.Screen

// key identifies which screen a state needs. Answering keeps the same
// quiz pointer, so the attempt screen survives RecordAnswer.
type key struct {
	step  session.Step
	quiz  *quiz.Quiz
	entry string
}

func keyOf(s session.State) key {
	k := key{step: s.Step, quiz: s.Quiz}
	if s.Entry != nil {
		k.entry = s.Entry.ID
	}
	return k
}

// Router follows the controller's step and swaps the active screen when
// the step changes.
type Router struct {
	build  Builder
	key    key
	active screen.Screen
}

// New creates a Router that builds screens with build.
func New(build Builder) *Router {
	return &Router{build: build}
}

// Sync makes the active screen match state. It returns the new screen's
// Init command when a screen was built.
func (r *Router) Sync(state session.State) tea.Cmd {
	k := keyOf(state)
	if r.active != nil && k == r.key {
		return nil
	}
	r.key = k
	r.active = r.build(state)
	return r.active.Init()
}

// Invalidate drops the active screen so the next Sync rebuilds it.
func (r *Router) Invalidate() {
	r.active = nil
}

// Active returns the current screen, nil before the first Sync.
func (r *Router) Active() screen.Screen {
	return r.active
}

// Update forwards a message to the active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	if r.active == nil {
		return nil
	}
	updated, cmd := r.active.Update(msg)
	r.active = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	if r.active == nil {
		return ""
	}
	return r.active.View(width, height)
}
