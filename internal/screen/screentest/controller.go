// Package screentest provides a scripted screen.Controller for UI tests.
package screentest

import (
	"context"
	"sync"

	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/screen"
	"github.com/abhisek/studyaudit/internal/session"
)

// Controller records the operations screens ask for and returns Err from
// each of them. It never changes State on its own; tests set it.
type Controller struct {
	mu      sync.Mutex
	state   session.State
	Calls   []string
	Answers map[int]string
	Config  *quiz.SessionConfig
	Source  *quiz.Source
	Err     error
}

var _ screen.Controller = (*Controller)(nil)

// New returns a controller reporting state.
func New(state session.State) *Controller {
	return &Controller{state: state, Answers: map[int]string{}}
}

// SetState replaces the reported state.
func (c *Controller) SetState(s session.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Called reports whether op was requested.
func (c *Controller) Called(op string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.Calls {
		if call == op {
			return true
		}
	}
	return false
}

func (c *Controller) record(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, op)
	return c.Err
}

func (c *Controller) State() session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) SubmitSource(_ context.Context, src quiz.Source) error {
	c.mu.Lock()
	c.Source = &src
	c.mu.Unlock()
	return c.record("submit source")
}

func (c *Controller) SubmitText(_ context.Context, topic, body string) error {
	src := quiz.SynthesizedSource(topic, body)
	c.mu.Lock()
	c.Source = &src
	c.mu.Unlock()
	return c.record("submit text")
}

func (c *Controller) SubmitTopic(context.Context, string) error { return c.record("submit topic") }

func (c *Controller) Configure() error { return c.record("configure") }

func (c *Controller) StartPractice(_ context.Context, cfg quiz.SessionConfig) error {
	c.mu.Lock()
	c.Config = &cfg
	c.mu.Unlock()
	return c.record("start practice")
}

func (c *Controller) RecordAnswer(id int, answer string) error {
	if err := c.record("record answer"); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if answer == "" {
		delete(c.Answers, id)
	} else {
		c.Answers[id] = answer
	}
	return nil
}

func (c *Controller) EndSession(context.Context) error { return c.record("end session") }

func (c *Controller) Reset() { _ = c.record("reset") }

func (c *Controller) ViewHistory(context.Context) { _ = c.record("view history") }

func (c *Controller) OpenEntry(string) error { return c.record("open entry") }

func (c *Controller) CloseHistory() error { return c.record("close history") }
