// Package session drives the practice session state machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/studyaudit/internal/history"
	"github.com/abhisek/studyaudit/internal/inference"
	"github.com/abhisek/studyaudit/internal/llm"
	"github.com/abhisek/studyaudit/internal/quiz"
)

// Inference is the per-stage inference capability.
type Inference interface {
	DetectTopics(ctx context.Context, src quiz.Source) ([]string, error)
	SynthesizeMaterial(ctx context.Context, topic string) (string, error)
	GenerateQuiz(ctx context.Context, src quiz.Source, cfg quiz.SessionConfig) (*quiz.Quiz, error)
	Grade(ctx context.Context, q *quiz.Quiz, answers quiz.AnswerMap) (*quiz.EvaluationResult, error)
}

// Ledger persists graded sessions.
type Ledger interface {
	Append(ctx context.Context, eval quiz.EvaluationResult, q quiz.Quiz) (history.Entry, error)
	Load(ctx context.Context) []history.Entry
}

// Controller is the SessionController. Operations that call inference
// block until the call settles; Reset and State may be called from any
// goroutine meanwhile.
type Controller struct {
	infer  Inference
	ledger Ledger
	log    logrus.FieldLogger

	mu     sync.Mutex
	state  State
	epoch  uint64
	cancel context.CancelFunc
}

// NewController returns a controller at StepAcquiring.
func NewController(infer Inference, ledger Ledger, log logrus.FieldLogger) *Controller {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Controller{
		infer:  infer,
		ledger: ledger,
		log:    log,
		state:  State{Step: StepAcquiring},
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SubmitSource starts a session from a prepared source and detects its
// topics.
func (c *Controller) SubmitSource(ctx context.Context, src quiz.Source) error {
	if err := src.Validate(); err != nil {
		return c.refuse(StepAcquiring, err)
	}
	return c.transition(ctx, "submit source", StepAcquiring, inference.StageTopics,
		func(ctx context.Context, s State, _ func(inference.Stage)) (State, error) {
			return c.detect(ctx, s, src)
		})
}

// SubmitText starts a session from a topic and a user-supplied body.
func (c *Controller) SubmitText(ctx context.Context, topic, body string) error {
	return c.SubmitSource(ctx, quiz.SynthesizedSource(strings.TrimSpace(topic), body))
}

// SubmitTopic starts a session from a topic alone: study material is
// synthesized first, then its topics are detected.
func (c *Controller) SubmitTopic(ctx context.Context, topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return c.refuse(StepAcquiring, errors.New("enter a topic"))
	}
	return c.transition(ctx, "submit topic", StepAcquiring, inference.StageMaterial,
		func(ctx context.Context, s State, setStage func(inference.Stage)) (State, error) {
			body, err := c.infer.SynthesizeMaterial(ctx, topic)
			if err != nil {
				return s, err
			}
			setStage(inference.StageTopics)
			return c.detect(ctx, s, quiz.SynthesizedSource(topic, body))
		})
}

func (c *Controller) detect(ctx context.Context, s State, src quiz.Source) (State, error) {
	detected, err := c.infer.DetectTopics(ctx, src)
	if err != nil {
		return s, err
	}
	s.Source = &src
	s.Topics = quiz.NewTopicSet(detected)
	s.Step = StepPreviewing
	return s, nil
}

// Configure moves from the topic preview to configuration.
func (c *Controller) Configure() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check("configure session", StepPreviewing); err != nil {
		return err
	}
	c.state.Step = StepConfiguring
	c.state.Notice = ""
	c.log.WithField("step", c.state.Step).Debug("transition committed")
	return nil
}

// StartPractice requests a quiz for cfg.
func (c *Controller) StartPractice(ctx context.Context, cfg quiz.SessionConfig) error {
	if err := cfg.Validate(); err != nil {
		return c.refuse(StepConfiguring, err)
	}
	if topics := c.State().Topics; topics != nil && !topics.Contains(cfg.Topic) {
		return c.refuse(StepConfiguring, fmt.Errorf("topic %q is not one of the detected topics", cfg.Topic))
	}

	return c.transition(ctx, "start practice", StepConfiguring, inference.StageQuiz,
		func(ctx context.Context, s State, _ func(inference.Stage)) (State, error) {
			q, err := c.infer.GenerateQuiz(ctx, *s.Source, cfg)
			if err != nil {
				return s, err
			}
			if q == nil || len(q.Questions) == 0 {
				return s, &inference.ErrMalformedResponse{Stage: inference.StageQuiz, Err: errors.New("quiz has no questions")}
			}
			s.Config = &cfg
			s.Quiz = q
			s.Answers = quiz.AnswerMap{}
			s.Evaluation = nil
			s.Step = StepAttempting
			return s, nil
		})
}

// RecordAnswer sets the answer for question id. A blank answer clears it.
func (c *Controller) RecordAnswer(id int, answer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check("record answer", StepAttempting); err != nil {
		return err
	}
	if _, ok := c.state.Quiz.Question(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, id)
	}

	answers := c.state.Answers.Clone()
	if strings.TrimSpace(answer) == "" {
		delete(answers, id)
	} else {
		answers[id] = answer
	}
	c.state.Answers = answers
	return nil
}

// EndSession grades the attempt and records it in the ledger.
func (c *Controller) EndSession(ctx context.Context) error {
	if s := c.State(); s.Step == StepAttempting && len(s.Answers) == 0 {
		return ErrNoAnswers
	}

	var graded State
	err := c.transition(ctx, "end session", StepAttempting, inference.StageGrading,
		func(ctx context.Context, s State, _ func(inference.Stage)) (State, error) {
			if len(s.Answers) == 0 {
				return s, ErrNoAnswers
			}
			eval, err := c.infer.Grade(ctx, s.Quiz, s.Answers.Clone())
			if err != nil {
				return s, err
			}
			s.Evaluation = eval
			s.Step = StepReviewing
			graded = s
			return s, nil
		})
	if err != nil {
		return err
	}

	// The graded result stands even if it cannot be recorded.
	entry, err := c.ledger.Append(context.WithoutCancel(ctx), *graded.Evaluation, *graded.Quiz)
	if err != nil {
		c.log.WithError(err).Warn("failed to save history entry")
		c.mu.Lock()
		if c.state.Step == StepReviewing && c.state.Evaluation == graded.Evaluation {
			c.state.Notice = "Graded, but this audit could not be saved to history."
		}
		c.mu.Unlock()
		return nil
	}
	c.log.WithField("entry_id", entry.ID).Debug("audit recorded")
	return nil
}

// Reset abandons any in-flight call and returns to StepAcquiring with an
// empty session.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.abandon()
	c.state = State{Step: StepAcquiring}
	c.log.WithField("step", c.state.Step).Debug("session reset")
}

// ViewHistory abandons the current session and shows the ledger.
func (c *Controller) ViewHistory(ctx context.Context) {
	entries := c.ledger.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.abandon()
	c.state = State{Step: StepBrowsingHistory, History: entries}
	c.log.WithFields(logrus.Fields{"step": c.state.Step, "entries": len(entries)}).Debug("transition committed")
}

// OpenEntry shows a stored audit without calling inference.
func (c *Controller) OpenEntry(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check("open entry", StepBrowsingHistory); err != nil {
		return err
	}

	for _, e := range c.state.History {
		if e.ID != id {
			continue
		}
		entry := e
		c.state = State{
			Step:       StepReviewing,
			Quiz:       &entry.Quiz,
			Evaluation: &entry.Evaluation,
			Answers:    entry.Evaluation.Answers(),
			History:    c.state.History,
			Entry:      &entry,
		}
		c.log.WithFields(logrus.Fields{"step": c.state.Step, "entry_id": id}).Debug("transition committed")
		return nil
	}
	return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// CloseHistory leaves the ledger for a fresh session.
func (c *Controller) CloseHistory() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Step != StepBrowsingHistory && c.state.Entry == nil {
		return &ErrInvalidTransition{Op: "close history", From: c.state.Step}
	}
	c.state = State{Step: StepAcquiring}
	return nil
}

// transition runs one inference-bearing step. It enters Busy(stage) from
// step from, runs fn on a copy of the state outside the lock, and then
// either commits what fn returned or restores the previous state with a
// notice. Results that arrive after a reset are dropped.
func (c *Controller) transition(
	ctx context.Context,
	op string,
	from Step,
	stage inference.Stage,
	fn func(ctx context.Context, s State, setStage func(inference.Stage)) (State, error),
) error {
	c.mu.Lock()
	if err := c.check(op, from); err != nil {
		c.mu.Unlock()
		return err
	}

	prev := c.state.clone()
	prev.Notice = ""

	c.epoch++
	epoch := c.epoch
	callCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.state.Step = StepBusy
	c.state.Stage = stage
	c.state.Notice = ""
	c.mu.Unlock()
	defer cancel()

	setStage := func(next inference.Stage) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch == epoch {
			c.state.Stage = next
		}
	}

	next, err := fn(callCtx, prev.clone(), setStage)

	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.log.WithFields(logrus.Fields{"op": op, "stage": c.state.Stage})
	if c.epoch != epoch {
		log.Info("late result discarded")
		return ErrAbandoned
	}
	c.cancel = nil

	if err != nil {
		prev.Notice = noticeFor(c.state.Stage, err)
		c.state = prev
		log.WithError(err).WithField("step", prev.Step).Info("transition rolled back")
		return err
	}

	next.Stage = ""
	next.Notice = ""
	c.state = next
	log.WithField("step", next.Step).Debug("transition committed")
	return nil
}

// check verifies the current step allows op. Callers hold c.mu.
func (c *Controller) check(op string, want Step) error {
	if c.state.Step == StepBusy {
		return ErrBusy
	}
	if c.state.Step != want {
		return &ErrInvalidTransition{Op: op, From: c.state.Step}
	}
	return nil
}

// refuse reports a local validation failure without changing step.
func (c *Controller) refuse(want Step, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cerr := c.check("submit", want); cerr != nil {
		return cerr
	}
	c.state.Notice = capitalize(err.Error())
	return err
}

// abandon cancels the in-flight call, if any, and invalidates its result.
// Callers hold c.mu.
func (c *Controller) abandon() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.epoch++
}

func noticeFor(stage inference.Stage, err error) string {
	var (
		exhausted   *llm.ErrRateLimitExhausted
		malformed   *inference.ErrMalformedResponse
		unsupported *llm.ErrUnsupportedContent
		unavailable *llm.ErrProviderUnavailable
	)
	switch {
	case errors.As(err, &exhausted):
		return "The inference service is rate limiting requests. Wait a moment and try again."
	case errors.As(err, &malformed):
		return fmt.Sprintf("The service returned an unusable response while %s. Try again.", malformed.Stage)
	case errors.As(err, &unsupported):
		return fmt.Sprintf("The %s provider cannot read %s documents.", unsupported.Provider, unsupported.MediaType)
	case errors.As(err, &unavailable):
		return "The inference service is unavailable. Check your connection and API key."
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("Timed out while %s. Try again.", stage)
	}
	return capitalize(fmt.Sprintf("%s failed: %v", stage, err))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
