package session

import (
	"github.com/abhisek/studyaudit/internal/history"
	"github.com/abhisek/studyaudit/internal/inference"
	"github.com/abhisek/studyaudit/internal/quiz"
)

// Step is the active step of the session.
type Step int

const (
	StepAcquiring Step = iota
	StepPreviewing
	StepConfiguring
	StepBusy
	StepAttempting
	StepReviewing
	StepBrowsingHistory
)

func (s Step) String() string {
	switch s {
	case StepAcquiring:
		return "acquiring"
	case StepPreviewing:
		return "previewing"
	case StepConfiguring:
		return "configuring"
	case StepBusy:
		return "busy"
	case StepAttempting:
		return "attempting"
	case StepReviewing:
		return "reviewing"
	case StepBrowsingHistory:
		return "browsing history"
	}
	return "unknown"
}

// State is the whole session as one value. The controller replaces it
// wholesale on every transition.
type State struct {
	Step Step

	// Stage is set while Step is StepBusy.
	Stage inference.Stage

	Source     *quiz.Source
	Topics     quiz.TopicSet
	Config     *quiz.SessionConfig
	Quiz       *quiz.Quiz
	Answers    quiz.AnswerMap
	Evaluation *quiz.EvaluationResult

	// History is the ledger snapshot shown while browsing.
	History []history.Entry

	// Entry is set when Reviewing shows a stored audit.
	Entry *history.Entry

	// Notice is a user-facing message about the last failure.
	Notice string
}

// clone copies the state so the caller can change it freely. Source,
// Quiz, Evaluation and Entry are immutable and shared.
func (s State) clone() State {
	out := s
	if s.Answers != nil {
		out.Answers = s.Answers.Clone()
	}
	if s.Topics != nil {
		out.Topics = append(quiz.TopicSet(nil), s.Topics...)
	}
	if s.History != nil {
		out.History = append([]history.Entry(nil), s.History...)
	}
	if s.Config != nil {
		cfg := *s.Config
		out.Config = &cfg
	}
	return out
}

// Answered reports how many questions have an answer.
func (s State) Answered() int {
	return len(s.Answers)
}
