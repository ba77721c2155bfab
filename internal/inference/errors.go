package inference

import (
	"fmt"

	"github.com/abhisek/studyaudit/internal/llm"
)

// Stage names the inference-bearing step a call serves.
type Stage string

const (
	StageMaterial Stage = "synthesizing material"
	StageTopics   Stage = "detecting topics"
	StageQuiz     Stage = "generating quiz"
	StageGrading  Stage = "grading"
)

// purpose maps a stage to the llm request log purpose.
func (s Stage) purpose() string {
	switch s {
	case StageMaterial:
		return llm.PurposeMaterial
	case StageTopics:
		return llm.PurposeTopics
	case StageQuiz:
		return llm.PurposeQuiz
	case StageGrading:
		return llm.PurposeGrading
	}
	return llm.PurposeUnknown
}

// ErrMalformedResponse is returned when a stage response cannot be parsed
// or fails its shape checks. It is never retried.
type ErrMalformedResponse struct {
	Stage Stage
	Err   error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Stage, e.Err)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Err }
