package llm

import "context"

// Request log purposes, one per inference stage.
const (
	PurposeTopics   = "topics"
	PurposeMaterial = "material"
	PurposeQuiz     = "quiz"
	PurposeGrading  = "grading"
	PurposeUnknown  = "unknown"
)

type purposeKey struct{}

// WithPurpose labels every request made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return PurposeUnknown
}
