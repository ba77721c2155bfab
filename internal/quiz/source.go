package quiz

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// SourceKind tags the Source variant.
type SourceKind string

const (
	SourceDocument    SourceKind = "document"
	SourceSynthesized SourceKind = "synthesized"
)

// Source is the study material of a session: either a binary document or
// a synthesized topic text. It is not modified after construction.
type Source struct {
	Kind SourceKind `validate:"required,oneof=document synthesized"`

	// Document variant.
	Name      string `validate:"required_if=Kind document"`
	MediaType string `validate:"required_if=Kind document"`
	Data      []byte `validate:"required_if=Kind document"`

	// Synthesized variant.
	Topic string `validate:"required_if=Kind synthesized"`
	Body  string `validate:"required_if=Kind synthesized"`
}

// DocumentSource builds the document variant.
func DocumentSource(name, mediaType string, data []byte) Source {
	return Source{Kind: SourceDocument, Name: name, MediaType: mediaType, Data: data}
}

// SynthesizedSource builds the synthesized variant.
func SynthesizedSource(topic, body string) Source {
	return Source{Kind: SourceSynthesized, Topic: topic, Body: body}
}

// Title is a short display label.
func (s Source) Title() string {
	if s.Kind == SourceDocument {
		return s.Name
	}
	return s.Topic
}

// Validate checks that the fields of the tagged variant are present.
func (s Source) Validate() error {
	if err := validate().Struct(s); err != nil {
		return fmt.Errorf("invalid source: %w", err)
	}
	return nil
}

// SessionConfig is fixed once a quiz request is issued.
type SessionConfig struct {
	Format     Format     `validate:"required,oneof=objective open-ended"`
	Count      int        `validate:"required,oneof=5 10 15"`
	Difficulty Difficulty `validate:"required,oneof=standard advanced expert"`
	Topic      string     `validate:"required"`
}

// DefaultConfig returns the initial configuration for a topic set.
func DefaultConfig() SessionConfig {
	return SessionConfig{
		Format:     FormatObjective,
		Count:      Counts[0],
		Difficulty: DifficultyStandard,
		Topic:      WholeContent,
	}
}

// Validate checks the configuration values.
func (c SessionConfig) Validate() error {
	if err := validate().Struct(c); err != nil {
		return fmt.Errorf("invalid session config: %w", err)
	}
	return nil
}

var (
	validateOnce sync.Once
	validateInst *validator.Validate
)

func validate() *validator.Validate {
	validateOnce.Do(func() {
		validateInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validateInst
}
