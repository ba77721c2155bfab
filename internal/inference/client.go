// Package inference performs the per-stage calls to the generative
// inference service and returns validated, typed results.
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/studyaudit/internal/llm"
	"github.com/abhisek/studyaudit/internal/quiz"
)

// Config tunes the client.
type Config struct {
	// MaxTokens is the response budget per call.
	MaxTokens int

	// Timeout bounds one logical call including retries. Zero disables.
	Timeout time.Duration

	// Temperature for quiz synthesis. Other stages run at 0.
	Temperature float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   8192,
		Timeout:     90 * time.Second,
		Temperature: 0.4,
	}
}

// Client is the InferenceClient. It holds no session state; providers are
// expected to be wrapped with retry and logging already.
type Client struct {
	providers llm.Providers
	config    Config
	log       logrus.FieldLogger
}

// New creates a Client.
func New(providers llm.Providers, cfg Config, log logrus.FieldLogger) *Client {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	return &Client{providers: providers, config: cfg, log: log}
}

type topicsOutput struct {
	Topics []string `json:"topics"`
}

type materialOutput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// DetectTopics returns the raw topic labels found in src.
func (c *Client) DetectTopics(ctx context.Context, src quiz.Source) ([]string, error) {
	req := c.request(topicsSystemPrompt, topicsMessage(src), quiz.TopicsSchema)
	req.Attachments = attachments(src)

	out, err := invoke[topicsOutput](ctx, c, StageTopics, TierFor(StageTopics, nil), req, nil)
	if err != nil {
		return nil, err
	}
	return out.Topics, nil
}

// SynthesizeMaterial writes a study text for a topic.
func (c *Client) SynthesizeMaterial(ctx context.Context, topic string) (string, error) {
	req := c.request(materialSystemPrompt, materialMessage(topic), quiz.MaterialSchema)

	out, err := invoke(ctx, c, StageMaterial, TierFor(StageMaterial, nil), req, func(m *materialOutput) error {
		if strings.TrimSpace(m.Body) == "" {
			return errors.New("empty body")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return out.Body, nil
}

// GenerateQuiz synthesizes a quiz from src for cfg.
func (c *Client) GenerateQuiz(ctx context.Context, src quiz.Source, cfg quiz.SessionConfig) (*quiz.Quiz, error) {
	req := c.request(quizSystemPrompt, quizMessage(src, cfg), quiz.QuizSchema)
	req.Attachments = attachments(src)
	req.Temperature = c.config.Temperature

	return invoke(ctx, c, StageQuiz, TierFor(StageQuiz, &cfg), req, quiz.CheckQuiz)
}

// Grade evaluates answers against q. The source is not sent.
func (c *Client) Grade(ctx context.Context, q *quiz.Quiz, answers quiz.AnswerMap) (*quiz.EvaluationResult, error) {
	msg, err := gradingMessage(q, answers)
	if err != nil {
		return nil, err
	}
	req := c.request(gradingSystemPrompt, msg, quiz.EvaluationSchema)

	cfg := &quiz.SessionConfig{Format: q.Type, Difficulty: q.Difficulty}
	return invoke(ctx, c, StageGrading, TierFor(StageGrading, cfg), req, func(e *quiz.EvaluationResult) error {
		return quiz.CheckEvaluation(e, q)
	})
}

func (c *Client) request(system, user string, schema *llm.Schema) llm.Request {
	req := llm.UserRequest(system, user, schema)
	req.MaxTokens = c.config.MaxTokens
	return req
}

// invoke performs one logical request and decodes the result into T.
// Parse and shape failures become ErrMalformedResponse; everything else
// is returned wrapped with the stage.
func invoke[T any](ctx context.Context, c *Client, stage Stage, tier llm.Tier, req llm.Request, check func(*T) error) (*T, error) {
	ctx = llm.WithPurpose(ctx, stage.purpose())
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	provider := c.providers.For(tier)
	if provider == nil {
		return nil, fmt.Errorf("%s: no provider configured for %s tier", stage, tier)
	}

	log := c.log.WithFields(logrus.Fields{"stage": stage, "tier": tier, "model": provider.ModelID()})
	log.Debug("inference call")

	resp, err := provider.Generate(ctx, req)
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		var truncated *llm.ErrMaxTokensExceeded
		if errors.As(err, &invalid) || errors.As(err, &truncated) {
			return nil, &ErrMalformedResponse{Stage: stage, Err: err}
		}
		log.WithError(err).Info("inference call failed")
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	var out T
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &ErrMalformedResponse{Stage: stage, Err: err}
	}
	if check != nil {
		if err := check(&out); err != nil {
			return nil, &ErrMalformedResponse{Stage: stage, Err: err}
		}
	}
	return &out, nil
}

// TierFor routes a stage to a model tier. Expert quizzes and grading of
// open-ended answers use the pro tier.
func TierFor(stage Stage, cfg *quiz.SessionConfig) llm.Tier {
	if cfg == nil {
		return llm.TierFast
	}
	switch stage {
	case StageQuiz:
		if cfg.Difficulty == quiz.DifficultyExpert {
			return llm.TierPro
		}
	case StageGrading:
		if cfg.Format == quiz.FormatOpenEnded {
			return llm.TierPro
		}
	}
	return llm.TierFast
}

// attachments shapes the payload by source variant: documents ride as a
// binary attachment, synthesized text is already in the prompt.
func attachments(src quiz.Source) []llm.Attachment {
	if src.Kind != quiz.SourceDocument {
		return nil
	}
	return []llm.Attachment{{Name: src.Name, MediaType: src.MediaType, Data: src.Data}}
}
