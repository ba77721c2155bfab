package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyaudit/internal/llm"
	"github.com/abhisek/studyaudit/internal/quiz"
)

func quizJSON(n int) json.RawMessage {
	var qs []string
	for i := 1; i <= n; i++ {
		qs = append(qs, fmt.Sprintf(`{"id":%d,"type":"objective","prompt":"Q%d?",
			"choices":[{"label":"A","text":"a"},{"label":"B","text":"b"},{"label":"C","text":"c"},{"label":"D","text":"d"}],
			"correct_answer":"B","evidence":"e","source_citation":"s"}`, i, i))
	}
	return json.RawMessage(fmt.Sprintf(`{"title":"BST Drill","type":"objective","difficulty":"advanced",
		"total_questions":%d,"questions":[%s]}`, n, strings.Join(qs, ",")))
}

func evaluationJSON(ids ...int) json.RawMessage {
	var rs []string
	for _, id := range ids {
		rs = append(rs, fmt.Sprintf(`{"question_id":%d,"user_answer":"B","correct_answer":"B",
			"is_correct":true,"score":1,"explanation":"ok","evidence":"e"}`, id))
	}
	return json.RawMessage(fmt.Sprintf(`{"total_questions":%d,"correct_count":%d,"incorrect_count":0,
		"score":%d,"max_score":%d,"percentage":100,"summary":"Solid.","review":[%s]}`,
		len(ids), len(ids), len(ids), len(ids), strings.Join(rs, ",")))
}

func fastRetry() llm.RetryConfig {
	return llm.RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 10 * time.Millisecond, Multiplier: 2}
}

func newTestClient(fast, pro llm.Provider) *Client {
	return New(llm.Providers{Fast: fast, Pro: pro}, Config{MaxTokens: 1024}, nil)
}

func TestDetectTopics_Synthesized(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"topics":["Insertion","Deletion"]}`)})
	c := newTestClient(mock, nil)

	topics, err := c.DetectTopics(context.Background(), quiz.SynthesizedSource("Binary Search Trees", "BST body text"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Insertion", "Deletion"}, topics)

	req, _ := mock.LastCall()
	assert.Empty(t, req.Attachments, "synthesized sources travel as text")
	assert.Contains(t, req.Messages[0].Content, "Binary Search Trees")
	assert.Contains(t, req.Messages[0].Content, "BST body text")
	assert.Equal(t, quiz.TopicsSchema, req.Schema)
	assert.Equal(t, "topics", mock.Purposes[0])
}

func TestDetectTopics_MoreThanFiveAccepted(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockJSON(`{"topics":["a","b","c","d","e","f"]}`))
	c := newTestClient(mock, nil)

	topics, err := c.DetectTopics(context.Background(), quiz.SynthesizedSource("Letters", "abcdef"))
	require.NoError(t, err)
	assert.Len(t, topics, 6)
	assert.Equal(t, quiz.TopicSet{quiz.WholeContent, "a", "b", "c", "d", "e"}, quiz.NewTopicSet(topics))
}

func TestDetectTopics_DocumentAttached(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"topics":["Cells"]}`)})
	c := newTestClient(mock, nil)

	src := quiz.DocumentSource("bio.pdf", "application/pdf", []byte("%PDF-1.7"))
	_, err := c.DetectTopics(context.Background(), src)
	require.NoError(t, err)

	req, _ := mock.LastCall()
	require.Len(t, req.Attachments, 1)
	assert.Equal(t, "application/pdf", req.Attachments[0].MediaType)
	assert.Equal(t, []byte("%PDF-1.7"), req.Attachments[0].Data)
	assert.NotContains(t, req.Messages[0].Content, "%PDF")
}

func TestSynthesizeMaterial(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"title":"Osmosis","body":"Water moves..."}`)},
		llm.MockResponse{Content: json.RawMessage(`{"title":"Osmosis","body":"  "}`)},
	)
	c := newTestClient(mock, nil)

	body, err := c.SynthesizeMaterial(context.Background(), "Osmosis")
	require.NoError(t, err)
	assert.Equal(t, "Water moves...", body)

	_, err = c.SynthesizeMaterial(context.Background(), "Osmosis")
	var malformed *ErrMalformedResponse
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, StageMaterial, malformed.Stage)
}

func TestGenerateQuiz(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: quizJSON(5)})
	c := newTestClient(mock, nil)

	cfg := quiz.SessionConfig{Format: quiz.FormatObjective, Count: 5, Difficulty: quiz.DifficultyAdvanced, Topic: quiz.WholeContent}
	q, err := c.GenerateQuiz(context.Background(), quiz.SynthesizedSource("BST", "body"), cfg)
	require.NoError(t, err)
	require.Len(t, q.Questions, 5)
	for _, item := range q.Questions {
		assert.Len(t, item.Choices, 4)
		assert.Equal(t, "B", item.CorrectAnswer)
	}

	req, _ := mock.LastCall()
	assert.Contains(t, req.Messages[0].Content, "exactly 5 questions")
	assert.Contains(t, req.Messages[0].Content, "advanced")
}

func TestGenerateQuiz_EmptyQuestionsIsMalformed(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"title":"Empty","type":"objective","difficulty":"standard","total_questions":5,"questions":[]}`)})
	c := newTestClient(mock, nil)

	_, err := c.GenerateQuiz(context.Background(), quiz.SynthesizedSource("BST", "body"), quiz.DefaultConfig())
	var malformed *ErrMalformedResponse
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, StageQuiz, malformed.Stage)
}

func TestGenerateQuiz_SchemaViolationIsMalformedAndNotRetried(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"title":"x"}`)},
		llm.MockResponse{Content: quizJSON(5)},
	)
	c := newTestClient(llm.WithRetry(mock, fastRetry(), nil), nil)

	_, err := c.GenerateQuiz(context.Background(), quiz.SynthesizedSource("BST", "body"), quiz.DefaultConfig())
	var malformed *ErrMalformedResponse
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, mock.CallCount())
}

func TestGenerateQuiz_ExpertRoutesToPro(t *testing.T) {
	fast := llm.NewMockProvider()
	pro := llm.NewMockProvider(llm.MockResponse{Content: quizJSON(5)})
	c := newTestClient(fast, pro)

	cfg := quiz.SessionConfig{Format: quiz.FormatObjective, Count: 5, Difficulty: quiz.DifficultyExpert, Topic: "Trees"}
	_, err := c.GenerateQuiz(context.Background(), quiz.SynthesizedSource("BST", "body"), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, fast.CallCount())
	assert.Equal(t, 1, pro.CallCount())
}

func TestGrade_SourceNotResent(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: evaluationJSON(1, 2)})
	c := newTestClient(mock, nil)

	q := &quiz.Quiz{Title: "T", Type: quiz.FormatObjective, Questions: []quiz.Question{
		{ID: 1, Type: quiz.FormatObjective, Prompt: "one"},
		{ID: 2, Type: quiz.FormatObjective, Prompt: "two"},
	}}
	eval, err := c.Grade(context.Background(), q, quiz.AnswerMap{1: "B"})
	require.NoError(t, err)
	assert.Equal(t, 2, eval.TotalQuestions)
	assert.Equal(t, 2, eval.CorrectCount)

	req, _ := mock.LastCall()
	assert.Empty(t, req.Attachments)
	assert.NotContains(t, req.Messages[0].Content, "Study material")
	assert.Contains(t, req.Messages[0].Content, "(unanswered)")
	assert.Equal(t, "grading", mock.Purposes[0])
}

func TestGrade_UnknownReviewIDIsMalformed(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: evaluationJSON(1, 9)})
	c := newTestClient(mock, nil)

	q := &quiz.Quiz{Questions: []quiz.Question{{ID: 1}, {ID: 2}}}
	_, err := c.Grade(context.Background(), q, quiz.AnswerMap{1: "A"})
	var malformed *ErrMalformedResponse
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, StageGrading, malformed.Stage)
}

func TestInvoke_RateLimitedTwiceThenSucceeds(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}},
		llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}},
		llm.MockResponse{Content: json.RawMessage(`{"topics":["Heaps"]}`)},
	)
	c := newTestClient(llm.WithRetry(mock, fastRetry(), nil), nil)

	topics, err := c.DetectTopics(context.Background(), quiz.SynthesizedSource("Heaps", "body"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Heaps"}, topics)
	assert.Equal(t, 3, mock.CallCount())
}

func TestInvoke_RateLimitExhausted(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}},
		llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}},
		llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}},
	)
	c := newTestClient(llm.WithRetry(mock, fastRetry(), nil), nil)

	_, err := c.DetectTopics(context.Background(), quiz.SynthesizedSource("Heaps", "body"))
	var exhausted *llm.ErrRateLimitExhausted
	require.ErrorAs(t, err, &exhausted)
	var malformed *ErrMalformedResponse
	assert.False(t, errors.As(err, &malformed))
}

func TestInvoke_OtherErrorsPropagateImmediately(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}},
		llm.MockResponse{Content: json.RawMessage(`{"topics":[]}`)},
	)
	c := newTestClient(llm.WithRetry(mock, fastRetry(), nil), nil)

	_, err := c.DetectTopics(context.Background(), quiz.SynthesizedSource("Heaps", "body"))
	var unavailable *llm.ErrProviderUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 1, mock.CallCount())
}

func TestInvoke_TruncatedIsMalformed(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{Content: json.RawMessage(`{"topi`)}})
	c := newTestClient(mock, nil)

	_, err := c.DetectTopics(context.Background(), quiz.SynthesizedSource("Heaps", "body"))
	var malformed *ErrMalformedResponse
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, StageTopics, malformed.Stage)
}

func TestTierFor(t *testing.T) {
	expert := &quiz.SessionConfig{Format: quiz.FormatObjective, Difficulty: quiz.DifficultyExpert}
	open := &quiz.SessionConfig{Format: quiz.FormatOpenEnded, Difficulty: quiz.DifficultyStandard}
	plain := &quiz.SessionConfig{Format: quiz.FormatObjective, Difficulty: quiz.DifficultyAdvanced}

	assert.Equal(t, llm.TierFast, TierFor(StageTopics, nil))
	assert.Equal(t, llm.TierPro, TierFor(StageQuiz, expert))
	assert.Equal(t, llm.TierFast, TierFor(StageQuiz, open))
	assert.Equal(t, llm.TierPro, TierFor(StageGrading, open))
	assert.Equal(t, llm.TierFast, TierFor(StageGrading, plain))
}
