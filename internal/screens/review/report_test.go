package review

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyaudit/internal/history"
	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/screen"
	"github.com/abhisek/studyaudit/internal/screen/screentest"
	"github.com/abhisek/studyaudit/internal/session"
)

func gradedQuiz() (*quiz.Quiz, *quiz.EvaluationResult) {
	q := &quiz.Quiz{
		Title: "Binary Search Trees", Type: quiz.FormatObjective, TotalQuestions: 2,
		Questions: []quiz.Question{
			{ID: 1, Type: quiz.FormatObjective, Prompt: "Average lookup?", CorrectAnswer: "B",
				Choices: []quiz.Choice{{Label: "A", Text: "O(1)"}, {Label: "B", Text: "O(log n)"}, {Label: "C", Text: "O(n)"}, {Label: "D", Text: "O(n²)"}},
				Evidence: "Each comparison halves the search space."},
			{ID: 2, Type: quiz.FormatObjective, Prompt: "Worst-case lookup?", CorrectAnswer: "C",
				Choices: []quiz.Choice{{Label: "A", Text: "O(1)"}, {Label: "B", Text: "O(log n)"}, {Label: "C", Text: "O(n)"}, {Label: "D", Text: "O(n²)"}}},
		},
	}
	e := &quiz.EvaluationResult{
		TotalQuestions: 2, CorrectCount: 1, IncorrectCount: 1, Score: 1, MaxScore: 2, Percentage: 50,
		Summary: "Solid on averages, revisit degenerate trees.",
		Review: []quiz.ReviewItem{
			{QuestionID: 1, UserAnswer: "B", CorrectAnswer: "B", IsCorrect: true, Score: 1, Explanation: "Balanced trees halve the range."},
			{QuestionID: 2, CorrectAnswer: "C", Score: 0, Explanation: "A sorted insert order degenerates into a list."},
		},
	}
	return q, e
}

func TestReport(t *testing.T) {
	q, e := gradedQuiz()

	out := Report(q, e, 90)

	assert.Contains(t, out, "Binary Search Trees")
	assert.Contains(t, out, "Score 1 / 2")
	assert.Contains(t, out, "B) O(log n)")
	assert.Contains(t, out, "C) O(n)")
	assert.Contains(t, out, "(unanswered)")
	assert.Contains(t, out, "Each comparison halves")
	assert.Contains(t, out, "revisit degenerate trees")
}

func TestReportDefaultTitle(t *testing.T) {
	_, e := gradedQuiz()

	assert.Contains(t, Report(&quiz.Quiz{}, e, 90), history.DefaultTitle)
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "3", formatScore(3))
	assert.Equal(t, "2.5", formatScore(2.5))
}

func TestEscReturnsToHistoryOnlyForEntries(t *testing.T) {
	q, e := gradedQuiz()

	fresh := session.State{Step: session.StepReviewing, Quiz: q, Evaluation: e}
	ctrl := screentest.New(fresh)
	s := New(screen.Deps{Ctx: context.Background(), Ctrl: ctrl}, fresh)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)

	opened := session.State{Step: session.StepReviewing, Quiz: q, Evaluation: e, Entry: &history.Entry{ID: "x"}}
	s = New(screen.Deps{Ctx: context.Background(), Ctrl: ctrl}, opened)
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	cmd()
	assert.True(t, ctrl.Called("view history"))
}

func TestScrollClamps(t *testing.T) {
	q, e := gradedQuiz()
	state := session.State{Step: session.StepReviewing, Quiz: q, Evaluation: e}
	s := New(screen.Deps{Ctx: context.Background(), Ctrl: screentest.New(state)}, state)

	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 0, s.offset)

	for range 500 {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	s.View(100, 10)
	assert.Less(t, s.offset, 500)
}
