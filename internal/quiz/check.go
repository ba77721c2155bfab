package quiz

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

var choiceLabels = []string{"A", "B", "C", "D"}

// CheckQuiz verifies the structural shape of a generated quiz.
func CheckQuiz(q *Quiz) error {
	if q == nil || len(q.Questions) == 0 {
		return fmt.Errorf("quiz has no questions")
	}

	seen := make(map[int]bool, len(q.Questions))
	for i, item := range q.Questions {
		if seen[item.ID] {
			return fmt.Errorf("question %d: duplicate id %d", i+1, item.ID)
		}
		seen[item.ID] = true

		if strings.TrimSpace(item.Prompt) == "" {
			return fmt.Errorf("question %d: empty prompt", item.ID)
		}
		if err := checkQuestion(item); err != nil {
			return fmt.Errorf("question %d: %w", item.ID, err)
		}
	}
	return nil
}

func checkQuestion(item Question) error {
	switch item.Type {
	case FormatObjective:
		if len(item.Choices) != len(choiceLabels) {
			return fmt.Errorf("objective question needs %d choices, got %d", len(choiceLabels), len(item.Choices))
		}
		labels := lo.Map(item.Choices, func(c Choice, _ int) string {
			return strings.ToUpper(strings.TrimSpace(c.Label))
		})
		slices.Sort(labels)
		if !slices.Equal(labels, choiceLabels) {
			return fmt.Errorf("choices must be labelled A-D, got %v", labels)
		}
		if _, ok := item.Choice(strings.TrimSpace(item.CorrectAnswer)); !ok {
			return fmt.Errorf("correct answer %q is not a choice label", item.CorrectAnswer)
		}
	case FormatOpenEnded:
		if len(item.Choices) != 0 {
			return fmt.Errorf("open-ended question has %d choices", len(item.Choices))
		}
	default:
		return fmt.Errorf("unknown question type %q", item.Type)
	}
	return nil
}

// CheckEvaluation verifies the aggregate counts of an evaluation and that
// every review record refers to a question of q.
func CheckEvaluation(e *EvaluationResult, q *Quiz) error {
	if e == nil {
		return fmt.Errorf("evaluation is empty")
	}
	if e.CorrectCount+e.IncorrectCount > e.TotalQuestions {
		return fmt.Errorf("correct (%d) + incorrect (%d) exceeds total (%d)",
			e.CorrectCount, e.IncorrectCount, e.TotalQuestions)
	}
	if e.Percentage < 0 || e.Percentage > 100 {
		return fmt.Errorf("percentage %.1f out of range", e.Percentage)
	}
	for _, r := range e.Review {
		if _, ok := q.Question(r.QuestionID); !ok {
			return fmt.Errorf("review refers to unknown question %d", r.QuestionID)
		}
	}
	return nil
}
