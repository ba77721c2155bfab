package review

import (
	"fmt"
	"strings"

	"github.com/abhisek/studyaudit/internal/history"
	"github.com/abhisek/studyaudit/internal/quiz"
	"github.com/abhisek/studyaudit/internal/ui/components"
	"github.com/abhisek/studyaudit/internal/ui/layout"
	"github.com/abhisek/studyaudit/internal/ui/theme"
)

// Report renders the audit of one graded attempt at the given width. It
// is shared by the review screen and the history command.
func Report(q *quiz.Quiz, e *quiz.EvaluationResult, width int) string {
	var b strings.Builder

	title := history.DefaultTitle
	if q != nil && strings.TrimSpace(q.Title) != "" {
		title = q.Title
	}
	b.WriteString(theme.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf(
		"Score %s / %s  ·  %d correct  ·  %d incorrect  ·  %d questions",
		formatScore(e.Score), formatScore(e.MaxScore), e.CorrectCount, e.IncorrectCount, e.TotalQuestions)))
	b.WriteString("\n\n")
	b.WriteString(components.NewProgressBar("Result", e.Percentage/100, min(width, 80)).View())
	b.WriteString("\n\n")

	if e.Summary != "" {
		b.WriteString(theme.Label.Render("Summary"))
		b.WriteString("\n")
		b.WriteString(layout.Wrap(theme.Body, e.Summary, width))
		b.WriteString("\n\n")
	}

	for i, r := range e.Review {
		b.WriteString(reviewItem(q, r, i, width))
		b.WriteString("\n")
	}
	return b.String()
}

func reviewItem(q *quiz.Quiz, r quiz.ReviewItem, i, width int) string {
	var question quiz.Question
	if q != nil {
		question, _ = q.Question(r.QuestionID)
	}

	mark := theme.Correct.Render("✓")
	if !r.IsCorrect {
		mark = theme.Incorrect.Render("✗")
	}

	var b strings.Builder
	head := fmt.Sprintf("Q%d  %s", i+1, question.Prompt)
	b.WriteString(mark + " " + layout.Wrap(theme.Body.Bold(true), head, width-2))
	b.WriteString("\n")

	user := answerText(question, r.UserAnswer)
	if user == "" {
		user = "(unanswered)"
	}
	b.WriteString(field("Your answer", user, width))
	b.WriteString(field("Reference", answerText(question, r.CorrectAnswer), width))
	b.WriteString(field("Score", formatScore(r.Score), width))
	b.WriteString(field("Why", r.Explanation, width))
	evidence := r.Evidence
	if evidence == "" {
		evidence = question.Evidence
	}
	b.WriteString(field("Evidence", evidence, width))
	if question.SourceCitation != "" {
		b.WriteString(field("Source", question.SourceCitation, width))
	}
	return b.String()
}

// answerText expands a choice label of an objective question to
// "B) text"; other answers are returned as given.
func answerText(q quiz.Question, answer string) string {
	answer = strings.TrimSpace(answer)
	if q.Type != quiz.FormatObjective || answer == "" {
		return answer
	}
	if c, ok := q.Choice(answer); ok {
		return c.Label + ") " + c.Text
	}
	return answer
}

func field(name, value string, width int) string {
	if value == "" {
		return ""
	}
	label := theme.Subtitle.Render(fmt.Sprintf("  %-12s", name))
	return label + layout.Wrap(theme.Body, value, width-16) + "\n"
}

func formatScore(v float64) string {
	if v == float64(int(v)) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.1f", v)
}
