package inference

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/studyaudit/internal/quiz"
)

const topicsSystemPrompt = `You index study material for a practice tool.
Identify the main topics the material covers. Return at most 5 short labels
(2-5 words each) in the order they first appear. Do not number them.`

const materialSystemPrompt = `You are an expert tutor writing study notes.
Write a self-contained study text on the requested topic: key definitions,
core facts, worked examples and common misconceptions. Use markdown headings.
Use LaTeX between $ signs for formulas. Aim for 600-1200 words.`

const quizSystemPrompt = `You write practice quizzes strictly grounded in the provided study material.
Rules:
- Every question must be answerable from the material alone.
- Number questions from 1. Ids must be unique.
- Objective questions have exactly 4 choices labelled A, B, C, D and
  correct_answer is the label of the single correct choice.
- Open-ended questions have an empty choices array and correct_answer is a
  concise model answer.
- evidence quotes the passage that supports the answer; source_citation
  says where it is (heading, section or page).
- Difficulty: standard tests recall, advanced tests application,
  expert tests synthesis across sections.`

const gradingSystemPrompt = `You grade a completed practice quiz and write a cognitive audit.
Grade only against the reference answers and evidence given with each question.
- Objective questions score 1 if the chosen label matches, else 0.
- Open-ended questions score between 0 and 1 for conceptual accuracy.
- Unanswered questions score 0 and count as incorrect.
- Return one review record per question, using the question id.
- percentage is score / max_score * 100.
- summary names strengths, gaps and what to revise next.`

func topicsMessage(src quiz.Source) string {
	return withSource(src, "List the topics covered by this study material.")
}

func materialMessage(topic string) string {
	return fmt.Sprintf("Topic: %s\n\nWrite the study notes.", topic)
}

func quizMessage(src quiz.Source, cfg quiz.SessionConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s quiz of exactly %d questions at %s difficulty.\n", cfg.Format, cfg.Count, cfg.Difficulty)
	if cfg.Topic == quiz.WholeContent {
		b.WriteString("Cover the whole material.\n")
	} else {
		fmt.Fprintf(&b, "Focus on the topic %q.\n", cfg.Topic)
	}
	return withSource(src, b.String())
}

// gradingMessage carries the quiz and the answers. The source material is
// not resent.
func gradingMessage(q *quiz.Quiz, answers quiz.AnswerMap) (string, error) {
	type gradedQuestion struct {
		quiz.Question
		UserAnswer string `json:"user_answer"`
	}

	items := make([]gradedQuestion, 0, len(q.Questions))
	for _, item := range q.Questions {
		ans, ok := answers[item.ID]
		if !ok {
			ans = "(unanswered)"
		}
		items = append(items, gradedQuestion{Question: item, UserAnswer: ans})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	payload, err := json.MarshalIndent(map[string]any{
		"title":      q.Title,
		"type":       q.Type,
		"difficulty": q.Difficulty,
		"questions":  items,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode grading payload: %w", err)
	}
	return "Grade this attempt:\n\n" + string(payload), nil
}

// withSource prepends synthesized material as text. Documents travel as
// attachments, so only their name is mentioned.
func withSource(src quiz.Source, instruction string) string {
	if src.Kind == quiz.SourceDocument {
		return fmt.Sprintf("The study material is the attached document %q.\n\n%s", src.Name, instruction)
	}
	return fmt.Sprintf("Topic: %s\n\nStudy material:\n%s\n\n%s", src.Topic, src.Body, instruction)
}
