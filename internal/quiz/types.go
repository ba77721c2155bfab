// Package quiz holds the data model shared by the inference client, the
// session controller and the history ledger.
package quiz

import (
	"strings"

	"github.com/samber/lo"
)

// WholeContent is the synthetic topic label that always leads a TopicSet.
const WholeContent = "Whole Content"

// MaxDetectedTopics caps the topics kept from a detection response.
const MaxDetectedTopics = 5

// Format is the question format of a quiz.
type Format string

const (
	FormatObjective Format = "objective"
	FormatOpenEnded Format = "open-ended"
)

// Difficulty is the ordered difficulty tier.
type Difficulty string

const (
	DifficultyStandard Difficulty = "standard"
	DifficultyAdvanced Difficulty = "advanced"
	DifficultyExpert   Difficulty = "expert"
)

// Rank orders difficulties: standard < advanced < expert. Unknown is 0.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyStandard:
		return 1
	case DifficultyAdvanced:
		return 2
	case DifficultyExpert:
		return 3
	}
	return 0
}

// Counts are the question counts a session may request.
var Counts = []int{5, 10, 15}

// Formats and Difficulties list the selectable values in display order.
var (
	Formats      = []Format{FormatObjective, FormatOpenEnded}
	Difficulties = []Difficulty{DifficultyStandard, DifficultyAdvanced, DifficultyExpert}
)

// TopicSet is the ordered topic list for a source. The first label is
// always WholeContent.
type TopicSet []string

// NewTopicSet cleans detected labels and prefixes WholeContent. A reply
// that is a single comma-joined string is split; list entries are kept
// whole. Labels are trimmed, empty ones dropped and at most
// MaxDetectedTopics kept. Duplicates stay.
func NewTopicSet(detected []string) TopicSet {
	labels := detected
	if len(detected) == 1 {
		labels = strings.Split(detected[0], ",")
	}
	labels = lo.Compact(lo.Map(labels, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	if len(labels) > MaxDetectedTopics {
		labels = labels[:MaxDetectedTopics]
	}
	return append(TopicSet{WholeContent}, labels...)
}

// Contains reports whether label is one of the set's topics.
func (t TopicSet) Contains(label string) bool {
	return lo.Contains(t, label)
}

// Choice is one labelled option of an objective question.
type Choice struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is a single quiz item. Objective questions carry exactly four
// choices labelled A-D and the correct label; open-ended questions carry
// a reference answer and no choices.
type Question struct {
	ID             int      `json:"id"`
	Type           Format   `json:"type"`
	Prompt         string   `json:"prompt"`
	Choices        []Choice `json:"choices"`
	CorrectAnswer  string   `json:"correct_answer"`
	Evidence       string   `json:"evidence"`
	SourceCitation string   `json:"source_citation"`
}

// Choice returns the option with the given label.
func (q Question) Choice(label string) (Choice, bool) {
	return lo.Find(q.Choices, func(c Choice) bool {
		return strings.EqualFold(c.Label, label)
	})
}

// Quiz is a generated practice set.
type Quiz struct {
	Title          string     `json:"title"`
	Type           Format     `json:"type"`
	Difficulty     Difficulty `json:"difficulty"`
	TotalQuestions int        `json:"total_questions"`
	Questions      []Question `json:"questions"`
}

// Question looks up a question by id.
func (q *Quiz) Question(id int) (Question, bool) {
	return lo.Find(q.Questions, func(item Question) bool {
		return item.ID == id
	})
}

// AnswerMap maps question ids to the user's response. A missing key means
// unanswered.
type AnswerMap map[int]string

// Clone returns an independent copy.
func (a AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// ReviewItem is the grading of one question.
type ReviewItem struct {
	QuestionID    int     `json:"question_id"`
	UserAnswer    string  `json:"user_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	IsCorrect     bool    `json:"is_correct"`
	Score         float64 `json:"score"`
	Explanation   string  `json:"explanation"`
	Evidence      string  `json:"evidence"`
}

// EvaluationResult is the graded cognitive audit for one attempt.
type EvaluationResult struct {
	TotalQuestions int          `json:"total_questions"`
	CorrectCount   int          `json:"correct_count"`
	IncorrectCount int          `json:"incorrect_count"`
	Score          float64      `json:"score"`
	MaxScore       float64      `json:"max_score"`
	Percentage     float64      `json:"percentage"`
	Summary        string       `json:"summary"`
	Review         []ReviewItem `json:"review"`
}

// ReviewFor returns the review record for a question id.
func (e *EvaluationResult) ReviewFor(id int) (ReviewItem, bool) {
	return lo.Find(e.Review, func(r ReviewItem) bool {
		return r.QuestionID == id
	})
}

// Answers rebuilds the AnswerMap recorded in the review.
func (e *EvaluationResult) Answers() AnswerMap {
	out := AnswerMap{}
	for _, r := range e.Review {
		if strings.TrimSpace(r.UserAnswer) != "" {
			out[r.QuestionID] = r.UserAnswer
		}
	}
	return out
}
