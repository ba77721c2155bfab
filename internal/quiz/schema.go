package quiz

import "github.com/abhisek/studyaudit/internal/llm"

// TopicsSchema is the response shape for topic detection.
var TopicsSchema = &llm.Schema{
	Name:        "study-topics",
	Description: "The main topics covered by the study material",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Up to 5 short topic labels, in the order they appear in the material",
			},
		},
		"required":             []any{"topics"},
		"additionalProperties": false,
	},
}

// MaterialSchema is the response shape for study text synthesis.
var MaterialSchema = &llm.Schema{
	Name:        "study-material",
	Description: "A self-contained study text on a topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "A short title for the material",
			},
			"body": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The study text in markdown, covering definitions, key facts and worked examples",
			},
		},
		"required":             []any{"title", "body"},
		"additionalProperties": false,
	},
}

var choiceDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"label": map[string]any{
			"type": "string",
			"enum": []any{"A", "B", "C", "D"},
		},
		"text": map[string]any{"type": "string"},
	},
	"required":             []any{"label", "text"},
	"additionalProperties": false,
}

var questionDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type":        "integer",
			"description": "Stable question number, unique within the quiz, starting at 1",
		},
		"type": map[string]any{
			"type": "string",
			"enum": []any{string(FormatObjective), string(FormatOpenEnded)},
		},
		"prompt": map[string]any{
			"type":        "string",
			"description": "The question text",
		},
		"choices": map[string]any{
			"type":        "array",
			"items":       choiceDefinition,
			"description": "Exactly 4 choices labelled A-D for objective questions. Empty array for open-ended.",
		},
		"correct_answer": map[string]any{
			"type":        "string",
			"description": "The correct choice label for objective questions, a model answer for open-ended",
		},
		"evidence": map[string]any{
			"type":        "string",
			"description": "A short excerpt from the material that supports the correct answer",
		},
		"source_citation": map[string]any{
			"type":        "string",
			"description": "Where in the material the evidence comes from (section, page or heading)",
		},
	},
	"required":             []any{"id", "type", "prompt", "choices", "correct_answer", "evidence", "source_citation"},
	"additionalProperties": false,
}

// QuizSchema is the response shape for quiz synthesis.
var QuizSchema = &llm.Schema{
	Name:        "practice-quiz",
	Description: "A practice quiz grounded in the study material",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"type": map[string]any{
				"type": "string",
				"enum": []any{string(FormatObjective), string(FormatOpenEnded)},
			},
			"difficulty": map[string]any{
				"type": "string",
				"enum": []any{string(DifficultyStandard), string(DifficultyAdvanced), string(DifficultyExpert)},
			},
			"total_questions": map[string]any{"type": "integer"},
			"questions": map[string]any{
				"type":  "array",
				"items": questionDefinition,
			},
		},
		"required":             []any{"title", "type", "difficulty", "total_questions", "questions"},
		"additionalProperties": false,
	},
}

// EvaluationSchema is the response shape for grading.
var EvaluationSchema = &llm.Schema{
	Name:        "cognitive-audit",
	Description: "Grading of a completed practice quiz",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"total_questions": map[string]any{"type": "integer", "minimum": 0},
			"correct_count":   map[string]any{"type": "integer", "minimum": 0},
			"incorrect_count": map[string]any{"type": "integer", "minimum": 0},
			"score":           map[string]any{"type": "number", "minimum": 0},
			"max_score":       map[string]any{"type": "number", "minimum": 0},
			"percentage": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 100,
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "Narrative feedback on strengths and gaps",
			},
			"review": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question_id":    map[string]any{"type": "integer"},
						"user_answer":    map[string]any{"type": "string"},
						"correct_answer": map[string]any{"type": "string"},
						"is_correct":     map[string]any{"type": "boolean"},
						"score":          map[string]any{"type": "number", "minimum": 0},
						"explanation":    map[string]any{"type": "string"},
						"evidence":       map[string]any{"type": "string"},
					},
					"required":             []any{"question_id", "user_answer", "correct_answer", "is_correct", "score", "explanation", "evidence"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"total_questions", "correct_count", "incorrect_count", "score", "max_score", "percentage", "summary", "review"},
		"additionalProperties": false,
	},
}
