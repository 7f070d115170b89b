package oracle

import "github.com/ignite/kcheck/internal/llm"

// QuestionSchema is the structured output for question generation.
var QuestionSchema = &llm.Schema{
	Name:        "kc-question",
	Description: "A single open-ended knowledge check question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question text only, without numbering",
				"pattern":     `\S`,
			},
		},
		"required":             []any{"question"},
		"additionalProperties": false,
	},
}

// EvaluationSchema is the structured output for answer marking.
var EvaluationSchema = &llm.Schema{
	Name:        "kc-evaluation",
	Description: "Verdict and short feedback on a student's answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isCorrect": map[string]any{
				"type":        "boolean",
				"description": "Whether the answer demonstrates understanding of the core concept",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "At most three sentences of plain prose with no line breaks",
				"pattern":     `\S`,
			},
		},
		"required":             []any{"isCorrect", "feedback"},
		"additionalProperties": false,
	},
}
