package quiz

import "github.com/abhisek/quizgen/internal/llm"

// Schema is the JSON schema model output must satisfy. It is also what the
// generators send as the native structured-output schema when enabled.
var Schema = &llm.Schema{
	Name:        "quiz",
	Description: "A multiple-choice quiz question with four options and an explanation for each",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question text",
			},
			"options": map[string]any{
				"type":        "array",
				"minItems":    OptionCount,
				"maxItems":    OptionCount,
				"description": "Exactly four answer options, at least one of them correct",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"content": map[string]any{
							"type":        "string",
							"description": "The text of the option",
						},
						"reason": map[string]any{
							"type":        "string",
							"description": "Why the option is correct or incorrect",
						},
						"isCorrect": map[string]any{
							"type":        "boolean",
							"description": "Whether the option is correct",
						},
					},
					"required":             []any{"content", "reason", "isCorrect"},
					"additionalProperties": false,
				},
				"contains": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"isCorrect": map[string]any{"const": true},
					},
					"required": []any{"isCorrect"},
				},
			},
		},
		"required":             []any{"question", "options"},
		"additionalProperties": false,
	},
}
