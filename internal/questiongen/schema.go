package questiongen

import "github.com/ronitrai27/clario-career-platform-sub000/internal/llm"

// ItemSchema is the JSON shape of one element of the provider's array.
// Label casing is normalized after this check, so it only pins types and
// presence.
var ItemSchema = &llm.Schema{
	Name:        "quiz-item",
	Description: "A single four-option multiple choice question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"options": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "string",
				},
				"minProperties": 4,
			},
			"correctAnswer": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
		},
		"required": []any{"question", "options", "correctAnswer"},
	},
}
