package insight

import "github.com/abhisek/persona/internal/llm"

// ReflectionSchema defines the JSON schema for a result reflection.
var ReflectionSchema = &llm.Schema{
	Name:        "result-reflection",
	Description: "A short, encouraging reflection on a personality assessment result",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline": map[string]any{
				"type":        "string",
				"description": "One-line headline for the result (4-10 words)",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "3-4 sentence reflection written in the second person",
			},
			"growth_tips": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2-4 concrete growth suggestions (8-20 words each)",
			},
			"borderline_note": map[string]any{
				"type":        "string",
				"description": "1-2 sentences about the balanced dimensions; empty string when none",
			},
		},
		"required":             []any{"headline", "summary", "growth_tips", "borderline_note"},
		"additionalProperties": false,
	},
}
