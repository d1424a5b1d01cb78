package quiz

// questionSetSchema is the JSON Schema for the question payload served by
// GET /questions. Malformed payloads are rejected at this boundary before
// any question is rendered.
var questionSetSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":      "string",
						"minLength": 1,
					},
					"type": map[string]any{
						"type": "string",
						"enum": []any{"single-choice", "multi-choice", "free-text", "fill-blank"},
					},
					"prompt": map[string]any{
						"type": "string",
					},
					"triggerTimeMs": map[string]any{
						"type":    "integer",
						"minimum": 0,
					},
					"timeLimitSec": map[string]any{
						"type":    "integer",
						"minimum": 0,
					},
					"closeable": map[string]any{
						"type": "boolean",
					},
					"options": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"correctOptions": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "integer", "minimum": 0},
					},
					"explanationRequired": map[string]any{
						"type": "boolean",
					},
				},
				"required":             []any{"id", "type", "triggerTimeMs"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"questions"},
	"additionalProperties": false,
}
