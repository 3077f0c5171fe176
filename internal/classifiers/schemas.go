package classifiers

// Strict JSON schemas for each classifier's structured verdict.
// Kept as plain map literals the way structured-output schema arguments
// are built elsewhere in this codebase.

func menuDetectionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_menu":    map[string]any{"type": "boolean"},
			"confidence": map[string]any{"type": "number"},
			"reason":     map[string]any{"type": "string"},
		},
		"required":             []string{"is_menu", "confidence", "reason"},
		"additionalProperties": false,
	}
}

func menuExtractionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"options": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"digit": map[string]any{"type": "string"},
						"label": map[string]any{"type": "string"},
					},
					"required":             []string{"digit", "label"},
					"additionalProperties": false,
				},
			},
			"complete":   map[string]any{"type": "boolean"},
			"confidence": map[string]any{"type": "number"},
			"reason":     map[string]any{"type": "string"},
		},
		"required":             []string{"options", "complete", "confidence", "reason"},
		"additionalProperties": false,
	}
}

func transferRequestSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"wants_transfer": map[string]any{"type": "boolean"},
			"confidence":     map[string]any{"type": "number"},
			"reason":         map[string]any{"type": "string"},
		},
		"required":             []string{"wants_transfer", "confidence", "reason"},
		"additionalProperties": false,
	}
}

func humanConfirmationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_human":   map[string]any{"type": "boolean"},
			"confidence": map[string]any{"type": "number"},
			"reason":     map[string]any{"type": "string"},
		},
		"required":             []string{"is_human", "confidence", "reason"},
		"additionalProperties": false,
	}
}

func loopDetectionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_loop":    map[string]any{"type": "boolean"},
			"confidence": map[string]any{"type": "number"},
			"reason":     map[string]any{"type": "string"},
		},
		"required":             []string{"is_loop", "confidence", "reason"},
		"additionalProperties": false,
	}
}

func terminationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"should_terminate": map[string]any{"type": "boolean"},
			"reason":           map[string]any{"type": "string", "enum": []string{"voicemail", "closed", "dead_end", "none"}},
			"confidence":       map[string]any{"type": "number"},
			"message":          map[string]any{"type": "string"},
		},
		"required":             []string{"should_terminate", "reason", "confidence", "message"},
		"additionalProperties": false,
	}
}

func incompleteSpeechSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"incomplete":             map[string]any{"type": "boolean"},
			"confidence":             map[string]any{"type": "number"},
			"reason":                 map[string]any{"type": "string"},
			"suggested_wait_seconds": map[string]any{"type": "number"},
		},
		"required":             []string{"incomplete", "confidence", "reason"},
		"additionalProperties": false,
	}
}
