package ollama

// classificationSchema constrains the chat reply to the two fields the
// pipeline consumes. Sent verbatim as the chat format parameter.
var classificationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"type": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "single word naming the document type",
		},
		"summary": map[string]any{
			"type":        "string",
			"minLength":   10,
			"description": "one paragraph summarizing the document",
		},
	},
	"required": []string{"type", "summary"},
}
