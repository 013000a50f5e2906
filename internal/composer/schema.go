package composer

import (
	"fmt"
	"strings"
)

// draftSchema is the JSON Schema handed to the OpenAI backend's
// structured-output mode (the Gemini backend builds the same shape as a
// genai.Schema in draftGeminiSchema): a hand-built map[string]any rather than a reflected schema, since
// the shape here is small and fixed.
var draftSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"steps": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"bar":         map[string]any{"type": "integer"},
					"beat":        map[string]any{"type": "number"},
					"chord_id":    map[string]any{"type": "string"},
					"lyric_label": map[string]any{"type": "string"},
				},
				"required": []string{"bar", "beat", "chord_id"},
			},
		},
	},
	"required": []string{"steps"},
}

const draftSchemaName = "chord_progression_draft"

func systemPrompt(req DraftRequest) string {
	return fmt.Sprintf(
		"You draft a chord progression for a %d-bar, %d/4 rhythm game stage. "+
			"Only use chord ids from this allowed list, spelled exactly: %s. "+
			"Bars run from 1 to %d; beats are 1-based within the bar. "+
			"Respond using the chord_progression_draft schema only.",
		req.MeasureCount, req.TimeSignature, strings.Join(req.AllowedChordIDs, ", "), req.MeasureCount,
	)
}
