// Package composer drafts a stage's chord_progression from a natural
// language prompt ("a sad verse in A minor, four bars"): one small Provider
// interface, one backend per LLM, selected the same way
// config.OpenAIAPIKey/GeminiAPIKey already imply a choice.
package composer

import "context"

// Provider drafts a chord progression for a stage from a prompt.
type Provider interface {
	Draft(ctx context.Context, req DraftRequest) (*DraftResponse, error)
	Name() string
}

// DraftRequest is everything the composer needs to draft a progression.
type DraftRequest struct {
	Prompt          string
	AllowedChordIDs []string // the operator's curated library; the draft must only use these ids
	MeasureCount    int
	TimeSignature   int
}

// DraftedStep has the same JSON shape as models.ProgressionStepWire; the
// draft handler returns it as-is for the client to fold into a
// StageDefinition.
type DraftedStep struct {
	Bar        int     `json:"bar"`
	Beat       float64 `json:"beat"`
	ChordID    string  `json:"chord_id"`
	LyricLabel string  `json:"lyric_label,omitempty"`
}

// DraftResponse is the parsed, schema-validated model output.
type DraftResponse struct {
	Steps []DraftedStep `json:"steps"`
	Usage TokenUsage    `json:"-"`
}

// TokenUsage reports the LLM call's token accounting, as surfaced by the
// provider's SDK response, for metrics/logging instrumentation.
type TokenUsage struct {
	TotalTokens  int
	InputTokens  int
	OutputTokens int
}
