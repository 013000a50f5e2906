package composer

import (
	"context"
	"time"

	"github.com/chordquest/chordquest-api/internal/logger"
	"github.com/chordquest/chordquest-api/internal/observability"
)

// Draft runs provider.Draft wrapped in a Langfuse trace+generation span,
// reusing observability.InitializeLangfuse's bootstrap instead of composer
// owning its own tracing client.
func Draft(ctx context.Context, provider Provider, req DraftRequest) (*DraftResponse, error) {
	trace := observability.GetClient().StartTrace(ctx, "composer.draft", map[string]interface{}{
		"provider": provider.Name(),
		"prompt":   req.Prompt,
	})
	defer trace.Finish()

	gen := trace.Generation("draft_progression", map[string]interface{}{
		"allowed_chords": req.AllowedChordIDs,
		"measure_count":  req.MeasureCount,
	})
	gen.Input(req.Prompt)

	start := time.Now()
	resp, err := provider.Draft(ctx, req)
	if err != nil {
		gen.SetLevel("ERROR")
		gen.Finish()
		return nil, err
	}

	gen.Output(resp.Steps)
	gen.Finish()

	logger.LogGenerationRequest(ctx, provider.Name(), time.Since(start), map[string]interface{}{
		"total_tokens":  resp.Usage.TotalTokens,
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
	}, nil)

	return resp, nil
}
