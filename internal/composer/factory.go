package composer

import (
	"context"
	"errors"

	"github.com/chordquest/chordquest-api/internal/config"
)

// ErrNoBackendConfigured means neither OPENAI_API_KEY nor GEMINI_API_KEY is
// set; the composer endpoints are disabled and the stage author must write
// chord_progression by hand.
var ErrNoBackendConfigured = errors.New("composer: no OPENAI_API_KEY or GEMINI_API_KEY configured")

// NewProvider selects a backend the same way config.OpenAIAPIKey/GeminiAPIKey
// already implies a choice: OpenAI first if configured, Gemini otherwise.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch {
	case cfg.OpenAIAPIKey != "":
		return NewOpenAIProvider(cfg.OpenAIAPIKey), nil
	case cfg.GeminiAPIKey != "":
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey)
	default:
		return nil, ErrNoBackendConfigured
	}
}
