package composer

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// GeminiProvider drafts progressions via Gemini's structured JSON output
// mode, trimmed to the one call this domain needs.
type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("composer: gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Draft(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt(req)}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   draftGeminiSchema(),
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}

	result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("composer: gemini draft: %w", err)
	}

	var draft DraftResponse
	if err := json.Unmarshal([]byte(result.Text()), &draft); err != nil {
		return nil, fmt.Errorf("composer: gemini draft: malformed structured output: %w", err)
	}
	if result.UsageMetadata != nil {
		draft.Usage = TokenUsage{
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
		}
	}
	return &draft, nil
}

func draftGeminiSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"steps": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"bar":         {Type: genai.TypeInteger},
						"beat":        {Type: genai.TypeNumber},
						"chord_id":    {Type: genai.TypeString},
						"lyric_label": {Type: genai.TypeString},
					},
					Required: []string{"bar", "beat", "chord_id"},
				},
			},
		},
		Required: []string{"steps"},
	}
}
