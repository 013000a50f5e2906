package composer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const openAIModel = "gpt-5.1-mini"

// OpenAIProvider drafts progressions via the Responses API's structured
// output mode, trimmed to the one non-streaming call this domain needs.
type OpenAIProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Draft(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	params := responses.ResponseNewParams{
		Model: openAIModel,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(req.Prompt, responses.EasyInputMessageRoleUser),
			},
		},
		Instructions: openai.String(systemPrompt(req)),
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema(draftSchemaName, draftSchema),
		},
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("composer: openai draft: %w", err)
	}

	var draft DraftResponse
	if err := json.Unmarshal([]byte(resp.OutputText()), &draft); err != nil {
		return nil, fmt.Errorf("composer: openai draft: malformed structured output: %w", err)
	}
	draft.Usage = TokenUsage{
		TotalTokens:  int(resp.Usage.TotalTokens),
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}
	return &draft, nil
}
