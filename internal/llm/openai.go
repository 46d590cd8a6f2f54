package llm

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type openAICompleter struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAI returns a Client for any OpenAI-compatible chat endpoint.
func NewOpenAI(apiKey, baseURL, model string, maxTokens int, opts ...Option) *Client {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	return newClient(&openAICompleter{
		client:    openai.NewClient(reqOpts...),
		model:     model,
		maxTokens: int64(maxTokens),
	}, opts...)
}

func (o *openAICompleter) provider() string { return "openai" }

func (o *openAICompleter) complete(ctx context.Context, req Request, jsonMode bool) (string, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	body := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.model),
		Messages:            msgs,
		Temperature:         openai.Float(0.1),
		MaxCompletionTokens: openai.Int(o.maxTokens),
	}
	if jsonMode {
		if req.Schema != nil {
			body.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
					JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
						Name:   "extraction",
						Schema: schemaMap(req.Schema),
						Strict: openai.Bool(false),
					},
				},
			}
		} else {
			body.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
			}
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, body)
	if err != nil {
		return "", err
	}
	zap.L().Debug("openai: usage",
		zap.String("purpose", req.Purpose),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	if len(resp.Choices) == 0 {
		return "", eris.New("openai: no choices in response")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", eris.Errorf("openai: empty response (finish_reason: %s)", resp.Choices[0].FinishReason)
	}
	return content, nil
}
