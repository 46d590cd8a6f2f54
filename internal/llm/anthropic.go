package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-research/pkg/anthropic"
)

type anthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic returns a Client backed by the Anthropic Messages API.
func NewAnthropic(client anthropic.Client, model string, maxTokens int, opts ...Option) *Client {
	return newClient(&anthropicCompleter{
		client:    client,
		model:     model,
		maxTokens: int64(maxTokens),
	}, opts...)
}

func (a *anthropicCompleter) provider() string { return "anthropic" }

func (a *anthropicCompleter) complete(ctx context.Context, req Request, jsonMode bool) (string, error) {
	temp := 0.1
	msg := anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      anthropic.BuildCachedSystemBlocks(req.System, "5m"),
		Messages:    []anthropic.Message{{Role: "user", Content: req.Prompt}},
		Temperature: &temp,
	}
	if jsonMode {
		// Prefill forces the reply to start inside a JSON object.
		msg.Messages = append(msg.Messages, anthropic.Message{Role: "assistant", Content: "{"})
	}

	resp, err := a.client.CreateMessage(ctx, msg)
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(a.model, req.Purpose)

	text := resp.Text()
	if text == "" {
		return "", eris.Errorf("anthropic: empty response (stop_reason: %s)", resp.StopReason)
	}
	if jsonMode {
		text = "{" + text
	}
	return text, nil
}
