package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
	"github.com/rotisserie/eris"
)

type ollamaCompleter struct {
	client    *api.Client
	model     string
	numCtxMin int
	tokens    *TokenCounter
}

// NewOllama returns a Client for a local Ollama server. The context window
// is grown per request when the prompt would not fit numCtxMin.
func NewOllama(host, model string, numCtxMin int, httpClient *http.Client, opts ...Option) (*Client, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, eris.Wrapf(err, "ollama: parse host %q", host)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	oc := &ollamaCompleter{
		client:    api.NewClient(u, httpClient),
		model:     model,
		numCtxMin: numCtxMin,
		tokens:    NewTokenCounter(),
	}
	cl := newClient(oc, opts...)
	if cl.tokens != nil {
		oc.tokens = cl.tokens
	}
	return cl, nil
}

func (o *ollamaCompleter) provider() string { return "ollama" }

func (o *ollamaCompleter) complete(ctx context.Context, req Request, jsonMode bool) (string, error) {
	msgs := make([]api.Message, 0, 2)
	if req.System != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: req.System})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: req.Prompt})

	stream := false
	chat := &api.ChatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": 0.1},
	}
	if jsonMode {
		chat.Format = json.RawMessage(`"json"`)
		if req.Schema != nil {
			if b, err := json.Marshal(req.Schema); err == nil {
				chat.Format = b
			}
		}
	}

	if n := o.tokens.Count(req.System+req.Prompt) + 512; n > o.numCtxMin {
		chat.Options["num_ctx"] = n
	}

	var final api.ChatResponse
	err := o.client.Chat(ctx, chat, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if final.Message.Content == "" {
		return "", eris.New("ollama: empty response")
	}
	return final.Message.Content, nil
}
