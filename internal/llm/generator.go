// Package llm adapts hosted and local language models to the two calls the
// research pipeline needs: structured JSON and free text.
package llm

import (
	"context"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Request is a single prompt sent to a provider.
type Request struct {
	Purpose string // log label, e.g. "bulk" or "field:industry"
	System  string
	Prompt  string
	Schema  *jsonschema.Schema // response contract for structured calls
}

// Generator is the generation capability consumed by the pipeline. It has no
// retry logic of its own.
type Generator interface {
	GenerateStructured(ctx context.Context, req Request) (map[string]any, error)
	GenerateText(ctx context.Context, req Request) (string, error)
}

// completer is implemented by each provider.
type completer interface {
	complete(ctx context.Context, req Request, jsonMode bool) (string, error)
	provider() string
}

// Client wraps a provider with a per-call deadline and tolerant decoding.
type Client struct {
	c       completer
	timeout time.Duration
	tokens  *TokenCounter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithTokenCounter attaches a counter used for prompt size logging.
func WithTokenCounter(tc *TokenCounter) Option {
	return func(c *Client) { c.tokens = tc }
}

func newClient(c completer, opts ...Option) *Client {
	cl := &Client{c: c, timeout: 90 * time.Second}
	for _, o := range opts {
		o(cl)
	}
	return cl
}

// GenerateStructured returns the decoded JSON object of the response.
func (g *Client) GenerateStructured(ctx context.Context, req Request) (map[string]any, error) {
	raw, err := g.call(ctx, req, true)
	if err != nil {
		return nil, err
	}
	obj, err := DecodeObject(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "llm: decode %s response", req.Purpose)
	}
	return obj, nil
}

// GenerateText returns the trimmed text of the response.
func (g *Client) GenerateText(ctx context.Context, req Request) (string, error) {
	raw, err := g.call(ctx, req, false)
	if err != nil {
		return "", err
	}
	return CleanText(raw), nil
}

func (g *Client) call(ctx context.Context, req Request, jsonMode bool) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := g.c.complete(ctx, req, jsonMode)
	fields := []zap.Field{
		zap.String("provider", g.c.provider()),
		zap.String("purpose", req.Purpose),
		zap.Duration("elapsed", time.Since(start)),
	}
	if g.tokens != nil {
		fields = append(fields, zap.Int("prompt_tokens", g.tokens.Count(req.System+req.Prompt)))
	}
	if err != nil {
		zap.L().Debug("llm: call failed", append(fields, zap.Error(err))...)
		return "", eris.Wrapf(err, "llm: %s %s", g.c.provider(), req.Purpose)
	}
	zap.L().Debug("llm: call complete", append(fields, zap.Int("response_chars", len(raw)))...)
	return raw, nil
}
