package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// TokenCounter estimates prompt sizes with the o200k_base encoding. When the
// encoding cannot be loaded it falls back to four characters per token.
type TokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTokenCounter returns a lazily initialised counter.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{}
}

// Count returns the estimated token count of s.
func (t *TokenCounter) Count(s string) int {
	if t == nil {
		return len(s) / 4
	}
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding("o200k_base")
		if err != nil {
			zap.L().Debug("llm: tiktoken unavailable, estimating by length", zap.Error(err))
			return
		}
		t.enc = enc
	})
	if t.enc == nil {
		return len(s) / 4
	}
	return len(t.enc.Encode(s, nil, nil))
}

// LengthEstimator returns a counter that never loads an encoding.
func LengthEstimator() *TokenCounter {
	t := &TokenCounter{}
	t.once.Do(func() {})
	return t
}
