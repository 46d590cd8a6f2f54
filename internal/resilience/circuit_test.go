package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBlocked = errors.New("captcha page")

func fail(_ context.Context) error { return errBlocked }
func ok(_ context.Context) error   { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("google", CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour})

	assert.ErrorIs(t, cb.Execute(context.Background(), fail), errBlocked)
	assert.Equal(t, CircuitClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(context.Background(), fail), errBlocked)
	assert.Equal(t, CircuitOpen, cb.State())

	var called bool
	err := cb.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "google")
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker("ddg", CircuitBreakerConfig{FailureThreshold: 2})
	_ = cb.Execute(context.Background(), fail)
	require.NoError(t, cb.Execute(context.Background(), ok))
	_ = cb.Execute(context.Background(), fail)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker("google", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	cb.nowFunc = func() time.Time { return now }

	_ = cb.Execute(context.Background(), fail)
	assert.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, CircuitHalfOpen, cb.State())

	// Failed probe reopens.
	assert.ErrorIs(t, cb.Execute(context.Background(), fail), errBlocked)
	assert.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Execute(context.Background(), ok))
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_ShouldTripAndStateChange(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker("google", CircuitBreakerConfig{
		FailureThreshold: 1,
		ShouldTrip:       func(err error) bool { return !errors.Is(err, context.Canceled) },
		OnStateChange: func(name string, from, to CircuitState) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})

	_ = cb.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	assert.Equal(t, CircuitClosed, cb.State())

	_ = cb.Execute(context.Background(), fail)
	cb.Reset()
	assert.Equal(t, []string{"google:closed->open", "google:open->closed"}, transitions)
}

func TestExecuteVal(t *testing.T) {
	cb := NewCircuitBreaker("ddg", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})
	v, err := ExecuteVal(context.Background(), cb, func(context.Context) (int, error) { return 6, nil })
	require.NoError(t, err)
	assert.Equal(t, 6, v)

	_ = cb.Execute(context.Background(), fail)
	v, err = ExecuteVal(context.Background(), cb, func(context.Context) (int, error) { return 6, nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, v)
}

func TestBreakers(t *testing.T) {
	b := NewBreakers(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})
	assert.Same(t, b.Get("google"), b.Get("google"))
	assert.NotSame(t, b.Get("google"), b.Get("ddg"))

	_ = b.Get("google").Execute(context.Background(), fail)
	states := b.States()
	assert.Equal(t, CircuitOpen, states["google"])
	assert.Equal(t, CircuitClosed, states["ddg"])
}

func TestBreakers_Concurrent(t *testing.T) {
	b := NewBreakers(DefaultCircuitBreakerConfig())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = b.Get("google").Execute(context.Background(), ok)
			} else {
				_ = b.Get("google").Execute(context.Background(), fail)
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, b.States(), 1)
}

func TestSearchBreakerConfig(t *testing.T) {
	cfg := SearchBreakerConfig(5, time.Minute)
	assert.Equal(t, 5, cfg.FailureThreshold)
	assert.Equal(t, time.Minute, cfg.ResetTimeout)

	def := SearchBreakerConfig(0, 0)
	assert.Equal(t, 3, def.FailureThreshold)
	assert.Equal(t, 2*time.Minute, def.ResetTimeout)
}

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(99).String())
}
