package main

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-research/internal/model"
)

func fakeRun(domain string) *model.Run {
	return &model.Run{
		ID:     "run-" + domain,
		Domain: domain,
		Status: model.RunStatusComplete,
		Result: &model.RunResult{Profile: model.NewCompanyProfile(domain, domain)},
	}
}

func TestProcessBatch_Empty(t *testing.T) {
	profiles, err := processBatch(context.Background(), nil, 10, 2, func(context.Context, string) (*model.Run, error) {
		t.Fatal("research should not be called")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, profiles)
}

func TestProcessBatch_InputOrderAndFailures(t *testing.T) {
	domains := []string{"a.com", "b.com", "c.com", "d.com"}

	profiles, err := processBatch(context.Background(), domains, 0, 4, func(_ context.Context, d string) (*model.Run, error) {
		if d == "b.com" {
			return nil, errors.New("session start failed")
		}
		// finish in reverse order
		switch d {
		case "a.com":
			time.Sleep(20 * time.Millisecond)
		case "c.com":
			time.Sleep(10 * time.Millisecond)
		}
		return fakeRun(d), nil
	})
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "a.com", profiles[0].Domain)
	assert.Equal(t, "c.com", profiles[1].Domain)
	assert.Equal(t, "d.com", profiles[2].Domain)
}

func TestProcessBatch_Limit(t *testing.T) {
	var mu sync.Mutex
	var seen []string

	_, err := processBatch(context.Background(), []string{"a.com", "b.com", "c.com"}, 2, 1, func(_ context.Context, d string) (*model.Run, error) {
		mu.Lock()
		seen = append(seen, d)
		mu.Unlock()
		return fakeRun(d), nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.com", "b.com"}, seen)
}

func TestProcessBatch_ConcurrencyBound(t *testing.T) {
	var active, peak atomic.Int64

	domains := []string{"a.com", "b.com", "c.com", "d.com", "e.com", "f.com"}
	_, err := processBatch(context.Background(), domains, 0, 2, func(_ context.Context, d string) (*model.Run, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return fakeRun(d), nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int64(2))
	assert.GreaterOrEqual(t, peak.Load(), int64(1))
}

func TestProcessBatch_NoProfile(t *testing.T) {
	profiles, err := processBatch(context.Background(), []string{"a.com"}, 0, 1, func(_ context.Context, d string) (*model.Run, error) {
		return &model.Run{ID: "r", Domain: d, Result: &model.RunResult{}}, nil
	})
	require.NoError(t, err)
	assert.Empty(t, profiles)
}
