package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/company-research/internal/model"
)

func TestExtractionState_SufficientIsFrozen(t *testing.T) {
	s := NewExtractionState()
	s.Attempted("sector", model.Scalar("Technology"))
	s.Sufficient("sector")

	assert.Equal(t, StateSufficient, s.State("sector"))
	assert.Equal(t, 0, s.StartAttempt("sector"))
	s.Resolve("sector", model.Scalar("Retail"))
	s.Attempted("sector", model.Scalar("Retail"))
	s.Exhaust("sector")

	assert.Equal(t, "Technology", s.Value("sector").Text())
	assert.Equal(t, StateSufficient, s.State("sector"))
	assert.False(t, s.missing("sector"))
}

func TestExtractionState_RetryLifecycle(t *testing.T) {
	s := NewExtractionState()
	s.Attempted("industry", model.Scalar("IT"))
	assert.True(t, s.missing("industry"))

	assert.Equal(t, 1, s.StartAttempt("industry"))
	assert.Equal(t, StateRetrying, s.State("industry"))
	assert.Equal(t, 2, s.StartAttempt("industry"))

	s.Resolve("industry", model.Scalar("Software"))
	assert.Equal(t, StateResolved, s.State("industry"))
	assert.Equal(t, 2, s.Attempts("industry"))
	assert.Equal(t, "Software", s.Value("industry").Text())
	assert.Equal(t, 0, s.StartAttempt("industry"))
}

func TestExtractionState_ExhaustKeepsPrior(t *testing.T) {
	s := NewExtractionState()
	s.Attempted("industry", model.Scalar("IT"))
	s.StartAttempt("industry")
	s.Exhaust("industry")

	assert.Equal(t, StateExhausted, s.State("industry"))
	assert.Equal(t, "IT", s.Value("industry").Text())
	assert.True(t, s.missing("industry"))
}

func TestExtractionState_Fill(t *testing.T) {
	s := NewExtractionState()
	s.Attempted("sector", model.Scalar("Technology"))
	s.Fill("sector", model.Scalar("Retail"))
	s.Fill("locations", model.Strings("London"))

	assert.Equal(t, "Technology", s.Value("sector").Text())
	assert.Equal(t, []string{"London"}, s.Value("locations").StringList())
	assert.Equal(t, StateUnattempted, s.State("locations"))
}

func TestExtractionState_ValuesIsCopy(t *testing.T) {
	s := NewExtractionState()
	s.Attempted("sector", model.Scalar("Technology"))
	vals := s.Values()
	vals["sector"] = model.Scalar("changed")
	assert.Equal(t, "Technology", s.Value("sector").Text())
}

func TestFieldStateString(t *testing.T) {
	assert.Equal(t, "unattempted", StateUnattempted.String())
	assert.Equal(t, "retrying", StateRetrying.String())
	assert.Equal(t, "exhausted", StateExhausted.String())
}
