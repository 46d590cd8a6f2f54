package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldRegistry(t *testing.T) {
	t.Parallel()

	fields := []FieldSpec{
		{ID: "long_description", TierName: "critical", Aliases: []string{"description_long"}},
		{ID: "tags", Shape: ShapeList, TierName: "important"},
		{ID: "social_media", Shape: ShapeMapping, Keys: []string{"linkedin", "twitter"}},
		{ID: "industry", Tier: TierCritical, Aliases: []string{"tags"}},
	}

	reg := NewFieldRegistry(fields)

	t.Run("ByID returns correct spec", func(t *testing.T) {
		t.Parallel()
		f := reg.ByID("tags")
		require.NotNil(t, f)
		assert.Equal(t, ShapeList, f.Shape)
		assert.Equal(t, TierImportant, f.Tier)
	})

	t.Run("ByID returns nil for unknown id", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, reg.ByID("nonexistent"))
	})

	t.Run("defaults shape and tier", func(t *testing.T) {
		t.Parallel()
		f := reg.ByID("long_description")
		require.NotNil(t, f)
		assert.Equal(t, ShapeScalar, f.Shape)
		assert.Equal(t, TierCritical, f.Tier)
		assert.Equal(t, TierOptional, reg.ByID("social_media").Tier)
	})

	t.Run("alias resolves to canonical id", func(t *testing.T) {
		t.Parallel()
		id, ok := reg.Canonical("description_long")
		assert.True(t, ok)
		assert.Equal(t, "long_description", id)
		assert.Equal(t, "long_description", reg.Lookup("description_long").ID)
	})

	t.Run("alias cannot shadow a canonical id", func(t *testing.T) {
		t.Parallel()
		id, ok := reg.Canonical("tags")
		assert.True(t, ok)
		assert.Equal(t, "tags", id)
	})

	t.Run("alias table is sorted", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, [][2]string{{"description_long", "long_description"}}, reg.AliasTable())
	})

	t.Run("tier of unknown field is optional", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, TierOptional, reg.Tier("whatever"))
		assert.Equal(t, TierCritical, reg.Tier("industry"))
	})
}

func TestNewFieldRegistryEmpty(t *testing.T) {
	t.Parallel()
	reg := NewFieldRegistry(nil)
	assert.NotNil(t, reg)
	assert.Empty(t, reg.Fields)
	assert.Nil(t, reg.ByID("anything"))
	_, ok := reg.Canonical("anything")
	assert.False(t, ok)
}

func TestFieldSpecLabel(t *testing.T) {
	t.Parallel()
	f := FieldSpec{ID: "sub_industry"}
	assert.Equal(t, "sub industry", f.Label())
}

func TestTierOrderingAndNames(t *testing.T) {
	t.Parallel()
	assert.Less(t, int(TierCritical), int(TierImportant))
	assert.Less(t, int(TierImportant), int(TierOptional))
	assert.Equal(t, "critical", TierCritical.String())
	assert.Equal(t, TierImportant, ParseTier(" Important "))
	assert.Equal(t, TierOptional, ParseTier("bogus"))
}
