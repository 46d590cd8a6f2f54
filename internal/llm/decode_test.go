package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		key  string
		want any
	}{
		{"plain", `{"industry": "Software"}`, "industry", "Software"},
		{"fenced", "```json\n{\"industry\": \"Software\"}\n```", "industry", "Software"},
		{"prose around", "Here you go:\n{\"sector\": \"Technology\"}\nThanks", "sector", "Technology"},
		{"double encoded", `"{\"sector\": \"Retail\"}"`, "sector", "Retail"},
		{"trailing comma", `{"sector": "Retail",}`, "sector", "Retail"},
		{"single quotes", `{'sector': 'Retail'}`, "sector", "Retail"},
		{"duplicate brace", `{{"sector": "Retail"}`, "sector", "Retail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeObject(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got[tt.key])
		})
	}
}

func TestDecodeObject_Empty(t *testing.T) {
	_, err := DecodeObject("   ")
	assert.Error(t, err)
}

func TestDecodeObject_NullIsEmptyMap(t *testing.T) {
	got, err := DecodeObject("{}")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Software", CleanText(`  "Software"  `))
	assert.Equal(t, "Software", CleanText("```\nSoftware\n```"))
	assert.Equal(t, "it's", CleanText("it's"))
}
