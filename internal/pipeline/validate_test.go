package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/company-research/internal/model"
)

func TestIsSufficient(t *testing.T) {
	v := NewValidator(testFields(), 5)

	cases := []struct {
		field string
		val   model.Value
		want  bool
	}{
		{"industry", model.Scalar("n/a"), false},
		{"industry", model.Scalar(""), false},
		{"industry", model.Scalar("  IT  "), false},
		{"industry", model.Scalar("Fintech"), true},
		{"industry", model.Scalar("Not Found"), false},
		{"sic_code", model.Scalar("62020"), true},
		{"certifications", model.List(), false},
		{"certifications", model.Strings("ISO 27001"), true},
		{"certifications", model.Scalar("ISO 9001, ISO 27001"), true},
		{"contact_info", model.Mapping(nil), false},
		{"contact_info", model.Mapping(map[string]model.Value{"phone": model.Scalar("")}), false},
		{"contact_info", model.Mapping(map[string]model.Value{"phone": model.Scalar("0207")}), true},
		{"unknown_field", model.Scalar("something"), true},
		{"tags", model.Scalar("n/a"), false},
		{"tags", model.Scalar("none"), false},
		{"tags", model.Strings("n/a"), false},
		{"tags", model.Strings(""), false},
		{"tags", model.Strings("unknown", "saas"), true},
		{"contact_info", model.Mapping(map[string]model.Value{"phone": model.Scalar("n/a")}), false},
		{"contact_info", model.Mapping(map[string]model.Value{"phone": model.Scalar("N/A"), "email": model.Scalar("null")}), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, v.IsSufficient(tc.field, tc.val), "%s=%q", tc.field, tc.val.String())
	}
}

func TestNewValidator_DefaultMinLength(t *testing.T) {
	v := NewValidator(testFields(), 0)
	assert.False(t, v.IsSufficient("industry", model.Scalar("Tech")))
	assert.True(t, v.IsSufficient("industry", model.Scalar("Techs")))
}

func TestClassifyMissing_TierOrder(t *testing.T) {
	v := NewValidator(testFields(), 5)
	fields := []string{"tags", "sic_code", "industry", "locations", "sector"}
	values := map[string]model.Value{
		"sector": model.Scalar("Technology"),
	}

	got := v.ClassifyMissing(fields, values)
	assert.Equal(t, []string{"industry", "tags", "sic_code", "locations"}, got)
}

func TestClassifyMissing_SentinelList(t *testing.T) {
	v := NewValidator(testFields(), 5)
	fields := []string{"tags", "industry", "sic_text"}
	values := map[string]model.Value{
		"tags":     model.Scalar("unknown"),
		"industry": model.Scalar("n/a"),
		"sic_text": model.Scalar("Computer programming"),
	}

	got := v.ClassifyMissing(fields, values)
	assert.Equal(t, []string{"industry", "tags"}, got)
}

func TestCriticalMissing(t *testing.T) {
	v := NewValidator(testFields(), 5)
	assert.True(t, v.CriticalMissing([]string{"tags", "industry"}))
	assert.False(t, v.CriticalMissing([]string{"tags", "sic_code"}))
	assert.False(t, v.CriticalMissing(nil))
}
