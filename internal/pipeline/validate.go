package pipeline

import (
	"sort"
	"strings"

	"github.com/sells-group/company-research/internal/model"
)

// Validator decides whether an extracted value is good enough to keep.
type Validator struct {
	fields    *model.FieldRegistry
	minLength int
}

// NewValidator returns a validator; text shorter than minLength after
// trimming is insufficient.
func NewValidator(fields *model.FieldRegistry, minLength int) *Validator {
	if minLength <= 0 {
		minLength = 5
	}
	return &Validator{fields: fields, minLength: minLength}
}

// IsSufficient applies the sufficiency rule to a field value. Sentinel text
// counts as empty at every nesting level.
func (v *Validator) IsSufficient(field string, val model.Value) bool {
	val = Clean(Coerce(v.fields.Lookup(field), val))
	switch val.Kind() {
	case model.KindList:
		return len(val.Items()) > 0
	case model.KindMapping:
		return !val.IsZero()
	default:
		text := strings.TrimSpace(val.Text())
		if len(text) < v.minLength {
			return false
		}
		return !IsSentinel(text)
	}
}

// ClassifyMissing returns the fields whose values are insufficient, critical
// first, then important, then optional. Order within a tier follows fields.
func (v *Validator) ClassifyMissing(fields []string, values map[string]model.Value) []string {
	var missing []string
	for _, f := range fields {
		if !v.IsSufficient(f, values[f]) {
			missing = append(missing, f)
		}
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return v.fields.Tier(missing[i]) < v.fields.Tier(missing[j])
	})
	return missing
}

// CriticalMissing reports whether any of fields is a critical field.
func (v *Validator) CriticalMissing(fields []string) bool {
	for _, f := range fields {
		if v.fields.Tier(f) == model.TierCritical {
			return true
		}
	}
	return false
}
