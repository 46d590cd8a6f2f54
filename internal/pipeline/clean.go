package pipeline

import (
	"strings"

	"github.com/sells-group/company-research/internal/model"
)

// sentinels are phrases a model uses to mean "no data".
var sentinels = map[string]bool{
	"not found":      true,
	"n/a":            true,
	"unknown":        true,
	"none":           true,
	"no information": true,
	"null":           true,
}

// IsSentinel reports whether s is a "no data" phrase, ignoring case and
// surrounding space.
func IsSentinel(s string) bool {
	return sentinels[strings.ToLower(strings.TrimSpace(s))]
}

// Clean rewrites sentinel text to the empty form at every nesting level and
// drops empty list items. Clean(Clean(v)) equals Clean(v).
func Clean(v model.Value) model.Value {
	switch v.Kind() {
	case model.KindList:
		items := v.Items()
		out := make([]model.Value, 0, len(items))
		for _, it := range items {
			c := Clean(it)
			if c.IsZero() {
				continue
			}
			out = append(out, c)
		}
		return model.List(out...)
	case model.KindMapping:
		fields := v.Fields()
		if fields == nil {
			return v
		}
		out := make(map[string]model.Value, len(fields))
		for k, f := range fields {
			out[k] = Clean(f)
		}
		return model.Mapping(out)
	default:
		if IsSentinel(v.Text()) {
			return model.Scalar("")
		}
		return v
	}
}

// Coerce converts v to the shape spec expects. Comma-separated text becomes
// a list; a lone mapping becomes a one-item list; list text is joined for
// scalar fields.
func Coerce(spec *model.FieldSpec, v model.Value) model.Value {
	if spec == nil {
		return v
	}
	switch spec.Shape {
	case model.ShapeList:
		switch v.Kind() {
		case model.KindList:
			return v
		case model.KindMapping:
			if v.IsZero() {
				return model.List()
			}
			return model.List(v)
		default:
			return model.Strings(splitList(v.Text())...)
		}
	case model.ShapeMapping:
		switch v.Kind() {
		case model.KindMapping:
			return v
		case model.KindList:
			for _, it := range v.Items() {
				if it.Kind() == model.KindMapping {
					return it
				}
			}
		}
		return model.Mapping(nil)
	default:
		switch v.Kind() {
		case model.KindList:
			return model.Scalar(strings.Join(v.StringList(), ", "))
		case model.KindMapping:
			if v.IsZero() {
				return model.Scalar("")
			}
			return model.Scalar(v.String())
		}
		return v
	}
}

// splitList splits comma-separated text, trimming items and list markers.
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
