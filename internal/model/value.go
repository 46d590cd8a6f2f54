package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindMapping:
		return "mapping"
	default:
		return "scalar"
	}
}

// Value is an extracted field value: Scalar(text), List(items) or
// Mapping(fields). The zero Value is the empty scalar.
type Value struct {
	kind   Kind
	text   string
	items  []Value
	fields map[string]Value
}

// Scalar returns a text value.
func Scalar(s string) Value { return Value{kind: KindScalar, text: s} }

// List returns a list value. A nil slice is the empty list.
func List(items ...Value) Value { return Value{kind: KindList, items: items} }

// Strings returns a list of scalar values.
func Strings(ss ...string) Value {
	items := make([]Value, 0, len(ss))
	for _, s := range ss {
		items = append(items, Scalar(s))
	}
	return Value{kind: KindList, items: items}
}

// Mapping returns a mapping value. A nil map is the empty mapping.
func Mapping(fields map[string]Value) Value {
	return Value{kind: KindMapping, fields: fields}
}

// Empty returns the empty form of a shape.
func Empty(shape Shape) Value {
	switch shape {
	case ShapeList:
		return List()
	case ShapeMapping:
		return Mapping(nil)
	default:
		return Scalar("")
	}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Text returns the scalar text, or "" for non-scalars.
func (v Value) Text() string {
	if v.kind != KindScalar {
		return ""
	}
	return v.text
}

// Items returns the list items, or nil for non-lists.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.items
}

// Fields returns the mapping entries, or nil for non-mappings.
func (v Value) Fields() map[string]Value {
	if v.kind != KindMapping {
		return nil
	}
	return v.fields
}

// Get returns one mapping entry; missing keys yield the empty scalar.
func (v Value) Get(key string) Value {
	if v.kind != KindMapping {
		return Value{}
	}
	return v.fields[key]
}

// StringList returns the text of each scalar list item, skipping empty and
// non-scalar items. A non-empty scalar yields a one-element slice.
func (v Value) StringList() []string {
	switch v.kind {
	case KindScalar:
		if strings.TrimSpace(v.text) == "" {
			return nil
		}
		return []string{v.text}
	case KindList:
		var out []string
		for _, it := range v.items {
			if it.kind == KindScalar && strings.TrimSpace(it.text) != "" {
				out = append(out, it.text)
			}
		}
		return out
	}
	return nil
}

// IsZero reports whether v carries no data: empty text, empty list, or a
// mapping whose every entry is zero.
func (v Value) IsZero() bool {
	switch v.kind {
	case KindList:
		return len(v.items) == 0
	case KindMapping:
		for _, f := range v.fields {
			if !f.IsZero() {
				return false
			}
		}
		return true
	default:
		return v.text == ""
	}
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindList:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for k, f := range v.fields {
			of, ok := o.fields[k]
			if !ok || !f.Equal(of) {
				return false
			}
		}
		return true
	default:
		return v.text == o.text
	}
}

// String renders a short human-readable form, used in status previews.
func (v Value) String() string {
	switch v.kind {
	case KindList:
		parts := make([]string, 0, len(v.items))
		for _, it := range v.items {
			parts = append(parts, it.String())
		}
		return strings.Join(parts, ", ")
	case KindMapping:
		keys := make([]string, 0, len(v.fields))
		for k := range v.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if v.fields[k].IsZero() {
				continue
			}
			parts = append(parts, k+": "+v.fields[k].String())
		}
		return "{" + strings.Join(parts, "; ") + "}"
	default:
		return v.text
	}
}

// FromAny converts decoded JSON (string, number, bool, []any, map[string]any,
// nil) into a Value.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case string:
		return Scalar(t)
	case bool:
		return Scalar(strconv.FormatBool(t))
	case float64:
		return Scalar(strconv.FormatFloat(t, 'f', -1, 64))
	case json.Number:
		return Scalar(t.String())
	case int:
		return Scalar(strconv.Itoa(t))
	case []string:
		return Strings(t...)
	case []any:
		items := make([]Value, 0, len(t))
		for _, it := range t {
			items = append(items, FromAny(it))
		}
		return List(items...)
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, f := range t {
			fields[k] = FromAny(f)
		}
		return Mapping(fields)
	default:
		return Scalar(fmt.Sprint(t))
	}
}

// Any converts v back to plain Go values for encoding.
func (v Value) Any() any {
	switch v.kind {
	case KindList:
		out := make([]any, 0, len(v.items))
		for _, it := range v.items {
			out = append(out, it.Any())
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.fields))
		for k, f := range v.fields {
			out[k] = f.Any()
		}
		return out
	default:
		return v.text
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var x any
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	*v = FromAny(x)
	return nil
}
