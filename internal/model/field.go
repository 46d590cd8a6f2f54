package model

import (
	"sort"
	"strings"
)

// Shape is the expected structure of an extracted field value.
type Shape string

const (
	ShapeScalar  Shape = "scalar"
	ShapeList    Shape = "list"
	ShapeMapping Shape = "mapping"
)

// Valid reports whether s is one of the known shapes.
func (s Shape) Valid() bool {
	switch s {
	case ShapeScalar, ShapeList, ShapeMapping:
		return true
	}
	return false
}

// Tier is the priority class of a field. Lower values are retried first.
type Tier int

const (
	TierCritical  Tier = 1
	TierImportant Tier = 2
	TierOptional  Tier = 3
)

func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierImportant:
		return "important"
	default:
		return "optional"
	}
}

// ParseTier maps a tier name to a Tier. Unknown names are optional.
func ParseTier(s string) Tier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return TierCritical
	case "important":
		return TierImportant
	default:
		return TierOptional
	}
}

// QueryTemplates holds one search template per backend. Templates use the
// placeholders {domain}, {company} and {field}.
type QueryTemplates struct {
	Google string `yaml:"google" json:"google"`
	DDG    string `yaml:"ddg" json:"ddg"`
}

// FieldSpec describes one extractable company attribute.
type FieldSpec struct {
	ID          string         `yaml:"id" json:"id"`
	Shape       Shape          `yaml:"shape" json:"shape"`
	Tier        Tier           `yaml:"-" json:"tier"`
	TierName    string         `yaml:"tier" json:"-"`
	Description string         `yaml:"description" json:"description"`
	Keys        []string       `yaml:"keys,omitempty" json:"keys,omitempty"` // sub-attributes of mapping fields or list-of-mapping items
	ListKeys    []string       `yaml:"list_keys,omitempty" json:"list_keys,omitempty"` // sub-attributes holding a list of strings
	Aliases     []string       `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Queries     QueryTemplates `yaml:"queries" json:"queries"`
	SiteQuery   string         `yaml:"site_query,omitempty" json:"site_query,omitempty"`
	Synonyms    string         `yaml:"synonyms,omitempty" json:"synonyms,omitempty"`
}

// Label is the field ID with underscores replaced by spaces.
func (f *FieldSpec) Label() string {
	return strings.ReplaceAll(f.ID, "_", " ")
}

// FieldRegistry is an indexed, read-only collection of field specs.
type FieldRegistry struct {
	Fields  []FieldSpec
	byID    map[string]*FieldSpec
	byAlias map[string]string
}

// NewFieldRegistry creates a FieldRegistry with indexed lookups. Alias
// collisions resolve to the first field that declares them.
func NewFieldRegistry(fields []FieldSpec) *FieldRegistry {
	r := &FieldRegistry{
		Fields:  fields,
		byID:    make(map[string]*FieldSpec, len(fields)),
		byAlias: make(map[string]string),
	}
	for i := range r.Fields {
		f := &r.Fields[i]
		if f.TierName != "" {
			f.Tier = ParseTier(f.TierName)
		}
		if f.Tier == 0 {
			f.Tier = TierOptional
		}
		if f.Shape == "" {
			f.Shape = ShapeScalar
		}
		r.byID[f.ID] = f
	}
	for i := range r.Fields {
		f := &r.Fields[i]
		for _, a := range f.Aliases {
			if _, taken := r.byID[a]; taken {
				continue
			}
			if _, taken := r.byAlias[a]; !taken {
				r.byAlias[a] = f.ID
			}
		}
	}
	return r
}

// ByID returns the field spec for the given canonical ID, or nil if not found.
func (r *FieldRegistry) ByID(id string) *FieldSpec {
	return r.byID[id]
}

// Canonical resolves a canonical ID or an alias to the canonical ID.
func (r *FieldRegistry) Canonical(name string) (string, bool) {
	if _, ok := r.byID[name]; ok {
		return name, true
	}
	id, ok := r.byAlias[name]
	return id, ok
}

// Lookup resolves name through the alias table and returns its spec.
func (r *FieldRegistry) Lookup(name string) *FieldSpec {
	id, ok := r.Canonical(name)
	if !ok {
		return nil
	}
	return r.byID[id]
}

// Tier returns the tier of a field; unknown fields are optional.
func (r *FieldRegistry) Tier(id string) Tier {
	if f := r.Lookup(id); f != nil {
		return f.Tier
	}
	return TierOptional
}

// AliasTable returns alias -> canonical ID pairs, sorted by alias.
func (r *FieldRegistry) AliasTable() [][2]string {
	out := make([][2]string, 0, len(r.byAlias))
	for alias, id := range r.byAlias {
		out = append(out, [2]string{alias, id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
