package llm

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/sells-group/company-research/internal/model"
)

// SchemaFor builds the response contract for a set of fields: one property
// per field, typed by its shape.
func SchemaFor(fields []*model.FieldSpec) *jsonschema.Schema {
	props := jsonschema.NewProperties()
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		props.Set(f.ID, ShapeSchema(f))
		required = append(required, f.ID)
	}
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

// EnvelopeSchema wraps a single field's shape under a "data" key.
func EnvelopeSchema(f *model.FieldSpec) *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set("data", ShapeSchema(f))
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             []string{"data"},
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

// ShapeSchema returns the JSON schema of one field value.
func ShapeSchema(f *model.FieldSpec) *jsonschema.Schema {
	switch f.Shape {
	case model.ShapeList:
		item := &jsonschema.Schema{Type: "string"}
		if len(f.Keys) > 0 {
			item = objectOf(f.Keys, f.ListKeys)
		}
		return &jsonschema.Schema{Type: "array", Items: item, Description: f.Description}
	case model.ShapeMapping:
		s := objectOf(f.Keys, f.ListKeys)
		s.Description = f.Description
		return s
	default:
		return &jsonschema.Schema{Type: "string", Description: f.Description}
	}
}

func objectOf(keys, listKeys []string) *jsonschema.Schema {
	props := jsonschema.NewProperties()
	for _, k := range keys {
		props.Set(k, &jsonschema.Schema{Type: "string"})
	}
	for _, k := range listKeys {
		props.Set(k, &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}})
	}
	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

// SchemaJSON renders a schema for embedding in a prompt.
func SchemaJSON(s *jsonschema.Schema) string {
	if s == nil {
		return "{}"
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// schemaMap converts a schema into a generic map for provider SDKs.
func schemaMap(s *jsonschema.Schema) map[string]any {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}
