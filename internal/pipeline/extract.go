package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/sells-group/company-research/internal/llm"
	"github.com/sells-group/company-research/internal/model"
)

const extractSystemText = "You are an expert business data extraction AI. You extract real company information from search results and website content and never make up information."

const bulkPrompt = `Extract comprehensive company information from the provided data.

TARGET COMPANY: %s (%s)

=== SEARCH ENGINE RESULTS ===
%s

=== WEBSITE CONTENT ===
%s

=== FIELDS TO EXTRACT ===
%s
=== REQUIRED OUTPUT FORMAT (JSON) ===
Return ONLY valid JSON matching this schema:
%s

=== EXTRACTION RULES ===
1. Extract REAL data ONLY - never make up information
2. If a field cannot be determined from the data, use "" for text, [] for lists and {} for objects
3. Cross-reference multiple sources for accuracy
4. For UK companies, look for SIC codes from Companies House data
5. For tags, include service types, technology keywords and industry terms
6. Prefer official website content over third-party sources

Return ONLY the JSON. No markdown formatting, no explanations.`

const fieldTextPrompt = `Extract the following specific field for the company:

COMPANY: %s
FIELD TO EXTRACT: %s
FIELD DESCRIPTION: %s

SEARCH RESULTS:
%s

WEBSITE CONTENT:
%s

INSTRUCTIONS:
1. Extract ONLY the requested field value
2. Return it as plain text
3. If data cannot be found, return an empty string ""
4. Do NOT make up information

Return the extracted value ONLY. No explanations.`

const fieldStructuredPrompt = `Extract the following specific field for the company:

COMPANY: %s
FIELD TO EXTRACT: %s
FIELD DESCRIPTION: %s

SEARCH RESULTS:
%s

WEBSITE CONTENT:
%s

Return ONLY valid JSON matching this schema, with the value under "data":
%s

If data cannot be found, use an empty value ([] or {}). Do NOT make up information.`

// Extractor asks the generation capability for field values and normalizes
// the answers. It never returns an error: failures yield empty values.
type Extractor struct {
	gen     llm.Generator
	fields  *model.FieldRegistry
	em      emitter
	domain  string
	company string
	opts    Options
}

// NewExtractor returns an extractor for domain.
func NewExtractor(gen llm.Generator, fields *model.FieldRegistry, sink EventSink, domain string, opts Options) *Extractor {
	return &Extractor{
		gen:     gen,
		fields:  fields,
		em:      newEmitter(sink, domain),
		domain:  domain,
		company: CompanyName(domain),
		opts:    opts.withDefaults(),
	}
}

// Bulk extracts several fields in one call. Listing text is capped per
// field and in total, page text separately. Response keys are resolved
// through the alias table; an alias only back-fills an empty canonical value.
func (e *Extractor) Bulk(ctx context.Context, fields []string, listings map[string]string, pages string) map[string]model.Value {
	return e.bulk(ctx, "bulk", fields, listings, pages)
}

// Enrich is Bulk for the secondary fields that fill out the profile.
func (e *Extractor) Enrich(ctx context.Context, fields []string, listings map[string]string, pages string) map[string]model.Value {
	return e.bulk(ctx, "enrich", fields, listings, pages)
}

func (e *Extractor) bulk(ctx context.Context, purpose string, fields []string, listings map[string]string, pages string) map[string]model.Value {
	out := make(map[string]model.Value, len(fields))
	specs := e.specs(fields)
	if len(specs) == 0 {
		return out
	}

	var serp strings.Builder
	for _, id := range fields {
		text := listings[id]
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&serp, "=== %s SEARCH ===\n%s\n", strings.ToUpper(id), truncate(text, e.opts.SerpFieldChars))
	}

	var list strings.Builder
	for i, s := range specs {
		fmt.Fprintf(&list, "%d. %q (%s): %s\n", i+1, s.ID, strings.ToUpper(s.Tier.String()), s.Description)
	}

	prompt := fmt.Sprintf(bulkPrompt,
		e.domain, e.company,
		truncate(serp.String(), e.opts.SerpTotalChars),
		truncate(pages, e.opts.PageChars),
		list.String(),
		llm.SchemaJSON(llm.SchemaFor(specs)),
	)

	obj, err := e.gen.GenerateStructured(ctx, llm.Request{
		Purpose: purpose,
		System:  extractSystemText,
		Prompt:  prompt,
		Schema:  llm.SchemaFor(specs),
	})
	if err != nil {
		e.em.emit(model.Event{Kind: model.EventExtractFailed, Message: purpose, Count: len(specs), Err: errString(err)})
		return out
	}

	requested := make(map[string]*model.FieldSpec, len(specs))
	for _, s := range specs {
		requested[s.ID] = s
	}
	// Canonical keys first so aliases only back-fill.
	for key, raw := range obj {
		if s, ok := requested[key]; ok {
			out[key] = Clean(Coerce(s, model.FromAny(raw)))
		}
	}
	for key, raw := range obj {
		id, ok := e.fields.Canonical(key)
		if !ok || id == key {
			continue
		}
		s, want := requested[id]
		if !want {
			continue
		}
		if cur, have := out[id]; have && !cur.IsZero() {
			continue
		}
		out[id] = Clean(Coerce(s, model.FromAny(raw)))
	}

	e.em.emit(model.Event{Kind: model.EventExtractDone, Message: purpose, Count: countPresent(out)})
	return out
}

// Field extracts one field from a retry attempt's context. Scalar fields
// use a text call; list and mapping fields use a structured call.
func (e *Extractor) Field(ctx context.Context, field, listing, pages string) model.Value {
	spec := e.fields.Lookup(field)
	if spec == nil {
		spec = &model.FieldSpec{ID: field, Shape: model.ShapeScalar, Tier: model.TierOptional}
	}
	desc := spec.Description
	if desc == "" {
		desc = spec.Label()
	}
	listing = truncate(listing, e.opts.RetrySerpChars)
	pages = truncate(pages, e.opts.RetryPageChars)

	var val model.Value
	var err error
	if spec.Shape == model.ShapeScalar {
		var text string
		text, err = e.gen.GenerateText(ctx, llm.Request{
			Purpose: "field:" + spec.ID,
			System:  extractSystemText,
			Prompt:  fmt.Sprintf(fieldTextPrompt, e.domain, spec.ID, desc, listing, pages),
		})
		val = model.Scalar(strings.Trim(strings.TrimSpace(text), `"'`))
	} else {
		schema := llm.EnvelopeSchema(spec)
		var obj map[string]any
		obj, err = e.gen.GenerateStructured(ctx, llm.Request{
			Purpose: "field:" + spec.ID,
			System:  extractSystemText,
			Prompt:  fmt.Sprintf(fieldStructuredPrompt, e.domain, spec.ID, desc, listing, pages, llm.SchemaJSON(schema)),
			Schema:  schema,
		})
		val = unwrapEnvelope(spec, obj)
	}
	if err != nil {
		e.em.emit(model.Event{Kind: model.EventExtractFailed, Field: spec.ID, Err: errString(err)})
		return model.Empty(spec.Shape)
	}

	val = Clean(Coerce(spec, val))
	e.em.emit(model.Event{Kind: model.EventExtractDone, Field: spec.ID, Message: preview(val)})
	return val
}

// unwrapEnvelope reads the value under "data", tolerating models that answer
// with the bare mapping or with the field ID as key.
func unwrapEnvelope(spec *model.FieldSpec, obj map[string]any) model.Value {
	if obj == nil {
		return model.Empty(spec.Shape)
	}
	if v, ok := obj["data"]; ok {
		return model.FromAny(v)
	}
	if v, ok := obj[spec.ID]; ok {
		return model.FromAny(v)
	}
	if spec.Shape == model.ShapeMapping {
		return model.FromAny(obj)
	}
	return model.Empty(spec.Shape)
}

func (e *Extractor) specs(ids []string) []*model.FieldSpec {
	out := make([]*model.FieldSpec, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		s := e.fields.Lookup(id)
		if s == nil || seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}

func countPresent(values map[string]model.Value) int {
	n := 0
	for _, v := range values {
		if !v.IsZero() {
			n++
		}
	}
	return n
}

// preview shortens a value for status lines.
func preview(v model.Value) string {
	s := v.String()
	if len(s) > 50 {
		return truncate(s, 50) + "..."
	}
	return s
}
