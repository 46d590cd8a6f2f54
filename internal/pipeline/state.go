package pipeline

import (
	"github.com/sells-group/company-research/internal/model"
)

// FieldState is the position of a field in the extraction state machine.
type FieldState int

const (
	StateUnattempted FieldState = iota
	StateAttempted
	StateSufficient
	StateRetrying
	StateResolved
	StateExhausted
)

func (s FieldState) String() string {
	switch s {
	case StateAttempted:
		return "attempted"
	case StateSufficient:
		return "sufficient"
	case StateRetrying:
		return "retrying"
	case StateResolved:
		return "resolved"
	case StateExhausted:
		return "exhausted"
	default:
		return "unattempted"
	}
}

// frozen reports whether no further work may change the field.
func (s FieldState) frozen() bool {
	return s == StateSufficient || s == StateResolved || s == StateExhausted
}

// ExtractionState tracks values, states and attempt counters for one run.
type ExtractionState struct {
	values   map[string]model.Value
	states   map[string]FieldState
	attempts map[string]int
}

// NewExtractionState returns an empty state.
func NewExtractionState() *ExtractionState {
	return &ExtractionState{
		values:   make(map[string]model.Value),
		states:   make(map[string]FieldState),
		attempts: make(map[string]int),
	}
}

// Value returns the current value of a field.
func (s *ExtractionState) Value(field string) model.Value { return s.values[field] }

// Values returns a copy of all current values.
func (s *ExtractionState) Values() map[string]model.Value {
	out := make(map[string]model.Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// State returns the state of a field.
func (s *ExtractionState) State(field string) FieldState { return s.states[field] }

// Attempts returns the number of retry attempts spent on a field.
func (s *ExtractionState) Attempts(field string) int { return s.attempts[field] }

// Attempted records the bulk pass value. Frozen fields are left alone.
func (s *ExtractionState) Attempted(field string, v model.Value) {
	if s.states[field].frozen() {
		return
	}
	s.values[field] = v
	s.states[field] = StateAttempted
}

// Sufficient freezes a field whose bulk value passed validation.
func (s *ExtractionState) Sufficient(field string) {
	if s.states[field].frozen() {
		return
	}
	s.states[field] = StateSufficient
}

// StartAttempt moves a field into retrying and returns the attempt number,
// or 0 when the field is frozen.
func (s *ExtractionState) StartAttempt(field string) int {
	if s.states[field].frozen() {
		return 0
	}
	s.states[field] = StateRetrying
	s.attempts[field]++
	return s.attempts[field]
}

// Resolve stores a passing retry value and freezes the field.
func (s *ExtractionState) Resolve(field string, v model.Value) {
	if s.states[field].frozen() {
		return
	}
	s.values[field] = v
	s.states[field] = StateResolved
}

// Exhaust freezes a field with its prior value.
func (s *ExtractionState) Exhaust(field string) {
	if s.states[field].frozen() {
		return
	}
	s.states[field] = StateExhausted
}

// Fill sets a value for a field the state machine does not track, without
// replacing existing data.
func (s *ExtractionState) Fill(field string, v model.Value) {
	if cur, ok := s.values[field]; ok && !cur.IsZero() {
		return
	}
	s.values[field] = v
}

// missing reports whether the field still lacks a validated value.
func (s *ExtractionState) missing(field string) bool {
	st := s.states[field]
	return st != StateSufficient && st != StateResolved
}
