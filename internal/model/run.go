package model

import "time"

// RunStatus represents the current state of a research run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// FieldStatus is the terminal state of one field after the retry loop.
type FieldStatus string

const (
	FieldResolved        FieldStatus = "resolved"
	FieldRetriedResolved FieldStatus = "retried_resolved"
	FieldExhausted       FieldStatus = "exhausted"
)

// Run represents a single research run for a domain.
type Run struct {
	ID        string     `json:"id"`
	Domain    string     `json:"domain"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	Events    []Event    `json:"events,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	Profile    *CompanyProfile `json:"profile,omitempty"`
	Outcomes   []FieldOutcome  `json:"outcomes"`
	Sufficient bool            `json:"sufficient"`
	DurationMs int64           `json:"duration_ms"`
	Error      string          `json:"error,omitempty"`
}

// FieldOutcome is one line of the final status report.
type FieldOutcome struct {
	Field    string      `json:"field"`
	Tier     string      `json:"tier"`
	Status   FieldStatus `json:"status"`
	Attempts int         `json:"attempts"`
	Preview  string      `json:"preview,omitempty"`
}

// RunFilter narrows a run listing.
type RunFilter struct {
	Status RunStatus
	Domain string
	Limit  int
	Offset int
}
