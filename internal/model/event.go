package model

import "time"

// EventKind classifies a pipeline event.
type EventKind string

const (
	EventRunStarted     EventKind = "run_started"
	EventQueriesPlanned EventKind = "queries_planned"
	EventSearchDone     EventKind = "search_done"
	EventSearchFailed   EventKind = "search_failed"
	EventBackendSkipped EventKind = "backend_skipped"
	EventPageFetched    EventKind = "page_fetched"
	EventPageCached     EventKind = "page_cached"
	EventPageSkipped    EventKind = "page_skipped"
	EventPageFailed     EventKind = "page_failed"
	EventExtractDone    EventKind = "extract_done"
	EventExtractFailed  EventKind = "extract_failed"
	EventFieldMissing   EventKind = "field_missing"
	EventRetryAttempt   EventKind = "retry_attempt"
	EventFieldResolved  EventKind = "field_resolved"
	EventFieldExhausted EventKind = "field_exhausted"
	EventLogoFallback   EventKind = "logo_fallback"
	EventFieldStatus    EventKind = "field_status"
	EventSessionClosed  EventKind = "session_closed"
	EventCloseFailed    EventKind = "close_failed"
	EventRunFinished    EventKind = "run_finished"
)

// Event is one structured record of pipeline progress.
type Event struct {
	Kind    EventKind `json:"kind"`
	Time    time.Time `json:"time"`
	Domain  string    `json:"domain,omitempty"`
	Field   string    `json:"field,omitempty"`
	Backend string    `json:"backend,omitempty"`
	URL     string    `json:"url,omitempty"`
	Attempt int       `json:"attempt,omitempty"`
	Count   int       `json:"count,omitempty"`
	Message string    `json:"message,omitempty"`
	Err     string    `json:"error,omitempty"`
}
