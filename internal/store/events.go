package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/company-research/internal/model"
)

// EventLog buffers the events of one run and appends them to the run record
// on Flush. It satisfies pipeline.EventSink.
type EventLog struct {
	store Store
	runID string

	mu      sync.Mutex
	pending []model.Event
}

// NewEventLog returns a buffer for runID.
func NewEventLog(s Store, runID string) *EventLog {
	return &EventLog{store: s, runID: runID}
}

// Emit records an event for the next flush.
func (l *EventLog) Emit(e model.Event) {
	l.mu.Lock()
	l.pending = append(l.pending, e)
	l.mu.Unlock()
}

// Pending returns how many events await a flush.
func (l *EventLog) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Flush writes the buffered events. On failure the events stay buffered so a
// later flush can retry.
func (l *EventLog) Flush(ctx context.Context) error {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := l.store.AppendEvents(ctx, l.runID, batch); err != nil {
		l.mu.Lock()
		l.pending = append(batch, l.pending...)
		l.mu.Unlock()
		zap.L().Warn("store: flush events failed",
			zap.String("run_id", l.runID),
			zap.Int("events", len(batch)),
			zap.Error(err),
		)
		return err
	}
	return nil
}
