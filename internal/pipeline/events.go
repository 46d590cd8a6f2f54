package pipeline

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/company-research/internal/model"
)

// EventSink receives run progress. Components get one at construction and
// never log the run narrative themselves.
type EventSink interface {
	Emit(e model.Event)
}

// NopSink discards events.
type NopSink struct{}

// Emit implements EventSink.
func (NopSink) Emit(model.Event) {}

// ZapSink renders events as structured log lines.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink returns a sink writing to log, or to zap.L() when log is nil.
func NewZapSink(log *zap.Logger) *ZapSink {
	if log == nil {
		log = zap.L()
	}
	return &ZapSink{log: log}
}

// Emit implements EventSink.
func (s *ZapSink) Emit(e model.Event) {
	fields := make([]zap.Field, 0, 8)
	fields = append(fields, zap.String("event", string(e.Kind)))
	if e.Domain != "" {
		fields = append(fields, zap.String("domain", e.Domain))
	}
	if e.Field != "" {
		fields = append(fields, zap.String("field", e.Field))
	}
	if e.Backend != "" {
		fields = append(fields, zap.String("backend", e.Backend))
	}
	if e.URL != "" {
		fields = append(fields, zap.String("url", e.URL))
	}
	if e.Attempt > 0 {
		fields = append(fields, zap.Int("attempt", e.Attempt))
	}
	if e.Count > 0 {
		fields = append(fields, zap.Int("count", e.Count))
	}
	if e.Message != "" {
		fields = append(fields, zap.String("detail", e.Message))
	}
	if e.Err != "" {
		fields = append(fields, zap.String("error", e.Err))
	}
	s.log.Log(levelFor(e.Kind), "pipeline: "+string(e.Kind), fields...)
}

func levelFor(k model.EventKind) zapcore.Level {
	switch k {
	case model.EventSearchFailed, model.EventPageFailed, model.EventExtractFailed,
		model.EventFieldExhausted, model.EventCloseFailed, model.EventBackendSkipped:
		return zapcore.WarnLevel
	case model.EventRunStarted, model.EventRunFinished, model.EventFieldResolved,
		model.EventFieldStatus, model.EventFieldMissing:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

// Emit implements EventSink.
func (r *Recorder) Emit(e model.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...)
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind model.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the recorded events of kind, in order.
func (r *Recorder) Filter(kind model.EventKind) []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// MultiSink fans an event out to several sinks.
type MultiSink []EventSink

// Emit implements EventSink.
func (m MultiSink) Emit(e model.Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// emitter stamps domain and time onto events.
type emitter struct {
	sink   EventSink
	domain string
	now    func() time.Time
}

func newEmitter(sink EventSink, domain string) emitter {
	if sink == nil {
		sink = NopSink{}
	}
	return emitter{sink: sink, domain: domain, now: time.Now}
}

func (em emitter) emit(e model.Event) {
	e.Domain = em.domain
	if e.Time.IsZero() {
		e.Time = em.now()
	}
	em.sink.Emit(e)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
