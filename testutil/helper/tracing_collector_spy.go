package helper

import (
	"context"
	"sync"

	"github.com/MrZLO/storio/storio"
)

// TracingCollectorSpy is a storio.TracingCollector implementation that captures
// span lifecycle calls for testing instrumentation without a tracing backend.
type TracingCollectorSpy struct {
	startedSpans  []SpySpanRecord
	finishedSpans []SpySpanRecord
	mu            sync.Mutex
}

// SpySpanRecord represents one recorded span lifecycle call.
type SpySpanRecord struct {
	Name   string
	Status string
	Attrs  map[string]string
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{
		startedSpans:  make([]SpySpanRecord, 0),
		finishedSpans: make([]SpySpanRecord, 0),
	}
}

// StartSpan implements the storio.TracingCollector interface.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, storio.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startedSpans = append(s.startedSpans, SpySpanRecord{Name: name, Attrs: attrs})

	return ctx, &spySpanContext{name: name}
}

// FinishSpan implements the storio.TracingCollector interface.
func (s *TracingCollectorSpy) FinishSpan(spanCtx storio.SpanContext, status string, attrs map[string]string) {
	name := ""
	if spy, ok := spanCtx.(*spySpanContext); ok {
		name = spy.name
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishedSpans = append(s.finishedSpans, SpySpanRecord{Name: name, Status: status, Attrs: attrs})
}

// StartedSpans returns a copy of all recorded span starts.
func (s *TracingCollectorSpy) StartedSpans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpySpanRecord, len(s.startedSpans))
	copy(records, s.startedSpans)

	return records
}

// FinishedSpans returns a copy of all recorded span finishes.
func (s *TracingCollectorSpy) FinishedSpans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpySpanRecord, len(s.finishedSpans))
	copy(records, s.finishedSpans)

	return records
}

type spySpanContext struct {
	name   string
	status string
	mu     sync.Mutex
}

func (s *spySpanContext) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *spySpanContext) AddAttribute(_, _ string) {}
