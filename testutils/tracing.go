package testutils

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type RecordedEvent struct {
	Name       string
	Attributes []attribute.KeyValue
}

// RecordingSpan reports itself as recording and keeps the events added to it.
type RecordingSpan struct {
	noop.Span
	Events []RecordedEvent
}

func (s *RecordingSpan) IsRecording() bool {
	return true
}

func (s *RecordingSpan) AddEvent(name string, options ...trace.EventOption) {
	cfg := trace.NewEventConfig(options...)
	s.Events = append(s.Events, RecordedEvent{
		Name:       name,
		Attributes: cfg.Attributes(),
	})
}

func ContextWithRecordingSpan(ctx context.Context) (context.Context, *RecordingSpan) {
	span := &RecordingSpan{}
	return trace.ContextWithSpan(ctx, span), span
}
