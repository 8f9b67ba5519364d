package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

// Tracer is a thin span wrapper so callers don't depend on the OTel API
// directly and telemetry stays optional.
type Tracer interface {
	Start()
	AddEvent(name string, attributes ...attribute.KeyValue)
	WithAttributes(attributes ...attribute.KeyValue) Tracer
	End()
}

type TracerFactory struct {
	telemetry Telemetry
}

type TracerFactoryParams struct {
	fx.In
	Telemetry Telemetry `optional:"true"`
}

func NewTracerFactory(p TracerFactoryParams) *TracerFactory {
	return &TracerFactory{telemetry: p.Telemetry}
}

// NewTracer returns a tracer for one span. When telemetry is not
// configured a no-op tracer is returned.
func (t *TracerFactory) NewTracer(ctx context.Context, spanName string) Tracer {
	if t.telemetry == nil || t.telemetry.GetTracer() == nil {
		return &DummyTracer{}
	}
	return &spanTracer{
		ctx:      ctx,
		tracer:   t.telemetry.GetTracer(),
		spanName: spanName,
	}
}

type spanTracer struct {
	ctx      context.Context
	tracer   trace.Tracer
	spanName string
	span     trace.Span
}

func (s *spanTracer) Start() {
	s.ctx, s.span = s.tracer.Start(s.ctx, s.spanName)
}

func (s *spanTracer) AddEvent(name string, attributes ...attribute.KeyValue) {
	if s.span == nil {
		return
	}
	s.span.AddEvent(name, trace.WithAttributes(attributes...))
}

func (s *spanTracer) WithAttributes(attributes ...attribute.KeyValue) Tracer {
	if s.span != nil {
		s.span.SetAttributes(attributes...)
	}
	return s
}

func (s *spanTracer) End() {
	if s.span != nil {
		s.span.End()
	}
}

// A dummy tracer that does nothing when telemetry is not enabled
type DummyTracer struct{}

func (t *DummyTracer) Start()                                                 {}
func (t *DummyTracer) AddEvent(name string, attributes ...attribute.KeyValue) {}
func (t *DummyTracer) WithAttributes(attributes ...attribute.KeyValue) Tracer { return t }
func (t *DummyTracer) End()                                                   {}
