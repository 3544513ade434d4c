package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for the synchronization layer.
const defaultTracerName = "fragsync"

// Tracer returns a tracer from the global OpenTelemetry provider. Pass
// the result to bus.WithTracer and store.WithTracer. Configure the
// provider in main() before wiring the bus:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//
//	b := bus.New(bus.WithTracer(telemetry.Tracer("")))
//
// With no provider configured the global no-op tracer is returned, so
// tracing is free to leave wired in.
func Tracer(name string) trace.Tracer {
	if name == "" {
		name = defaultTracerName
	}
	return otel.Tracer(name)
}
