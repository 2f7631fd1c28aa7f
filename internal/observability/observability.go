// Package observability defines the logging, tracing, and metrics contracts
// the materialization layer reports through, together with process-local and
// exporter-backed implementations. All hooks default to no-ops so callers only
// pay for what they wire.
package observability

import (
	"context"
	"time"
)

// Logger receives structured key-value log events.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// Span represents one in-flight traced operation.
type Span interface {
	// End completes the span; err marks it failed when non-nil.
	End(err error)
}

// Tracer starts spans around load-layer operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, Span)
}

// MetricsRecorder aggregates operation outcomes and discrete events such as
// identity-map or cache hits.
type MetricsRecorder interface {
	// Observe records one completed operation.
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	// Count records one occurrence of a named event.
	Count(event string)
}

// Event names recorded through MetricsRecorder.Count.
const (
	EventIdentityMapHit  = "identity_map_hit"
	EventIdentityMapMiss = "identity_map_miss"
	EventCacheHit        = "cache_hit"
	EventCacheMiss       = "cache_miss"
)

// NopLogger discards all log events.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// NopTracer produces spans that do nothing.
type NopTracer struct{}

type nopSpan struct{}

func (nopSpan) End(error) {}

// Start implements Tracer.
func (NopTracer) Start(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) Observe(context.Context, string, bool, time.Duration) {}
func (NopMetrics) Count(string)                                        {}
