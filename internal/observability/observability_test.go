package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNopImplementationsDoNothing(t *testing.T) {
	var logger Logger = NopLogger{}
	logger.Debug("m", "k", "v")
	logger.Info("m")
	logger.Warn("m")
	logger.Error("m")

	var tracer Tracer = NopTracer{}
	ctx, span := tracer.Start(context.Background(), "op")
	if ctx == nil {
		t.Fatalf("nop tracer must preserve the context")
	}
	span.End(errors.New("ignored"))

	var metrics MetricsRecorder = NopMetrics{}
	metrics.Observe(context.Background(), "op", true, time.Millisecond)
	metrics.Count(EventCacheHit)
}

func TestExpvarRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "session.load", true, 2*time.Millisecond)
	rec.Observe(ctx, "session.load", true, 3*time.Millisecond)
	rec.Observe(ctx, "session.load", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)
	rec.Count(EventCacheHit)
	rec.Count(EventCacheHit)
	rec.Count(EventIdentityMapMiss)
	rec.Count("")

	snap := rec.Snapshot()
	if snap.DurationsMS["session.load"] != 5 {
		t.Fatalf("unexpected duration total: %v", snap.DurationsMS["session.load"])
	}
	if snap.Results["session.load"]["success"] != 2 || snap.Results["session.load"]["error"] != 1 {
		t.Fatalf("unexpected results: %v", snap.Results["session.load"])
	}
	if snap.Events[EventCacheHit] != 2 || snap.Events[EventIdentityMapMiss] != 1 {
		t.Fatalf("unexpected events: %v", snap.Events)
	}
	if len(snap.Events) != 2 {
		t.Fatalf("empty event name should not be recorded: %v", snap.Events)
	}
	if rec.Name() == "" {
		t.Fatalf("generated name should not be empty")
	}
}

func TestJSONTracerWritesEntries(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "session.load")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "session.load_by_unique_key")
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Status != "success" || entries[1].Status != "error" {
		t.Fatalf("unexpected statuses: %+v", entries)
	}
	if entries[1].Error != "boom" {
		t.Fatalf("unexpected error message: %q", entries[1].Error)
	}
	out := buf.String()
	if !strings.Contains(out, `"session.load"`) || !strings.Contains(out, `"boom"`) {
		t.Fatalf("unexpected serialized output: %s", out)
	}
}

func TestJSONTracerWithoutWriter(t *testing.T) {
	tracer := NewJSONTracer(nil)
	_, span := tracer.Start(context.Background(), "op")
	span.End(nil)
	if len(tracer.Entries()) != 1 {
		t.Fatalf("entries should be retained without a writer")
	}
}
