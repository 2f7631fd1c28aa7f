package observability

import (
	"context"
	"errors"
	"testing"
)

// The global provider defaults to a no-op tracer; the adapter must still
// produce usable spans so wiring it unconditionally is safe.
func TestOTelTracerWithDefaultProvider(t *testing.T) {
	tracer := NewOTelTracer("")
	ctx, span := tracer.Start(context.Background(), "session.load")
	if ctx == nil {
		t.Fatalf("context must be propagated")
	}
	span.End(nil)

	_, span = tracer.Start(context.Background(), "session.load")
	span.End(errors.New("load failed"))
}
