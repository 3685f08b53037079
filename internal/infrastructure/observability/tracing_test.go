package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap/zaptest"
)

func TestInitTracing_WithoutExporter(t *testing.T) {
	shutdown, err := InitTracing("checkout-service-test", "", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer shutdown(context.Background())

	if TraceID(context.Background()) != "" {
		t.Fatalf("expected empty trace id without a span")
	}

	ctx, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	if TraceID(ctx) == "" {
		t.Fatalf("expected trace id inside a span")
	}
}

func TestNewLogger(t *testing.T) {
	for _, dev := range []bool{true, false} {
		l, err := NewLogger(dev)
		if err != nil || l == nil {
			t.Fatalf("dev=%v: unexpected error %v", dev, err)
		}
	}
}
