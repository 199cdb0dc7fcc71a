package tracing

import (
	"context"
	"testing"
)

func TestInit_Disabled(t *testing.T) {
	closer, err := Init(Config{})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer closer()

	span, ctx := StartSpan(context.Background(), "test.op")
	defer span.Finish()
	if TraceID(ctx) != "" {
		t.Fatalf("noop tracer must not set a trace id")
	}
}
