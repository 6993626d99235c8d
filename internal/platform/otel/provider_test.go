package otel

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{ServiceName: "lottery-test", Endpoint: "  "})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}

func TestSetupRequiresServiceName(t *testing.T) {
	if _, err := Setup(context.Background(), Config{Endpoint: "http://192.0.2.1:4318"}); err == nil {
		t.Fatal("expected error without service name")
	}
}

func TestSetupExportsWhenEndpointSet(t *testing.T) {
	// 192.0.2.0/24 is reserved for documentation, nothing is exported.
	shutdown, err := Setup(context.Background(), Config{
		ServiceName: "lottery-test",
		Endpoint:    "http://192.0.2.1:4318",
		SampleRatio: 0.25,
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 0, want: sdktrace.ParentBased(sdktrace.AlwaysSample()).Description()},
		{ratio: 1, want: sdktrace.ParentBased(sdktrace.AlwaysSample()).Description()},
		{ratio: 0.5, want: sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.5)).Description()},
	}
	for _, tt := range tests {
		if got := (Config{SampleRatio: tt.ratio}).sampler().Description(); got != tt.want {
			t.Fatalf("ratio %v: sampler = %s, want %s", tt.ratio, got, tt.want)
		}
	}
}
