package discovery

import "testing"

func TestDefaultGRPCPort(t *testing.T) {
	if got := DefaultGRPCPort(" lottery "); got != 8095 {
		t.Fatalf("DefaultGRPCPort = %d, want 8095", got)
	}
	if got := DefaultGRPCPort("missing"); got != 0 {
		t.Fatalf("DefaultGRPCPort(missing) = %d, want 0", got)
	}
}

func TestDefaultGRPCListenAddr(t *testing.T) {
	if got := DefaultGRPCListenAddr(ServiceLottery); got != ":8095" {
		t.Fatalf("DefaultGRPCListenAddr = %q", got)
	}
	if got := DefaultGRPCListenAddr("missing"); got != "" {
		t.Fatalf("expected empty addr for unknown service, got %q", got)
	}
}
