package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/lottery/internal/platform/timeouts"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ClientConfig controls a lottery client connection.
type ClientConfig struct {
	Addr string
	// Services lists the health service names that must report SERVING.
	// Empty waits on the server-wide status.
	Services []string
	// Timeout bounds the whole readiness wait. Zero means timeouts.GRPCDial.
	Timeout time.Duration
	Logger  *zap.Logger
	// Options replace DialOptions when set.
	Options []gogrpc.DialOption
}

// ConnectError reports a connection that never became usable.
type ConnectError struct {
	Addr string
	// Service is the health service that was not serving. Empty means the
	// client could not be created at all.
	Service string
	Err     error
}

func (e *ConnectError) Error() string {
	if e.Service == "" {
		return fmt.Sprintf("connect to %s: %v", e.Addr, e.Err)
	}
	return fmt.Sprintf("%s at %s is not serving: %v", e.Service, e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// DialOptions returns the options lottery clients use: plaintext transport,
// OTel stats and the JSON codec for every call.
func DialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		gogrpc.WithDefaultCallOptions(gogrpc.CallContentSubtype(JSONCodecName)),
	}
}

// Connect creates a client for cfg.Addr and returns once every configured
// service reports SERVING. The connection is closed on failure.
func Connect(ctx context.Context, cfg ClientConfig) (*gogrpc.ClientConn, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("grpc address is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	opts := cfg.Options
	if len(opts) == 0 {
		opts = DialOptions()
	}

	conn, err := gogrpc.NewClient(addr, opts...)
	if err != nil {
		return nil, &ConnectError{Addr: addr, Err: err}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = timeouts.GRPCDial
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	services := cfg.Services
	if len(services) == 0 {
		services = []string{""}
	}
	for _, service := range services {
		if err := WaitServing(ctx, conn, service, cfg.Logger); err != nil {
			_ = conn.Close()
			return nil, &ConnectError{Addr: addr, Service: displayName(service), Err: err}
		}
	}
	return conn, nil
}

func displayName(service string) string {
	if service == "" {
		return "server"
	}
	return service
}
