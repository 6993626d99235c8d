package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gogrpc "google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const watchRetry = 250 * time.Millisecond

// WaitServing watches the health of service on conn until it reports
// SERVING or ctx ends. A broken watch stream is reopened.
func WaitServing(ctx context.Context, conn *gogrpc.ClientConn, service string, logger *zap.Logger) error {
	if conn == nil {
		return errors.New("grpc connection is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("health_service", displayName(service)))
	client := grpc_health_v1.NewHealthClient(conn)

	for {
		serving, err := watchOnce(ctx, client, service, logger)
		if serving {
			logger.Debug("grpc service serving")
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("wait for %s: %w", displayName(service), ctx.Err())
		}
		logger.Debug("grpc health watch interrupted", zap.Error(err))
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for %s: %w", displayName(service), ctx.Err())
		case <-time.After(watchRetry):
		}
	}
}

// watchOnce reads one health stream until it reports SERVING or breaks.
func watchOnce(ctx context.Context, client grpc_health_v1.HealthClient, service string, logger *zap.Logger) (bool, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := client.Watch(watchCtx, &grpc_health_v1.HealthCheckRequest{Service: service}, gogrpc.WaitForReady(true))
	if err != nil {
		return false, err
	}
	for {
		resp, err := stream.Recv()
		if err != nil {
			return false, err
		}
		if resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
			return true, nil
		}
		logger.Debug("grpc service not serving yet", zap.Stringer("status", resp.GetStatus()))
	}
}
