// Package cmd holds the startup steps shared by lottery commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"strings"

	"github.com/louisbranch/lottery/internal/platform/config"
	"github.com/louisbranch/lottery/internal/platform/logging"
	"github.com/louisbranch/lottery/internal/platform/otel"
	"github.com/louisbranch/lottery/internal/platform/timeouts"
	"go.uber.org/zap"
)

// ServiceLottery names the lottery service in traces and logs.
const ServiceLottery = "lottery"

// ParseConfig loads the optional dotenv files and then the environment into
// cfg. Values already in the environment win over dotenv values.
func ParseConfig[T any](cfg *T, dotEnvPaths ...string) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	if err := config.LoadDotEnv(dotEnvPaths...); err != nil {
		return err
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags. A nil args slice parses nothing.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag set is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// Run sets up tracing, then runs fn. Spans are flushed when fn returns; a
// failed flush is logged and does not change the result.
func Run(ctx context.Context, tracing otel.Config, logger *zap.Logger, fn func(context.Context) error) error {
	tracing.ServiceName = strings.TrimSpace(tracing.ServiceName)
	if tracing.ServiceName == "" {
		return errors.New("service name is required")
	}
	if fn == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger = logging.OrNop(logger)

	shutdown, err := otel.Setup(ctx, tracing)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("flush traces", zap.String("service", tracing.ServiceName), zap.Error(err))
		}
	}()
	return fn(ctx)
}
