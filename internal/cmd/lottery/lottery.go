// Package lottery parses lottery service configuration and launches the
// service.
package lottery

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/lottery/internal/platform/cmd"
	"github.com/louisbranch/lottery/internal/platform/logging"
	"github.com/louisbranch/lottery/internal/platform/otel"
	"github.com/louisbranch/lottery/internal/platform/timeouts"
	"github.com/louisbranch/lottery/internal/services/lottery/app"
	"go.uber.org/zap"
)

// Config holds lottery command configuration.
type Config struct {
	GRPCPort          int           `env:"LOTTERY_GRPC_PORT" envDefault:"8095"`
	HTTPAddr          string        `env:"LOTTERY_HTTP_ADDR" envDefault:":8096"`
	StorageDriver     string        `env:"LOTTERY_STORAGE_DRIVER" envDefault:"sqlite"`
	DBPath            string        `env:"LOTTERY_DB_PATH" envDefault:"data/lottery.db"`
	DatabaseURL       string        `env:"LOTTERY_DATABASE_URL"`
	GameConfig        string        `env:"LOTTERY_GAME_CONFIG" envDefault:"config/game.yaml"`
	SchedulerInterval time.Duration `env:"LOTTERY_SCHEDULER_INTERVAL"`
	AutoAdvance       bool          `env:"LOTTERY_AUTO_ADVANCE" envDefault:"true"`
	AMQPURL           string        `env:"LOTTERY_AMQP_URL"`
	AMQPExchange      string        `env:"LOTTERY_AMQP_EXCHANGE" envDefault:"lottery.events"`
	CORSOrigins       []string      `env:"LOTTERY_CORS_ORIGINS" envSeparator:","`
	LogLevel          string        `env:"LOTTERY_LOG_LEVEL" envDefault:"info"`
	LogFile           string        `env:"LOTTERY_LOG_FILE"`
	OTelEndpoint      string        `env:"LOTTERY_OTEL_ENDPOINT"`
	OTelSampleRatio   float64       `env:"LOTTERY_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// ParseConfig reads an optional .env file, the environment and then flags
// into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{SchedulerInterval: timeouts.SchedulerInterval}
	if err := entrypoint.ParseConfig(&cfg, ".env"); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.GRPCPort, "port", cfg.GRPCPort, "The lottery gRPC server port")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The HTTP API address (empty disables it)")
	fs.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "Storage driver: sqlite or postgres")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.GameConfig, "game-config", cfg.GameConfig, "Game rules file")
	fs.DurationVar(&cfg.SchedulerInterval, "scheduler-interval", cfg.SchedulerInterval, "Period between scheduler ticks")
	fs.BoolVar(&cfg.AutoAdvance, "auto-advance", cfg.AutoAdvance, "Close and draw draws when their times pass")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.GRPCPort <= 0 {
		return Config{}, fmt.Errorf("grpc port must be positive, got %d", cfg.GRPCPort)
	}
	if cfg.SchedulerInterval <= 0 {
		return Config{}, fmt.Errorf("scheduler interval must be positive, got %s", cfg.SchedulerInterval)
	}
	return cfg, nil
}

// RuntimeConfig maps Config onto the app runtime configuration.
func (c Config) RuntimeConfig(logger *zap.Logger) app.Config {
	return app.Config{
		GRPCAddr:          fmt.Sprintf(":%d", c.GRPCPort),
		HTTPAddr:          c.HTTPAddr,
		StorageDriver:     c.StorageDriver,
		DBPath:            c.DBPath,
		DatabaseURL:       c.DatabaseURL,
		GameConfigPath:    c.GameConfig,
		SchedulerInterval: c.SchedulerInterval,
		AutoAdvance:       c.AutoAdvance,
		AMQPURL:           c.AMQPURL,
		AMQPExchange:      c.AMQPExchange,
		CORSOrigins:       c.CORSOrigins,
		Logger:            logger,
	}
}

// Run starts the lottery service.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger = logger.With(zap.String("service", entrypoint.ServiceLottery))
	tracing := otel.Config{
		ServiceName: entrypoint.ServiceLottery,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	}
	return entrypoint.Run(ctx, tracing, logger, func(ctx context.Context) error {
		return app.Run(ctx, cfg.RuntimeConfig(logger))
	})
}
