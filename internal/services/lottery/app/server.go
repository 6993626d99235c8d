// Package app wires the lottery runtime: storage, scheduler, gRPC and HTTP
// servers.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	lotteryv1 "github.com/louisbranch/lottery/api/lottery/v1"
	"github.com/louisbranch/lottery/internal/platform/discovery"
	"github.com/louisbranch/lottery/internal/platform/logging"
	"github.com/louisbranch/lottery/internal/platform/timeouts"
	"github.com/louisbranch/lottery/internal/random"
	lotteryservice "github.com/louisbranch/lottery/internal/services/lottery/api/grpc/lottery"
	httpapi "github.com/louisbranch/lottery/internal/services/lottery/api/http"
	"github.com/louisbranch/lottery/internal/services/lottery/events"
	"github.com/louisbranch/lottery/internal/services/lottery/game"
	"github.com/louisbranch/lottery/internal/services/lottery/lifecycle"
	"github.com/louisbranch/lottery/internal/services/lottery/placement"
	"github.com/louisbranch/lottery/internal/services/lottery/scheduler"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
	"github.com/louisbranch/lottery/internal/services/lottery/storage/postgres"
	"github.com/louisbranch/lottery/internal/services/lottery/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultDBPath = "data/lottery.db"

// Config controls runtime construction.
type Config struct {
	GRPCAddr string
	// HTTPAddr empty disables the HTTP API.
	HTTPAddr          string
	StorageDriver     string
	DBPath            string
	DatabaseURL       string
	GameConfigPath    string
	SchedulerInterval time.Duration
	AutoAdvance       bool
	AMQPURL           string
	AMQPExchange      string
	CORSOrigins       []string

	Logger *zap.Logger
	Clock  func() time.Time
	Seeds  random.Source
}

type closableStore interface {
	storage.TxStore
	Close() error
}

// Server hosts the lottery APIs and the draw scheduler.
type Server struct {
	logger       *zap.Logger
	store        closableStore
	amqp         *events.AMQPPublisher
	scheduler    *scheduler.Scheduler
	grpcListener net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
	httpListener net.Listener
	httpServer   *http.Server
}

// New builds a runtime from cfg. Listeners are bound so Addr reports the
// real ports before Serve.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.OrNop(cfg.Logger)
	if strings.TrimSpace(cfg.GRPCAddr) == "" {
		cfg.GRPCAddr = discovery.DefaultGRPCListenAddr(discovery.ServiceLottery)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	gameConfig, err := game.Load(cfg.GameConfigPath)
	if err != nil {
		return nil, err
	}
	g := gameConfig.Game
	logger = logger.With(zap.String("game_id", g.ID.String()))

	srv := &Server{logger: logger}
	ok := false
	defer func() {
		if !ok {
			srv.Close()
		}
	}()

	srv.store, err = openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := registerCatalog(ctx, srv.store, gameConfig); err != nil {
		return nil, err
	}

	publishers := events.Multi{
		events.LogPublisher{Logger: logger},
		events.StorePublisher{Store: srv.store},
	}
	if url := strings.TrimSpace(cfg.AMQPURL); url != "" {
		srv.amqp, err = events.DialAMQP(url, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, srv.amqp)
	}

	srv.scheduler, err = scheduler.New(srv.store, g,
		scheduler.WithClock(cfg.Clock),
		scheduler.WithInterval(cfg.SchedulerInterval),
		scheduler.WithAutoAdvance(cfg.AutoAdvance),
		scheduler.WithSeedSource(cfg.Seeds),
		scheduler.WithPublisher(publishers),
		scheduler.WithLogger(logger.Named("scheduler")),
	)
	if err != nil {
		return nil, fmt.Errorf("build scheduler: %w", err)
	}
	coord, err := placement.New(srv.store, g,
		placement.WithClock(cfg.Clock),
		placement.WithPublisher(publishers),
		placement.WithLogger(logger.Named("placement")),
	)
	if err != nil {
		return nil, fmt.Errorf("build placement: %w", err)
	}
	lc, err := lifecycle.New(srv.store, g,
		lifecycle.WithClock(cfg.Clock),
		lifecycle.WithPublisher(publishers),
		lifecycle.WithLogger(logger.Named("lifecycle")),
	)
	if err != nil {
		return nil, fmt.Errorf("build lifecycle: %w", err)
	}
	api := lotteryservice.NewService(coord, lc)

	srv.grpcListener, err = net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}
	srv.grpcServer = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	srv.health = health.NewServer()
	lotteryv1.RegisterDrawServiceServer(srv.grpcServer, api)
	lotteryv1.RegisterWageringServiceServer(srv.grpcServer, api)
	lotteryv1.RegisterAdminServiceServer(srv.grpcServer, api)
	grpc_health_v1.RegisterHealthServer(srv.grpcServer, srv.health)
	srv.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	for _, name := range []string{lotteryv1.DrawServiceName, lotteryv1.WageringServiceName, lotteryv1.AdminServiceName} {
		srv.health.SetServingStatus(name, grpc_health_v1.HealthCheckResponse_SERVING)
	}

	if addr := strings.TrimSpace(cfg.HTTPAddr); addr != "" {
		srv.httpListener, err = net.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("listen on %s: %w", addr, err)
		}
		srv.httpServer = &http.Server{
			Handler:           httpapi.NewHandler(api, cfg.CORSOrigins, httpapi.WithLogger(logger.Named("http")), httpapi.WithClock(cfg.Clock)),
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
	}

	ok = true
	return srv, nil
}

// Run builds a server and serves it until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	srv, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

// GRPCAddr returns the bound gRPC address.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// HTTPAddr returns the bound HTTP address, or empty when HTTP is disabled.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Serve runs the scheduler and both servers until ctx is cancelled or a
// server fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 2)
	go func() {
		s.logger.Info("lottery gRPC server listening", zap.String("addr", s.GRPCAddr()))
		if err := s.grpcServer.Serve(s.grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- fmt.Errorf("serve gRPC: %w", err)
		}
	}()
	if s.httpServer != nil {
		go func() {
			s.logger.Info("lottery HTTP API listening", zap.String("addr", s.HTTPAddr()))
			if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("serve HTTP: %w", err)
			}
		}()
	}
	schedulerDone := make(chan error, 1)
	go func() {
		schedulerDone <- s.scheduler.Run(runCtx)
	}()

	var err error
	schedulerStopped := false
	select {
	case <-ctx.Done():
	case err = <-serveErr:
		s.logger.Error("server failed", zap.Error(err))
	case err = <-schedulerDone:
		schedulerStopped = true
	}
	cancel()

	s.health.Shutdown()
	if s.httpServer != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), timeouts.Shutdown)
		if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Warn("shutdown HTTP API", zap.Error(shutdownErr))
		}
		stop()
	}
	s.grpcServer.GracefulStop()
	if !schedulerStopped {
		if schedErr := <-schedulerDone; schedErr != nil && err == nil {
			err = schedErr
		}
	}
	return err
}

// Close releases every runtime resource. It is safe to call more than once.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.grpcListener != nil {
		_ = s.grpcListener.Close()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.amqp != nil {
		if err := s.amqp.Close(); err != nil {
			s.logger.Warn("close amqp publisher", zap.Error(err))
		}
		s.amqp = nil
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("close lottery store", zap.Error(err))
		}
		s.store = nil
	}
}

func openStore(ctx context.Context, cfg Config) (closableStore, error) {
	switch driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver)); driver {
	case "", DriverSQLite:
		path := strings.TrimSpace(cfg.DBPath)
		if path == "" {
			path = defaultDBPath
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open lottery sqlite store: %w", err)
		}
		return store, nil
	case DriverPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, errors.New("database url is required for the postgres driver")
		}
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open lottery postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func registerCatalog(ctx context.Context, store storage.TxStore, cfg game.Config) error {
	return store.InTx(ctx, func(ctx context.Context, tx storage.Store) error {
		if err := tx.UpsertOperator(ctx, storage.Operator{ID: cfg.Operator.ID, Name: cfg.Operator.Name}); err != nil {
			return fmt.Errorf("register operator: %w", err)
		}
		if err := tx.UpsertGame(ctx, storage.Game{ID: cfg.Game.ID, OperatorID: cfg.Game.OperatorID, Name: cfg.Game.Name}); err != nil {
			return fmt.Errorf("register game: %w", err)
		}
		return nil
	})
}
