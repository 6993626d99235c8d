// Package scheduler keeps a game's draw calendar filled and moves draws
// through the timed steps of their lifecycle.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/lottery/internal/platform/timeouts"
	"github.com/louisbranch/lottery/internal/random"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/louisbranch/lottery/internal/services/lottery/events"
	"github.com/louisbranch/lottery/internal/services/lottery/game"
	"github.com/louisbranch/lottery/internal/services/lottery/metrics"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs periodic ticks for one game.
type Scheduler struct {
	store       storage.TxStore
	game        game.Game
	interval    time.Duration
	autoAdvance bool
	clock       func() time.Time
	seeds       random.Source
	publisher   events.Publisher
	logger      *zap.Logger
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithInterval sets the period between ticks.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithAutoAdvance toggles closing and drawing draws when their times pass.
func WithAutoAdvance(enabled bool) Option {
	return func(s *Scheduler) {
		s.autoAdvance = enabled
	}
}

// WithSeedSource sets where draw seeds come from.
func WithSeedSource(source random.Source) Option {
	return func(s *Scheduler) {
		if source != nil {
			s.seeds = source
		}
	}
}

// WithPublisher sets the lifecycle event publisher.
func WithPublisher(publisher events.Publisher) Option {
	return func(s *Scheduler) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds a scheduler for g.
func New(store storage.TxStore, g game.Game, opts ...Option) (*Scheduler, error) {
	if store == nil {
		return nil, errors.New("scheduler store is required")
	}
	if g.Schedule == nil {
		return nil, errors.New("game schedule is required")
	}
	if g.OpenDraws < 1 {
		return nil, fmt.Errorf("open draws target must be positive, got %d", g.OpenDraws)
	}
	s := &Scheduler{
		store:       store,
		game:        g,
		interval:    timeouts.SchedulerInterval,
		autoAdvance: true,
		clock:       time.Now,
		seeds:       random.CryptoSource{},
		publisher:   events.Nop{},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("game_id", g.ID.String()))
	return s, nil
}

// Report counts what one tick did.
type Report struct {
	Opened  int
	Created int
	Closed  int
	Drawn   int
	Failed  int
}

// Run ticks once, then on every interval until ctx is cancelled. Overlapping
// ticks are skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.Tick(ctx)

	cl := cronLogger{sugar: s.logger.Sugar()}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc("@every "+s.interval.String(), func() { s.Tick(ctx) }); err != nil {
		return fmt.Errorf("schedule ticks: %w", err)
	}
	c.Start()
	s.logger.Info("draw scheduler started", zap.Duration("interval", s.interval))

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("draw scheduler stopped")
	return nil
}

// Tick opens due draws, closes and draws expired ones when auto-advance is
// on, then creates draws until the open draws target is met. A failing draw
// is logged and skipped.
func (s *Scheduler) Tick(ctx context.Context) Report {
	started := time.Now()
	now := s.clock().UTC()
	var report Report

	s.openReady(ctx, now, &report)
	if s.autoAdvance {
		s.closeDue(ctx, now, &report)
		s.drawDue(ctx, now, &report)
	}
	s.fillCalendar(ctx, now, &report)

	metrics.RecordTick(report.Failed > 0, started)
	s.logger.Debug("scheduler tick",
		zap.Int("opened", report.Opened),
		zap.Int("created", report.Created),
		zap.Int("closed", report.Closed),
		zap.Int("drawn", report.Drawn),
		zap.Int("failed", report.Failed),
	)
	return report
}

func (s *Scheduler) openReady(ctx context.Context, now time.Time, report *Report) {
	ready, err := s.store.DrawsReadyToOpen(ctx, s.game.ID, now)
	if err != nil {
		report.Failed++
		s.logger.Error("load draws ready to open", zap.Error(err))
		return
	}
	for _, d := range ready {
		if err := s.advance(ctx, d.ID, draw.EventOpen, metrics.StepOpen, events.TypeDrawOpened, now); err != nil {
			report.Failed++
			continue
		}
		report.Opened++
	}
}

func (s *Scheduler) closeDue(ctx context.Context, now time.Time, report *Report) {
	due, err := s.store.DrawsDueToClose(ctx, s.game.ID, now)
	if err != nil {
		report.Failed++
		s.logger.Error("load draws due to close", zap.Error(err))
		return
	}
	for _, d := range due {
		if err := s.advance(ctx, d.ID, draw.EventClose, metrics.StepClose, events.TypeDrawClosed, now); err != nil {
			report.Failed++
			continue
		}
		report.Closed++
	}
}

func (s *Scheduler) drawDue(ctx context.Context, now time.Time, report *Report) {
	due, err := s.store.DrawsDueToDraw(ctx, s.game.ID, now)
	if err != nil {
		report.Failed++
		s.logger.Error("load draws due to draw", zap.Error(err))
		return
	}
	for _, d := range due {
		if err := s.drawOne(ctx, d.ID, now); err != nil {
			report.Failed++
			continue
		}
		report.Drawn++
	}
}

// fillCalendar creates draws until the active count reaches the target. The
// anchor also covers closed draws still waiting to be drawn so a draw
// instant is never scheduled twice.
func (s *Scheduler) fillCalendar(ctx context.Context, now time.Time, report *Report) {
	active, err := s.store.ActiveDraws(ctx, s.game.ID)
	if err != nil {
		report.Failed++
		s.logger.Error("load active draws", zap.Error(err))
		return
	}
	pending, err := s.store.PendingDraws(ctx, s.game.ID)
	if err != nil {
		report.Failed++
		s.logger.Error("load pending draws", zap.Error(err))
		return
	}
	known := make([]draw.Draw, 0, len(active)+len(pending)+s.game.OpenDraws)
	known = append(known, active...)
	known = append(known, pending...)

	for count := len(active); count < s.game.OpenDraws; count++ {
		anchor, ok := draw.LatestScheduled(known)
		if !ok || anchor.Before(now) {
			anchor = now
		}
		openTime, closeTime, drawTime := draw.NextWindow(s.game.Schedule, anchor, now, s.game.ClosedStateDuration)
		d := draw.New(s.game.ID, openTime, closeTime, drawTime, now)

		err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Store) error {
			id, err := tx.InsertDraw(ctx, d)
			if err != nil {
				return err
			}
			d.ID = id
			return nil
		})
		metrics.RecordDrawStep(metrics.StepCreate, err)
		if err != nil {
			report.Failed++
			s.logger.Error("create draw", zap.Time("draw_time", drawTime), zap.Error(err))
			return
		}
		known = append(known, d)
		report.Created++
		s.logger.Info("draw created", zap.Int64("draw_id", d.ID), zap.Time("draw_time", drawTime))
		events.Emit(ctx, s.logger, s.publisher, events.ForDraw(events.TypeDrawCreated, d, now))
	}
}

// advance re-reads the draw inside its transaction so a concurrent change
// turns into a rejected transition instead of a lost update.
func (s *Scheduler) advance(ctx context.Context, drawID int64, event draw.Event, step, eventType string, now time.Time) error {
	var updated draw.Draw
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Store) error {
		current, err := tx.GetDraw(ctx, drawID)
		if err != nil {
			return err
		}
		if err := draw.Apply(&current, event, now); err != nil {
			return err
		}
		if err := tx.UpdateDrawStatus(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	metrics.RecordDrawStep(step, err)
	if err != nil {
		s.logger.Warn("advance draw",
			zap.Int64("draw_id", drawID),
			zap.String("event", string(event)),
			zap.Error(err),
		)
		return err
	}
	s.logger.Info("draw advanced", zap.Int64("draw_id", drawID), zap.String("status", string(updated.Status)))
	events.Emit(ctx, s.logger, s.publisher, events.ForDraw(eventType, updated, now))
	return nil
}

func (s *Scheduler) drawOne(ctx context.Context, drawID int64, now time.Time) error {
	seed, err := s.seeds.NewSeed()
	if err != nil {
		metrics.RecordDrawStep(metrics.StepDraw, err)
		s.logger.Error("draw seed", zap.Int64("draw_id", drawID), zap.Error(err))
		return err
	}
	var drawn draw.Draw
	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Store) error {
		current, err := tx.GetDraw(ctx, drawID)
		if err != nil {
			return err
		}
		numbers, err := draw.GenerateWinningNumbers(s.game.Levels, seed)
		if err != nil {
			return err
		}
		if err := draw.Apply(&current, draw.EventDraw, now); err != nil {
			return err
		}
		current.WinningNumbers = numbers
		if err := tx.RecordDrawResult(ctx, current, seed[:]); err != nil {
			return err
		}
		drawn = current
		return nil
	})
	metrics.RecordDrawStep(metrics.StepDraw, err)
	if err != nil {
		s.logger.Error("draw winning numbers", zap.Int64("draw_id", drawID), zap.Error(err))
		return err
	}
	s.logger.Info("draw drawn", zap.Int64("draw_id", drawID))
	events.Emit(ctx, s.logger, s.publisher, events.ForDraw(events.TypeDrawDrawn, drawn, now))
	return nil
}

type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
