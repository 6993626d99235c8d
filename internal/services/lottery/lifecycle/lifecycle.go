// Package lifecycle exposes operator-driven draw operations: reading a draw,
// recording externally drawn numbers and moving a draw through the
// post-draw steps.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/louisbranch/lottery/internal/platform/errors"
	"github.com/louisbranch/lottery/internal/platform/logging"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/louisbranch/lottery/internal/services/lottery/events"
	"github.com/louisbranch/lottery/internal/services/lottery/game"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
	"go.uber.org/zap"
)

// LevelNumbers are externally drawn numbers for one level. Level is the
// level name or its id.
type LevelNumbers struct {
	Level   string
	Numbers []int
}

// Service runs draw operations for one game.
type Service struct {
	store     storage.TxStore
	game      game.Game
	clock     func() time.Time
	publisher events.Publisher
	logger    *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithPublisher sets the event publisher.
func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds a lifecycle service for g.
func New(store storage.TxStore, g game.Game, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("lifecycle store is required")
	}
	s := &Service{
		store:     store,
		game:      g,
		clock:     time.Now,
		publisher: events.Nop{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetDraw returns one draw with its winning numbers.
func (s *Service) GetDraw(ctx context.Context, drawID int64) (draw.Draw, error) {
	if err := checkDrawID(drawID); err != nil {
		return draw.Draw{}, err
	}
	return s.loadGameDraw(ctx, s.store, drawID)
}

// ReceiveExternalDrawNumbers records numbers drawn outside the service on a
// Closed draw and moves it to Drawn.
func (s *Service) ReceiveExternalDrawNumbers(ctx context.Context, drawID int64, sets []LevelNumbers) (draw.Draw, error) {
	if err := checkDrawID(drawID); err != nil {
		return draw.Draw{}, err
	}
	winsets := make([]draw.WinningNumbers, 0, len(sets))
	for _, set := range sets {
		winsets = append(winsets, draw.WinningNumbers{
			DrawLevelID: s.levelID(set.Level),
			Numbers:     set.Numbers,
		})
	}
	normalized, err := draw.ValidateWinningNumbers(s.game.Levels, winsets)
	if err != nil {
		return draw.Draw{}, err
	}

	now := s.clock().UTC()
	var drawn draw.Draw
	err = s.store.InTx(ctx, func(ctx context.Context, tx storage.Store) error {
		current, err := s.loadGameDraw(ctx, tx, drawID)
		if err != nil {
			return err
		}
		if err := draw.Transition(&current, draw.StatusDrawn, now); err != nil {
			return err
		}
		current.WinningNumbers = normalized
		if err := tx.RecordDrawResult(ctx, current, nil); err != nil {
			return fmt.Errorf("record draw result: %w", err)
		}
		drawn = current
		return nil
	})
	if err != nil {
		return draw.Draw{}, err
	}
	logger := logging.WithTrace(ctx, s.logger)
	logger.Info("external draw numbers recorded", zap.Int64("draw_id", drawID))
	events.Emit(ctx, logger, s.publisher, events.ForDraw(events.TypeDrawDrawn, drawn, now))
	return drawn, nil
}

// TransitionDraw moves a draw to target. Drawn is only reachable through
// ReceiveExternalDrawNumbers or the scheduler since it needs numbers.
func (s *Service) TransitionDraw(ctx context.Context, drawID int64, target draw.Status) (draw.Draw, error) {
	if err := checkDrawID(drawID); err != nil {
		return draw.Draw{}, err
	}
	now := s.clock().UTC()
	var updated draw.Draw
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Store) error {
		current, err := s.loadGameDraw(ctx, tx, drawID)
		if err != nil {
			return err
		}
		if target == draw.StatusDrawn {
			return draw.TransitionError(current.Status, target)
		}
		if err := draw.Transition(&current, target, now); err != nil {
			return err
		}
		if err := tx.UpdateDrawStatus(ctx, current); err != nil {
			return fmt.Errorf("update draw status: %w", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return draw.Draw{}, err
	}
	logger := logging.WithTrace(ctx, s.logger)
	logger.Info("draw transitioned", zap.Int64("draw_id", drawID), zap.String("status", string(target)))
	events.Emit(ctx, logger, s.publisher, events.ForDraw(eventTypeFor(target), updated, now))
	return updated, nil
}

func (s *Service) loadGameDraw(ctx context.Context, store storage.Store, drawID int64) (draw.Draw, error) {
	d, err := loadDraw(ctx, store, drawID)
	if err != nil {
		return draw.Draw{}, err
	}
	if d.GameID != s.game.ID {
		return draw.Draw{}, notFound(drawID, nil)
	}
	return d, nil
}

func (s *Service) levelID(level string) uuid.UUID {
	level = strings.TrimSpace(level)
	if id, err := uuid.Parse(level); err == nil {
		return id
	}
	return game.LevelID(s.game.ID, level)
}

func loadDraw(ctx context.Context, store storage.DrawStore, drawID int64) (draw.Draw, error) {
	d, err := store.GetDraw(ctx, drawID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return draw.Draw{}, notFound(drawID, err)
		}
		return draw.Draw{}, fmt.Errorf("get draw %d: %w", drawID, err)
	}
	return d, nil
}

func checkDrawID(drawID int64) error {
	if drawID <= 0 {
		return apperrors.WithMetadata(
			apperrors.CodeDrawInvalidID,
			fmt.Sprintf("draw id %d is invalid", drawID),
			map[string]string{"DrawID": strconv.FormatInt(drawID, 10)},
		)
	}
	return nil
}

func notFound(drawID int64, cause error) error {
	return apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("draw %d not found", drawID), cause)
}

func eventTypeFor(status draw.Status) string {
	switch status {
	case draw.StatusOpen:
		return events.TypeDrawOpened
	case draw.StatusClosed:
		return events.TypeDrawClosed
	default:
		return events.TypeDrawTransitioned
	}
}
