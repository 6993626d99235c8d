// Package placement validates wager requests against the open draw calendar
// and persists accepted wagers atomically.
package placement

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
	"github.com/louisbranch/lottery/internal/services/lottery/domain/wager"
	"github.com/louisbranch/lottery/internal/services/lottery/events"
	"github.com/louisbranch/lottery/internal/services/lottery/game"
	"github.com/louisbranch/lottery/internal/services/lottery/metrics"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SelectionInput is one requested selection.
type SelectionInput struct {
	Name   string
	Values []int
}

// BoardInput is one requested board.
type BoardInput struct {
	GameType   wager.GameType
	Selections []SelectionInput
}

// PlaceWagerInput is a wager request.
type PlaceWagerInput struct {
	UserID  string
	DrawIDs []int64
	Boards  []BoardInput
	// Stake is optional; the zero value means the game's unit stake.
	Stake decimal.Decimal
}

// Coordinator places and reads wagers for one game.
type Coordinator struct {
	store     storage.TxStore
	game      game.Game
	validator *wager.Validator
	clock     func() time.Time
	newID     func() uuid.UUID
	publisher events.Publisher
	logger    *zap.Logger
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator overrides how wager, board and selection ids are minted.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(c *Coordinator) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// WithPublisher sets the event publisher.
func WithPublisher(publisher events.Publisher) Option {
	return func(c *Coordinator) {
		if publisher != nil {
			c.publisher = publisher
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a coordinator for g.
func New(store storage.TxStore, g game.Game, opts ...Option) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("placement store is required")
	}
	validator, err := g.Validator()
	if err != nil {
		return nil, fmt.Errorf("build wager validator: %w", err)
	}
	c := &Coordinator{
		store:     store,
		game:      g,
		validator: validator,
		clock:     time.Now,
		newID:     uuid.New,
		publisher: events.Nop{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Game returns the game the coordinator serves.
func (c *Coordinator) Game() game.Game {
	return c.game
}

// PlaceWager validates in and stores the resulting wager. The active draw
// read and every write share one transaction.
func (c *Coordinator) PlaceWager(ctx context.Context, in PlaceWagerInput) (wager.Wager, error) {
	started := time.Now()
	var placed wager.Wager
	err := c.store.InTx(ctx, func(ctx context.Context, tx storage.Store) error {
		w, err := c.place(ctx, tx, in)
		if err != nil {
			return err
		}
		placed = w
		return nil
	})
	logger := logging.WithTrace(ctx, c.logger)
	if err != nil {
		code := apperrors.GetCode(err)
		metrics.RecordPlacement(string(code), started)
		if code == apperrors.CodeUnknown {
			logger.Error("place wager", zap.String("user_id", in.UserID), zap.Error(err))
			return wager.Wager{}, fmt.Errorf("place wager: %w", err)
		}
		logger.Info("wager rejected", zap.String("user_id", in.UserID), zap.String("code", string(code)))
		return wager.Wager{}, err
	}
	metrics.RecordPlacement("success", started)
	logger.Info("wager placed",
		zap.String("wager_id", placed.ID.String()),
		zap.Int64s("draw_ids", placed.DrawIDs()),
		zap.Int("boards", len(placed.Boards)),
	)
	events.Emit(ctx, logger, c.publisher, events.ForWager(placed, placed.CreatedAt))
	return placed, nil
}

func (c *Coordinator) place(ctx context.Context, tx storage.Store, in PlaceWagerInput) (wager.Wager, error) {
	active, err := tx.ActiveDraws(ctx, c.game.ID)
	if err != nil {
		return wager.Wager{}, fmt.Errorf("load active draws: %w", err)
	}
	if len(active) == 0 {
		return wager.Wager{}, apperrors.New(apperrors.CodeNoOpenDraws, "no active draws")
	}

	if err := c.checkRequest(in); err != nil {
		return wager.Wager{}, err
	}
	userID, err := uuid.Parse(strings.TrimSpace(in.UserID))
	if err != nil || userID == uuid.Nil {
		return wager.Wager{}, apperrors.New(apperrors.CodeWagerInvalidUserID, "user id is not a UUID")
	}

	byID := make(map[int64]draw.Draw, len(active))
	for _, d := range active {
		byID[d.ID] = d
	}
	selected := make([]draw.Draw, 0, len(in.DrawIDs))
	for _, id := range in.DrawIDs {
		d, ok := byID[id]
		if !ok {
			return wager.Wager{}, apperrors.WithMetadata(
				apperrors.CodeDrawNotOpen,
				fmt.Sprintf("draw %d is not open", id),
				map[string]string{"DrawID": strconv.FormatInt(id, 10)},
			)
		}
		selected = append(selected, d)
	}

	now := c.clock().UTC()
	w := wager.Wager{
		ID:        c.newID(),
		UserID:    userID,
		Draws:     selected,
		Boards:    c.buildBoards(in.Boards),
		CreatedAt: now,
	}
	for i := range w.Boards {
		w.Boards[i].WagerID = w.ID
	}

	if err := c.validator.ValidateBoards(w.Boards); err != nil {
		return wager.Wager{}, err
	}
	stake, err := c.stakeFor(w.Boards, in.Stake)
	if err != nil {
		return wager.Wager{}, err
	}
	w.Stake = stake
	w.Price = wager.Price(stake, len(selected))

	if err := tx.InsertWager(ctx, w, w.DrawIDs()); err != nil {
		return wager.Wager{}, fmt.Errorf("insert wager: %w", err)
	}
	return w, nil
}

func (c *Coordinator) checkRequest(in PlaceWagerInput) error {
	if len(in.DrawIDs) == 0 {
		return apperrors.New(apperrors.CodeWagerEmptyDrawSelection, "no draws selected")
	}
	seen := make(map[int64]struct{}, len(in.DrawIDs))
	for _, id := range in.DrawIDs {
		if _, dup := seen[id]; dup {
			return apperrors.WithMetadata(
				apperrors.CodeWagerDuplicateDraw,
				fmt.Sprintf("draw %d selected twice", id),
				map[string]string{"DrawID": strconv.FormatInt(id, 10)},
			)
		}
		seen[id] = struct{}{}
	}
	if !c.game.ParticipationAllowed(len(in.DrawIDs)) {
		return apperrors.WithMetadata(
			apperrors.CodeWagerParticipationNotAllowed,
			fmt.Sprintf("participation in %d draws not allowed", len(in.DrawIDs)),
			map[string]string{"Count": strconv.Itoa(len(in.DrawIDs))},
		)
	}
	if len(in.Boards) == 0 {
		return apperrors.New(apperrors.CodeWagerNoBoards, "no boards")
	}
	return nil
}

func (c *Coordinator) buildBoards(inputs []BoardInput) []wager.Board {
	boards := make([]wager.Board, 0, len(inputs))
	for _, in := range inputs {
		b := wager.Board{
			ID:         c.newID(),
			GameType:   in.GameType,
			Selections: make([]wager.Selection, 0, len(in.Selections)),
		}
		for _, sel := range in.Selections {
			b.Selections = append(b.Selections, wager.Selection{
				ID:     c.newID(),
				Name:   strings.TrimSpace(sel.Name),
				Values: append([]int(nil), sel.Values...),
			})
		}
		boards = append(boards, b)
	}
	return boards
}

// stakeFor resolves the wager stake, the unit stake when none was
// requested. Either way the stake must fit the class of every board.
func (c *Coordinator) stakeFor(boards []wager.Board, requested decimal.Decimal) (decimal.Decimal, error) {
	if requested.IsZero() {
		requested = c.game.UnitStake
	}
	for _, b := range boards {
		class, ok := c.validator.ClassFor(b)
		if !ok {
			continue
		}
		if err := wager.ValidateStake(class, requested); err != nil {
			return decimal.Decimal{}, err
		}
	}
	return requested, nil
}

// GetWager returns a stored wager.
func (c *Coordinator) GetWager(ctx context.Context, id string) (wager.Wager, error) {
	wagerID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return wager.Wager{}, apperrors.New(apperrors.CodeWagerInvalidID, "wager id is not a UUID")
	}
	w, err := c.store.GetWager(ctx, wagerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return wager.Wager{}, apperrors.Wrap(apperrors.CodeNotFound, "wager not found", err)
		}
		return wager.Wager{}, fmt.Errorf("get wager: %w", err)
	}
	return w, nil
}

// GetOpenDraws lists Open draws, for every game when gameID is empty.
func (c *Coordinator) GetOpenDraws(ctx context.Context, gameID string) ([]draw.Draw, error) {
	id := uuid.Nil
	if trimmed := strings.TrimSpace(gameID); trimmed != "" {
		parsed, err := uuid.Parse(trimmed)
		if err != nil {
			return nil, apperrors.New(apperrors.CodeGameInvalidID, "game id is not a UUID")
		}
		id = parsed
	}
	draws, err := c.store.OpenDraws(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open draws: %w", err)
	}
	return draws, nil
}
