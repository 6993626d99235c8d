// Package events publishes draw and wager lifecycle events to the audit log,
// the process log and an optional AMQP exchange.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/lottery/internal/platform/timeouts"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/wager"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
	"go.uber.org/zap"
)

// Event types.
const (
	TypeDrawCreated      = "draw.created"
	TypeDrawOpened       = "draw.opened"
	TypeDrawClosed       = "draw.closed"
	TypeDrawDrawn        = "draw.drawn"
	TypeDrawTransitioned = "draw.transitioned"
	TypeWagerPlaced      = "wager.placed"
)

// Entity types.
const (
	EntityDraw  = "draw"
	EntityWager = "wager"
)

// Event is one thing that happened to a draw or a wager.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type drawData struct {
	GameID         string                `json:"game_id"`
	Status         string                `json:"status"`
	OpenTime       time.Time             `json:"open_time"`
	CloseTime      time.Time             `json:"close_time"`
	DrawTime       *time.Time            `json:"draw_time,omitempty"`
	WinningNumbers []draw.WinningNumbers `json:"winning_numbers,omitempty"`
}

// ForDraw builds an event describing the current state of d.
func ForDraw(eventType string, d draw.Draw, now time.Time) Event {
	data, _ := json.Marshal(drawData{
		GameID:         d.GameID.String(),
		Status:         string(d.Status),
		OpenTime:       d.OpenTime,
		CloseTime:      d.CloseTime,
		DrawTime:       d.DrawTime,
		WinningNumbers: d.WinningNumbers,
	})
	return Event{
		ID:         uuid.New(),
		EntityType: EntityDraw,
		EntityID:   strconv.FormatInt(d.ID, 10),
		Type:       eventType,
		Data:       data,
		CreatedAt:  now.UTC(),
	}
}

type wagerData struct {
	UserID  string  `json:"user_id"`
	DrawIDs []int64 `json:"draw_ids"`
	Boards  int     `json:"boards"`
	Stake   string  `json:"stake"`
	Price   string  `json:"price"`
}

// ForWager builds a wager.placed event.
func ForWager(w wager.Wager, now time.Time) Event {
	data, _ := json.Marshal(wagerData{
		UserID:  w.UserID.String(),
		DrawIDs: w.DrawIDs(),
		Boards:  len(w.Boards),
		Stake:   w.Stake.String(),
		Price:   w.Price.String(),
	})
	return Event{
		ID:         uuid.New(),
		EntityType: EntityWager,
		EntityID:   w.ID.String(),
		Type:       TypeWagerPlaced,
		Data:       data,
		CreatedAt:  now.UTC(),
	}
}

// Emit publishes event and logs a failure instead of returning it.
func Emit(ctx context.Context, logger *zap.Logger, publisher Publisher, event Event) {
	if publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.EventPublish)
	defer cancel()
	if err := publisher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("publish event",
			zap.String("event_type", event.Type),
			zap.String("entity_id", event.EntityID),
			zap.Error(err),
		)
	}
}

// Nop discards events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher writes one log line per event.
type LogPublisher struct {
	Logger *zap.Logger
}

// Publish implements Publisher.
func (p LogPublisher) Publish(_ context.Context, event Event) error {
	if p.Logger == nil {
		return nil
	}
	p.Logger.Info("lottery event",
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", event.Type),
		zap.String("entity_type", event.EntityType),
		zap.String("entity_id", event.EntityID),
	)
	return nil
}

// StorePublisher appends events to the audit log.
type StorePublisher struct {
	Store storage.AuditStore
}

// Publish implements Publisher.
func (p StorePublisher) Publish(ctx context.Context, event Event) error {
	if p.Store == nil {
		return nil
	}
	return p.Store.RecordAuditEntry(ctx, storage.AuditEntry{
		ID:         event.ID,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Action:     event.Type,
		Data:       event.Data,
		CreatedAt:  event.CreatedAt,
	})
}
