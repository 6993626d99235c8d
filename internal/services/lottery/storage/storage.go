// Package storage defines persistence contracts for lottery draws, wagers and
// the audit trail.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/wager"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Operator is the persisted lottery operator row.
type Operator struct {
	ID   int64
	Name string
}

// Game is the persisted game catalog row.
type Game struct {
	ID         uuid.UUID
	OperatorID int64
	Name       string
}

// AuditEntry is one append-only record of something that happened to an
// entity.
type AuditEntry struct {
	ID         uuid.UUID
	EntityType string
	EntityID   string
	Action     string
	Data       []byte
	CreatedAt  time.Time
}

// DrawStore persists draws and their results.
type DrawStore interface {
	// ActiveDraws returns Created and Open draws of a game ordered by id.
	ActiveDraws(ctx context.Context, gameID uuid.UUID) ([]draw.Draw, error)
	// DrawsReadyToOpen returns Created draws whose open time is at or before now.
	DrawsReadyToOpen(ctx context.Context, gameID uuid.UUID, now time.Time) ([]draw.Draw, error)
	// OpenDraws returns Open draws, for every game when gameID is uuid.Nil.
	OpenDraws(ctx context.Context, gameID uuid.UUID) ([]draw.Draw, error)
	// PendingDraws returns Closed draws that have not been drawn yet.
	PendingDraws(ctx context.Context, gameID uuid.UUID) ([]draw.Draw, error)
	// DrawsDueToClose returns Open draws whose close time is at or before now.
	DrawsDueToClose(ctx context.Context, gameID uuid.UUID, now time.Time) ([]draw.Draw, error)
	// DrawsDueToDraw returns Closed draws whose draw time is at or before now.
	DrawsDueToDraw(ctx context.Context, gameID uuid.UUID, now time.Time) ([]draw.Draw, error)
	// InsertDraw stores a new draw and returns its id.
	InsertDraw(ctx context.Context, d draw.Draw) (int64, error)
	// UpdateDrawStatus writes the status and lifecycle timestamps of d.
	UpdateDrawStatus(ctx context.Context, d draw.Draw) error
	// RecordDrawResult writes the status, timestamps, winning numbers and
	// seed of a drawn draw.
	RecordDrawResult(ctx context.Context, d draw.Draw, seed []byte) error
	// GetDraw returns one draw with its winning numbers.
	GetDraw(ctx context.Context, id int64) (draw.Draw, error)
}

// WagerStore persists wagers.
type WagerStore interface {
	// InsertWager writes the wager, its boards and selections, and links it
	// to drawIDs in order.
	InsertWager(ctx context.Context, w wager.Wager, drawIDs []int64) error
	// GetWager returns a wager with boards, selections and draw snapshots.
	GetWager(ctx context.Context, id uuid.UUID) (wager.Wager, error)
}

// CatalogStore persists operator and game rows.
type CatalogStore interface {
	UpsertOperator(ctx context.Context, op Operator) error
	UpsertGame(ctx context.Context, g Game) error
}

// AuditStore persists audit entries.
type AuditStore interface {
	RecordAuditEntry(ctx context.Context, entry AuditEntry) error
	// ListAuditEntries returns entries for an entity, oldest first.
	ListAuditEntries(ctx context.Context, entityType, entityID string) ([]AuditEntry, error)
}

// Store is the full persistence gateway.
type Store interface {
	DrawStore
	WagerStore
	CatalogStore
	AuditStore
}

// Transactor runs fn inside one transaction. The Store passed to fn is bound
// to the transaction; returning an error rolls everything back.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

// TxStore is a Store that can also open transactions.
type TxStore interface {
	Store
	Transactor
}
