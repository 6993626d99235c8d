// Package wager validates boards against a game's wager classes and prices
// wagers.
package wager

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/shopspring/decimal"
)

// GameType is the way a board is played.
type GameType string

const (
	GameTypeUnspecified GameType = ""
	GameTypeNormal      GameType = "normal"
	GameTypeSystem      GameType = "system"
)

// ParseGameType canonicalizes a game type label.
func ParseGameType(value string) (GameType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "normal", "game_type_normal":
		return GameTypeNormal, true
	case "system", "game_type_system":
		return GameTypeSystem, true
	default:
		return GameTypeUnspecified, false
	}
}

// Selection is the set of values a player picked for one draw level.
type Selection struct {
	ID     uuid.UUID
	Name   string
	Values []int
}

// Board is one playable line of a wager.
type Board struct {
	ID         uuid.UUID
	WagerID    uuid.UUID
	GameType   GameType
	Selections []Selection
}

// Wager is a player's stake on one or more draws. Wagers are append-only.
type Wager struct {
	ID     uuid.UUID
	UserID uuid.UUID
	// Draws are snapshots in the order the player requested them.
	Draws     []draw.Draw
	Boards    []Board
	Stake     decimal.Decimal
	Price     decimal.Decimal
	CreatedAt time.Time
}

// DrawIDs returns the ids of the wager's draws in order.
func (w Wager) DrawIDs() []int64 {
	ids := make([]int64, 0, len(w.Draws))
	for _, d := range w.Draws {
		ids = append(ids, d.ID)
	}
	return ids
}
