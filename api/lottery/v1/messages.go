// Package lotteryv1 holds the lottery.v1 wire contract: request and response
// messages plus the gRPC service descriptors. Messages travel as JSON under
// the "json" content-subtype.
package lotteryv1

import "time"

// Draw status labels on the wire.
const (
	DrawStatusCreated          = "created"
	DrawStatusOpen             = "open"
	DrawStatusClosed           = "closed"
	DrawStatusDrawn            = "drawn"
	DrawStatusWinsetCalculated = "winset_calculated"
	DrawStatusWinsetConfirmed  = "winset_confirmed"
	DrawStatusFinalized        = "finalized"
	DrawStatusCancelled        = "cancelled"
)

// Board game types on the wire.
const (
	GameTypeNormal = "normal"
	GameTypeSystem = "system"
)

type WinningNumbers struct {
	DrawLevelID string `json:"draw_level_id"`
	Numbers     []int  `json:"numbers"`
}

type Draw struct {
	ID                 int64            `json:"id"`
	GameID             string           `json:"game_id"`
	Status             string           `json:"status"`
	CreatedAt          time.Time        `json:"created_at"`
	ModifiedAt         time.Time        `json:"modified_at"`
	OpenTime           time.Time        `json:"open_time"`
	CloseTime          time.Time        `json:"close_time"`
	DrawTime           *time.Time       `json:"draw_time,omitempty"`
	WinsetCalculatedAt *time.Time       `json:"winset_calculated_at,omitempty"`
	WinsetConfirmedAt  *time.Time       `json:"winset_confirmed_at,omitempty"`
	WinningNumbers     []WinningNumbers `json:"winning_numbers,omitempty"`
}

type Selection struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Values []int  `json:"values"`
}

type Board struct {
	ID         string      `json:"id,omitempty"`
	GameType   string      `json:"game_type"`
	Selections []Selection `json:"selections"`
}

type Wager struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Draws     []Draw    `json:"draws"`
	Boards    []Board   `json:"boards"`
	Stake     string    `json:"stake"`
	Price     string    `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

type GetOpenDrawsRequest struct {
	// GameID limits the listing to one game; empty lists every game.
	GameID string `json:"game_id,omitempty"`
}

type GetOpenDrawsResponse struct {
	Draws []Draw `json:"draws"`
}

type GetDrawRequest struct {
	DrawID int64 `json:"draw_id"`
}

type GetDrawResponse struct {
	Draw Draw `json:"draw"`
}

type PlaceWagerRequest struct {
	UserID  string  `json:"user_id"`
	DrawIDs []int64 `json:"draw_ids"`
	Boards  []Board `json:"boards"`
	// Stake is a decimal string; empty means the game's unit stake.
	Stake string `json:"stake,omitempty"`
}

type PlaceWagerResponse struct {
	Wager Wager `json:"wager"`
}

type GetWagerRequest struct {
	WagerID string `json:"wager_id"`
}

type GetWagerResponse struct {
	Wager Wager `json:"wager"`
}

// LevelNumbers are externally drawn numbers for a level named by its name
// or id.
type LevelNumbers struct {
	Level   string `json:"level"`
	Numbers []int  `json:"numbers"`
}

type ReceiveExternalDrawNumbersRequest struct {
	DrawID         int64          `json:"draw_id"`
	WinningNumbers []LevelNumbers `json:"winning_numbers"`
}

type ReceiveExternalDrawNumbersResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Draw    Draw   `json:"draw"`
}

type TransitionDrawRequest struct {
	DrawID int64  `json:"draw_id"`
	Status string `json:"status"`
}

type TransitionDrawResponse struct {
	Draw Draw `json:"draw"`
}
