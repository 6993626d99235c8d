package lottery

import (
	"time"

	lotteryv1 "github.com/louisbranch/lottery/api/lottery/v1"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/wager"
)

// DrawToWire converts a draw to its lottery.v1 message.
func DrawToWire(d draw.Draw) lotteryv1.Draw {
	out := lotteryv1.Draw{
		ID:                 d.ID,
		GameID:             d.GameID.String(),
		Status:             string(d.Status),
		CreatedAt:          d.CreatedAt.UTC(),
		ModifiedAt:         d.ModifiedAt.UTC(),
		OpenTime:           d.OpenTime.UTC(),
		CloseTime:          d.CloseTime.UTC(),
		DrawTime:           utcPtr(d.DrawTime),
		WinsetCalculatedAt: utcPtr(d.WinsetCalculatedAt),
		WinsetConfirmedAt:  utcPtr(d.WinsetConfirmedAt),
	}
	for _, ws := range d.WinningNumbers {
		out.WinningNumbers = append(out.WinningNumbers, lotteryv1.WinningNumbers{
			DrawLevelID: ws.DrawLevelID.String(),
			Numbers:     append([]int(nil), ws.Numbers...),
		})
	}
	return out
}

// WagerToWire converts a wager to its lottery.v1 message.
func WagerToWire(w wager.Wager) lotteryv1.Wager {
	out := lotteryv1.Wager{
		ID:        w.ID.String(),
		UserID:    w.UserID.String(),
		Draws:     make([]lotteryv1.Draw, 0, len(w.Draws)),
		Boards:    make([]lotteryv1.Board, 0, len(w.Boards)),
		Stake:     w.Stake.StringFixed(2),
		Price:     w.Price.StringFixed(2),
		CreatedAt: w.CreatedAt.UTC(),
	}
	for _, d := range w.Draws {
		out.Draws = append(out.Draws, DrawToWire(d))
	}
	for _, b := range w.Boards {
		board := lotteryv1.Board{
			ID:         b.ID.String(),
			GameType:   string(b.GameType),
			Selections: make([]lotteryv1.Selection, 0, len(b.Selections)),
		}
		for _, sel := range b.Selections {
			board.Selections = append(board.Selections, lotteryv1.Selection{
				ID:     sel.ID.String(),
				Name:   sel.Name,
				Values: append([]int(nil), sel.Values...),
			})
		}
		out.Boards = append(out.Boards, board)
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
