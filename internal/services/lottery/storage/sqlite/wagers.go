package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/wager"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
	"github.com/shopspring/decimal"
)

// InsertWager writes a wager with its boards, selections and draw links in
// one transaction.
func (s *Store) InsertWager(ctx context.Context, w wager.Wager, drawIDs []int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if w.ID == uuid.Nil {
		return fmt.Errorf("wager id is required")
	}
	return s.InTx(ctx, func(ctx context.Context, tx storage.Store) error {
		q := tx.(*Store).q
		if _, err := q.ExecContext(ctx,
			`INSERT INTO wager (id, user_id, stake, price, created_at) VALUES (?, ?, ?, ?, ?)`,
			w.ID.String(), w.UserID.String(), w.Stake.String(), w.Price.String(), toMillis(w.CreatedAt),
		); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("insert wager: %w", err)
		}
		for i, drawID := range drawIDs {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO draw_wager (draw_id, wager_id, position) VALUES (?, ?, ?)`,
				drawID, w.ID.String(), i,
			); err != nil {
				return fmt.Errorf("link wager to draw %d: %w", drawID, err)
			}
		}
		for bi, b := range w.Boards {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO board (id, wager_id, position, game_type) VALUES (?, ?, ?, ?)`,
				b.ID.String(), w.ID.String(), bi, string(b.GameType),
			); err != nil {
				return fmt.Errorf("insert board %d: %w", bi, err)
			}
			for si, sel := range b.Selections {
				values, err := json.Marshal(sel.Values)
				if err != nil {
					return fmt.Errorf("encode selection values: %w", err)
				}
				if _, err := q.ExecContext(ctx,
					`INSERT INTO selection (id, board_id, position, name, selection_values) VALUES (?, ?, ?, ?, ?)`,
					sel.ID.String(), b.ID.String(), si, sel.Name, string(values),
				); err != nil {
					return fmt.Errorf("insert selection %s: %w", sel.Name, err)
				}
			}
		}
		return nil
	})
}

// GetWager returns a wager with its boards, selections and draws.
func (s *Store) GetWager(ctx context.Context, id uuid.UUID) (wager.Wager, error) {
	if err := s.ready(ctx); err != nil {
		return wager.Wager{}, err
	}
	var (
		w                    wager.Wager
		userID, stake, price string
		createdAt            int64
	)
	err := s.q.QueryRowContext(ctx,
		`SELECT user_id, stake, price, created_at FROM wager WHERE id = ?`, id.String(),
	).Scan(&userID, &stake, &price, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return wager.Wager{}, storage.ErrNotFound
		}
		return wager.Wager{}, fmt.Errorf("get wager: %w", err)
	}
	w.ID = id
	if w.UserID, err = uuid.Parse(userID); err != nil {
		return wager.Wager{}, fmt.Errorf("wager user id: %w", err)
	}
	if w.Stake, err = decimal.NewFromString(stake); err != nil {
		return wager.Wager{}, fmt.Errorf("wager stake: %w", err)
	}
	if w.Price, err = decimal.NewFromString(price); err != nil {
		return wager.Wager{}, fmt.Errorf("wager price: %w", err)
	}
	w.CreatedAt = fromMillis(createdAt)

	if w.Draws, err = s.wagerDraws(ctx, id); err != nil {
		return wager.Wager{}, err
	}
	if w.Boards, err = s.wagerBoards(ctx, id); err != nil {
		return wager.Wager{}, err
	}
	return w, nil
}

func (s *Store) wagerDraws(ctx context.Context, wagerID uuid.UUID) ([]draw.Draw, error) {
	return s.queryDraws(ctx, "wager draws",
		`SELECT d.id, d.game_id, d.status, d.created_at, d.modified_at, d.open_time, d.close_time,
		        d.draw_time, d.winset_calculated_at, d.winset_confirmed_at
		   FROM draw_wager dw
		   JOIN draw d ON d.id = dw.draw_id
		  WHERE dw.wager_id = ?
		  ORDER BY dw.position ASC`,
		wagerID.String(),
	)
}

func (s *Store) wagerBoards(ctx context.Context, wagerID uuid.UUID) ([]wager.Board, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT b.id, b.game_type, s.id, s.name, s.selection_values
		   FROM board b
		   LEFT JOIN selection s ON s.board_id = b.id
		  WHERE b.wager_id = ?
		  ORDER BY b.position ASC, s.position ASC`,
		wagerID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("wager boards: %w", err)
	}
	defer rows.Close()

	var boards []wager.Board
	for rows.Next() {
		var (
			boardID, gameType         string
			selID, selName, selValues sql.NullString
		)
		if err := rows.Scan(&boardID, &gameType, &selID, &selName, &selValues); err != nil {
			return nil, fmt.Errorf("wager boards: %w", err)
		}
		parsedBoardID, err := uuid.Parse(boardID)
		if err != nil {
			return nil, fmt.Errorf("board id: %w", err)
		}
		if len(boards) == 0 || boards[len(boards)-1].ID != parsedBoardID {
			boards = append(boards, wager.Board{
				ID:       parsedBoardID,
				WagerID:  wagerID,
				GameType: wager.GameType(gameType),
			})
		}
		if !selID.Valid {
			continue
		}
		sel := wager.Selection{Name: selName.String}
		if sel.ID, err = uuid.Parse(selID.String); err != nil {
			return nil, fmt.Errorf("selection id: %w", err)
		}
		if err := json.Unmarshal([]byte(selValues.String), &sel.Values); err != nil {
			return nil, fmt.Errorf("selection values: %w", err)
		}
		current := &boards[len(boards)-1]
		current.Selections = append(current.Selections, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wager boards: %w", err)
	}
	return boards, nil
}
