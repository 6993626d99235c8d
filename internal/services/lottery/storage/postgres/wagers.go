package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/wager"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
	"github.com/shopspring/decimal"
)

type wagerRow struct {
	UserID    uuid.UUID       `db:"user_id"`
	Stake     decimal.Decimal `db:"stake"`
	Price     decimal.Decimal `db:"price"`
	CreatedAt time.Time       `db:"created_at"`
}

type boardSelectionRow struct {
	BoardID   uuid.UUID      `db:"board_id"`
	GameType  string         `db:"game_type"`
	SelID     uuid.NullUUID  `db:"selection_id"`
	SelName   sql.NullString `db:"selection_name"`
	SelValues pq.Int64Array  `db:"selection_values"`
}

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
			`INSERT INTO wager (id, user_id, stake, price, created_at) VALUES ($1, $2, $3, $4, $5)`,
			w.ID, w.UserID, w.Stake, w.Price, w.CreatedAt.UTC(),
		); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("insert wager: %w", err)
		}
		for i, drawID := range drawIDs {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO draw_wager (draw_id, wager_id, position) VALUES ($1, $2, $3)`,
				drawID, w.ID, i,
			); err != nil {
				return fmt.Errorf("link wager to draw %d: %w", drawID, err)
			}
		}
		for bi, b := range w.Boards {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO board (id, wager_id, position, game_type) VALUES ($1, $2, $3, $4)`,
				b.ID, w.ID, bi, string(b.GameType),
			); err != nil {
				return fmt.Errorf("insert board %d: %w", bi, err)
			}
			for si, sel := range b.Selections {
				if _, err := q.ExecContext(ctx,
					`INSERT INTO selection (id, board_id, position, name, selection_values) VALUES ($1, $2, $3, $4, $5)`,
					sel.ID, b.ID, si, sel.Name, toInt64s(sel.Values),
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
	var row wagerRow
	if err := sqlx.GetContext(ctx, s.q, &row,
		`SELECT user_id, stake, price, created_at FROM wager WHERE id = $1`, id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return wager.Wager{}, storage.ErrNotFound
		}
		return wager.Wager{}, fmt.Errorf("get wager: %w", err)
	}
	w := wager.Wager{
		ID:        id,
		UserID:    row.UserID,
		Stake:     row.Stake,
		Price:     row.Price,
		CreatedAt: row.CreatedAt.UTC(),
	}

	var err error
	if w.Draws, err = s.selectDraws(ctx, "wager draws",
		`SELECT d.id, d.game_id, d.status, d.created_at, d.modified_at, d.open_time, d.close_time,
		        d.draw_time, d.winset_calculated_at, d.winset_confirmed_at
		   FROM draw_wager dw
		   JOIN draw d ON d.id = dw.draw_id
		  WHERE dw.wager_id = $1
		  ORDER BY dw.position ASC`,
		id,
	); err != nil {
		return wager.Wager{}, err
	}
	if w.Boards, err = s.wagerBoards(ctx, id); err != nil {
		return wager.Wager{}, err
	}
	return w, nil
}

func (s *Store) wagerBoards(ctx context.Context, wagerID uuid.UUID) ([]wager.Board, error) {
	var rows []boardSelectionRow
	if err := sqlx.SelectContext(ctx, s.q, &rows,
		`SELECT b.id AS board_id, b.game_type, s.id AS selection_id,
		        s.name AS selection_name, s.selection_values
		   FROM board b
		   LEFT JOIN selection s ON s.board_id = b.id
		  WHERE b.wager_id = $1
		  ORDER BY b.position ASC, s.position ASC`,
		wagerID,
	); err != nil {
		return nil, fmt.Errorf("wager boards: %w", err)
	}

	var boards []wager.Board
	for _, r := range rows {
		if len(boards) == 0 || boards[len(boards)-1].ID != r.BoardID {
			boards = append(boards, wager.Board{
				ID:       r.BoardID,
				WagerID:  wagerID,
				GameType: wager.GameType(r.GameType),
			})
		}
		if !r.SelID.Valid {
			continue
		}
		current := &boards[len(boards)-1]
		current.Selections = append(current.Selections, wager.Selection{
			ID:     r.SelID.UUID,
			Name:   r.SelName.String,
			Values: fromInt64s(r.SelValues),
		})
	}
	return boards, nil
}
