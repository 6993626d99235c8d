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
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
)

const drawColumns = `id, game_id, status, created_at, modified_at, open_time, close_time,
	draw_time, winset_calculated_at, winset_confirmed_at`

type drawRow struct {
	ID                 int64        `db:"id"`
	GameID             uuid.UUID    `db:"game_id"`
	Status             string       `db:"status"`
	CreatedAt          time.Time    `db:"created_at"`
	ModifiedAt         time.Time    `db:"modified_at"`
	OpenTime           time.Time    `db:"open_time"`
	CloseTime          time.Time    `db:"close_time"`
	DrawTime           sql.NullTime `db:"draw_time"`
	WinsetCalculatedAt sql.NullTime `db:"winset_calculated_at"`
	WinsetConfirmedAt  sql.NullTime `db:"winset_confirmed_at"`
}

func (r drawRow) toDraw() draw.Draw {
	return draw.Draw{
		ID:                 r.ID,
		GameID:             r.GameID,
		Status:             draw.Status(r.Status),
		CreatedAt:          r.CreatedAt.UTC(),
		ModifiedAt:         r.ModifiedAt.UTC(),
		OpenTime:           r.OpenTime.UTC(),
		CloseTime:          r.CloseTime.UTC(),
		DrawTime:           fromNullTime(r.DrawTime),
		WinsetCalculatedAt: fromNullTime(r.WinsetCalculatedAt),
		WinsetConfirmedAt:  fromNullTime(r.WinsetConfirmedAt),
	}
}

type winningRow struct {
	DrawLevelID uuid.UUID     `db:"draw_level_id"`
	Numbers     pq.Int64Array `db:"numbers"`
}

// ActiveDraws returns Created and Open draws of a game. Inside a
// transaction the rows are share-locked until commit.
func (s *Store) ActiveDraws(ctx context.Context, gameID uuid.UUID) ([]draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + drawColumns + ` FROM draw
		  WHERE game_id = $1 AND status = ANY($2)
		  ORDER BY id ASC`
	if s.inTx {
		query += ` FOR SHARE`
	}
	return s.selectDraws(ctx, "active draws", query,
		gameID, pq.Array([]string{string(draw.StatusCreated), string(draw.StatusOpen)}),
	)
}

// DrawsReadyToOpen returns Created draws whose open time has passed.
func (s *Store) DrawsReadyToOpen(ctx context.Context, gameID uuid.UUID, now time.Time) ([]draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.selectDraws(ctx, "draws ready to open",
		`SELECT `+drawColumns+` FROM draw
		  WHERE game_id = $1 AND status = $2 AND open_time <= $3
		  ORDER BY id ASC`,
		gameID, string(draw.StatusCreated), now.UTC(),
	)
}

// OpenDraws returns Open draws, optionally restricted to one game.
func (s *Store) OpenDraws(ctx context.Context, gameID uuid.UUID) ([]draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if gameID == uuid.Nil {
		return s.selectDraws(ctx, "open draws",
			`SELECT `+drawColumns+` FROM draw WHERE status = $1 ORDER BY id ASC`,
			string(draw.StatusOpen),
		)
	}
	return s.selectDraws(ctx, "open draws",
		`SELECT `+drawColumns+` FROM draw WHERE game_id = $1 AND status = $2 ORDER BY id ASC`,
		gameID, string(draw.StatusOpen),
	)
}

// PendingDraws returns Closed draws of a game.
func (s *Store) PendingDraws(ctx context.Context, gameID uuid.UUID) ([]draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.selectDraws(ctx, "pending draws",
		`SELECT `+drawColumns+` FROM draw WHERE game_id = $1 AND status = $2 ORDER BY id ASC`,
		gameID, string(draw.StatusClosed),
	)
}

// DrawsDueToClose returns Open draws whose close time has passed.
func (s *Store) DrawsDueToClose(ctx context.Context, gameID uuid.UUID, now time.Time) ([]draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.selectDraws(ctx, "draws due to close",
		`SELECT `+drawColumns+` FROM draw
		  WHERE game_id = $1 AND status = $2 AND close_time <= $3
		  ORDER BY id ASC`,
		gameID, string(draw.StatusOpen), now.UTC(),
	)
}

// DrawsDueToDraw returns Closed draws whose scheduled draw time has passed.
func (s *Store) DrawsDueToDraw(ctx context.Context, gameID uuid.UUID, now time.Time) ([]draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.selectDraws(ctx, "draws due to draw",
		`SELECT `+drawColumns+` FROM draw
		  WHERE game_id = $1 AND status = $2 AND draw_time IS NOT NULL AND draw_time <= $3
		  ORDER BY id ASC`,
		gameID, string(draw.StatusClosed), now.UTC(),
	)
}

// InsertDraw stores a new draw and returns the generated id.
func (s *Store) InsertDraw(ctx context.Context, d draw.Draw) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if d.GameID == uuid.Nil {
		return 0, fmt.Errorf("game id is required")
	}
	if d.CloseTime.Before(d.OpenTime) {
		return 0, fmt.Errorf("close time precedes open time")
	}
	var id int64
	err := s.q.QueryRowxContext(ctx,
		`INSERT INTO draw (
		   game_id, status, created_at, modified_at, open_time, close_time,
		   draw_time, winset_calculated_at, winset_confirmed_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		d.GameID,
		string(d.Status),
		d.CreatedAt.UTC(),
		d.ModifiedAt.UTC(),
		d.OpenTime.UTC(),
		d.CloseTime.UTC(),
		nullTime(d.DrawTime),
		nullTime(d.WinsetCalculatedAt),
		nullTime(d.WinsetConfirmedAt),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert draw: %w", err)
	}
	return id, nil
}

// UpdateDrawStatus writes the lifecycle fields of d.
func (s *Store) UpdateDrawStatus(ctx context.Context, d draw.Draw) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx,
		`UPDATE draw
		    SET status = $1, modified_at = $2, draw_time = $3,
		        winset_calculated_at = $4, winset_confirmed_at = $5
		  WHERE id = $6`,
		string(d.Status),
		d.ModifiedAt.UTC(),
		nullTime(d.DrawTime),
		nullTime(d.WinsetCalculatedAt),
		nullTime(d.WinsetConfirmedAt),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("update draw %d: %w", d.ID, err)
	}
	return requireRow(res)
}

// RecordDrawResult writes the drawn state, winning numbers and seed of d.
func (s *Store) RecordDrawResult(ctx context.Context, d draw.Draw, seed []byte) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.InTx(ctx, func(ctx context.Context, tx storage.Store) error {
		txs := tx.(*Store)
		if err := txs.UpdateDrawStatus(ctx, d); err != nil {
			return err
		}
		if seed != nil {
			if _, err := txs.q.ExecContext(ctx, `UPDATE draw SET seed = $1 WHERE id = $2`, seed, d.ID); err != nil {
				return fmt.Errorf("record draw seed %d: %w", d.ID, err)
			}
		}
		if _, err := txs.q.ExecContext(ctx, `DELETE FROM winning_numbers WHERE draw_id = $1`, d.ID); err != nil {
			return fmt.Errorf("clear winning numbers %d: %w", d.ID, err)
		}
		for i, ws := range d.WinningNumbers {
			if _, err := txs.q.ExecContext(ctx,
				`INSERT INTO winning_numbers (draw_id, draw_level_id, position, numbers) VALUES ($1, $2, $3, $4)`,
				d.ID, ws.DrawLevelID, i, toInt64s(ws.Numbers),
			); err != nil {
				return fmt.Errorf("insert winning numbers %d: %w", d.ID, err)
			}
		}
		return nil
	})
}

// GetDraw returns one draw with its winning numbers.
func (s *Store) GetDraw(ctx context.Context, id int64) (draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return draw.Draw{}, err
	}
	var row drawRow
	if err := sqlx.GetContext(ctx, s.q, &row, `SELECT `+drawColumns+` FROM draw WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return draw.Draw{}, storage.ErrNotFound
		}
		return draw.Draw{}, fmt.Errorf("get draw %d: %w", id, err)
	}
	d := row.toDraw()

	var winning []winningRow
	if err := sqlx.SelectContext(ctx, s.q, &winning,
		`SELECT draw_level_id, numbers FROM winning_numbers WHERE draw_id = $1 ORDER BY position ASC`, id,
	); err != nil {
		return draw.Draw{}, fmt.Errorf("winning numbers %d: %w", id, err)
	}
	for _, w := range winning {
		d.WinningNumbers = append(d.WinningNumbers, draw.WinningNumbers{
			DrawLevelID: w.DrawLevelID,
			Numbers:     fromInt64s(w.Numbers),
		})
	}
	return d, nil
}

func (s *Store) selectDraws(ctx context.Context, label, query string, args ...any) ([]draw.Draw, error) {
	var rows []drawRow
	if err := sqlx.SelectContext(ctx, s.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	draws := make([]draw.Draw, 0, len(rows))
	for _, r := range rows {
		draws = append(draws, r.toDraw())
	}
	return draws, nil
}
