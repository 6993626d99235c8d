package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
)

const drawColumns = `id, game_id, status, created_at, modified_at, open_time, close_time,
	draw_time, winset_calculated_at, winset_confirmed_at`

// ActiveDraws returns Created and Open draws of a game.
func (s *Store) ActiveDraws(ctx context.Context, gameID uuid.UUID) ([]draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.queryDraws(ctx, "active draws",
		`SELECT `+drawColumns+` FROM draw
		  WHERE game_id = ? AND status IN (?, ?)
		  ORDER BY id ASC`,
		gameID.String(), string(draw.StatusCreated), string(draw.StatusOpen),
	)
}

// DrawsReadyToOpen returns Created draws whose open time has passed.
func (s *Store) DrawsReadyToOpen(ctx context.Context, gameID uuid.UUID, now time.Time) ([]draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.queryDraws(ctx, "draws ready to open",
		`SELECT `+drawColumns+` FROM draw
		  WHERE game_id = ? AND status = ? AND open_time <= ?
		  ORDER BY id ASC`,
		gameID.String(), string(draw.StatusCreated), toMillis(now),
	)
}

// OpenDraws returns Open draws, optionally restricted to one game.
func (s *Store) OpenDraws(ctx context.Context, gameID uuid.UUID) ([]draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if gameID == uuid.Nil {
		return s.queryDraws(ctx, "open draws",
			`SELECT `+drawColumns+` FROM draw WHERE status = ? ORDER BY id ASC`,
			string(draw.StatusOpen),
		)
	}
	return s.queryDraws(ctx, "open draws",
		`SELECT `+drawColumns+` FROM draw WHERE game_id = ? AND status = ? ORDER BY id ASC`,
		gameID.String(), string(draw.StatusOpen),
	)
}

// PendingDraws returns Closed draws of a game.
func (s *Store) PendingDraws(ctx context.Context, gameID uuid.UUID) ([]draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.queryDraws(ctx, "pending draws",
		`SELECT `+drawColumns+` FROM draw WHERE game_id = ? AND status = ? ORDER BY id ASC`,
		gameID.String(), string(draw.StatusClosed),
	)
}

// DrawsDueToClose returns Open draws whose close time has passed.
func (s *Store) DrawsDueToClose(ctx context.Context, gameID uuid.UUID, now time.Time) ([]draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.queryDraws(ctx, "draws due to close",
		`SELECT `+drawColumns+` FROM draw
		  WHERE game_id = ? AND status = ? AND close_time <= ?
		  ORDER BY id ASC`,
		gameID.String(), string(draw.StatusOpen), toMillis(now),
	)
}

// DrawsDueToDraw returns Closed draws whose scheduled draw time has passed.
func (s *Store) DrawsDueToDraw(ctx context.Context, gameID uuid.UUID, now time.Time) ([]draw.Draw, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.queryDraws(ctx, "draws due to draw",
		`SELECT `+drawColumns+` FROM draw
		  WHERE game_id = ? AND status = ? AND draw_time IS NOT NULL AND draw_time <= ?
		  ORDER BY id ASC`,
		gameID.String(), string(draw.StatusClosed), toMillis(now),
	)
}

// InsertDraw stores a new draw.
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
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO draw (
		   game_id, status, created_at, modified_at, open_time, close_time,
		   draw_time, winset_calculated_at, winset_confirmed_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.GameID.String(),
		string(d.Status),
		toMillis(d.CreatedAt),
		toMillis(d.ModifiedAt),
		toMillis(d.OpenTime),
		toMillis(d.CloseTime),
		toNullMillis(d.DrawTime),
		toNullMillis(d.WinsetCalculatedAt),
		toNullMillis(d.WinsetConfirmedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert draw: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert draw id: %w", err)
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
		    SET status = ?, modified_at = ?, draw_time = ?,
		        winset_calculated_at = ?, winset_confirmed_at = ?
		  WHERE id = ?`,
		string(d.Status),
		toMillis(d.ModifiedAt),
		toNullMillis(d.DrawTime),
		toNullMillis(d.WinsetCalculatedAt),
		toNullMillis(d.WinsetConfirmedAt),
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
			if _, err := txs.q.ExecContext(ctx, `UPDATE draw SET seed = ? WHERE id = ?`, seed, d.ID); err != nil {
				return fmt.Errorf("record draw seed %d: %w", d.ID, err)
			}
		}
		if _, err := txs.q.ExecContext(ctx, `DELETE FROM winning_numbers WHERE draw_id = ?`, d.ID); err != nil {
			return fmt.Errorf("clear winning numbers %d: %w", d.ID, err)
		}
		for i, ws := range d.WinningNumbers {
			numbers, err := json.Marshal(ws.Numbers)
			if err != nil {
				return fmt.Errorf("encode winning numbers: %w", err)
			}
			if _, err := txs.q.ExecContext(ctx,
				`INSERT INTO winning_numbers (draw_id, draw_level_id, position, numbers) VALUES (?, ?, ?, ?)`,
				d.ID, ws.DrawLevelID.String(), i, string(numbers),
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
	row := s.q.QueryRowContext(ctx, `SELECT `+drawColumns+` FROM draw WHERE id = ?`, id)
	d, err := scanDraw(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return draw.Draw{}, storage.ErrNotFound
		}
		return draw.Draw{}, fmt.Errorf("get draw %d: %w", id, err)
	}
	d.WinningNumbers, err = s.winningNumbers(ctx, id)
	if err != nil {
		return draw.Draw{}, err
	}
	return d, nil
}

func (s *Store) winningNumbers(ctx context.Context, drawID int64) ([]draw.WinningNumbers, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT draw_level_id, numbers FROM winning_numbers WHERE draw_id = ? ORDER BY position ASC`,
		drawID,
	)
	if err != nil {
		return nil, fmt.Errorf("winning numbers %d: %w", drawID, err)
	}
	defer rows.Close()

	var result []draw.WinningNumbers
	for rows.Next() {
		var levelID, numbers string
		if err := rows.Scan(&levelID, &numbers); err != nil {
			return nil, fmt.Errorf("winning numbers %d: %w", drawID, err)
		}
		ws := draw.WinningNumbers{}
		if ws.DrawLevelID, err = uuid.Parse(levelID); err != nil {
			return nil, fmt.Errorf("winning numbers %d level id: %w", drawID, err)
		}
		if err := json.Unmarshal([]byte(numbers), &ws.Numbers); err != nil {
			return nil, fmt.Errorf("winning numbers %d decode: %w", drawID, err)
		}
		result = append(result, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("winning numbers %d: %w", drawID, err)
	}
	return result, nil
}

func (s *Store) queryDraws(ctx context.Context, label, query string, args ...any) ([]draw.Draw, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	defer rows.Close()

	var draws []draw.Draw
	for rows.Next() {
		d, err := scanDraw(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		draws = append(draws, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return draws, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraw(row rowScanner) (draw.Draw, error) {
	var (
		d                                          draw.Draw
		gameID, status                             string
		createdAt, modifiedAt, openTime, closeTime int64
		drawTime, calculatedAt, confirmedAt        sql.NullInt64
	)
	if err := row.Scan(
		&d.ID, &gameID, &status, &createdAt, &modifiedAt, &openTime, &closeTime,
		&drawTime, &calculatedAt, &confirmedAt,
	); err != nil {
		return draw.Draw{}, err
	}
	parsedGameID, err := uuid.Parse(gameID)
	if err != nil {
		return draw.Draw{}, fmt.Errorf("draw %d game id: %w", d.ID, err)
	}
	d.GameID = parsedGameID
	d.Status = draw.Status(status)
	d.CreatedAt = fromMillis(createdAt)
	d.ModifiedAt = fromMillis(modifiedAt)
	d.OpenTime = fromMillis(openTime)
	d.CloseTime = fromMillis(closeTime)
	d.DrawTime = fromNullMillis(drawTime)
	d.WinsetCalculatedAt = fromNullMillis(calculatedAt)
	d.WinsetConfirmedAt = fromNullMillis(confirmedAt)
	return d, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
