package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
)

// UpsertOperator inserts or renames a lottery operator.
func (s *Store) UpsertOperator(ctx context.Context, op storage.Operator) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	name := strings.TrimSpace(op.Name)
	if name == "" {
		return fmt.Errorf("operator name is required")
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO lottery_operator (id, name) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
		op.ID, name,
	)
	if err != nil {
		return fmt.Errorf("upsert operator: %w", err)
	}
	return nil
}

// UpsertGame inserts or updates a game catalog row.
func (s *Store) UpsertGame(ctx context.Context, g storage.Game) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if g.ID == uuid.Nil {
		return fmt.Errorf("game id is required")
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO game (id, lottery_operator_id, name) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET lottery_operator_id = excluded.lottery_operator_id, name = excluded.name`,
		g.ID.String(), g.OperatorID, strings.TrimSpace(g.Name),
	)
	if err != nil {
		return fmt.Errorf("upsert game: %w", err)
	}
	return nil
}
