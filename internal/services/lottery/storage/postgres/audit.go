package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
)

type auditRow struct {
	ID         uuid.UUID `db:"id"`
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	Action     string    `db:"action"`
	Data       []byte    `db:"data"`
	CreatedAt  time.Time `db:"created_at"`
}

// RecordAuditEntry appends one audit entry.
func (s *Store) RecordAuditEntry(ctx context.Context, entry storage.AuditEntry) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if strings.TrimSpace(entry.EntityType) == "" || strings.TrimSpace(entry.Action) == "" {
		return fmt.Errorf("audit entry needs entity type and action")
	}
	data := entry.Data
	if data == nil {
		data = []byte("{}")
	}
	if _, err := s.q.ExecContext(ctx,
		`INSERT INTO audit_log (id, entity_type, entity_id, action, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.EntityType, entry.EntityID, entry.Action, string(data), entry.CreatedAt.UTC(),
	); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// ListAuditEntries returns entries for one entity, oldest first.
func (s *Store) ListAuditEntries(ctx context.Context, entityType, entityID string) ([]storage.AuditEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var rows []auditRow
	if err := sqlx.SelectContext(ctx, s.q, &rows,
		`SELECT id, entity_type, entity_id, action, data, created_at
		   FROM audit_log
		  WHERE entity_type = $1 AND entity_id = $2
		  ORDER BY created_at ASC, id ASC`,
		entityType, entityID,
	); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	entries := make([]storage.AuditEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, storage.AuditEntry{
			ID:         r.ID,
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			Action:     r.Action,
			Data:       r.Data,
			CreatedAt:  r.CreatedAt.UTC(),
		})
	}
	return entries, nil
}
