package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
)

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
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO audit_log (id, entity_type, entity_id, action, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.EntityType, entry.EntityID, entry.Action, string(data), toMillis(entry.CreatedAt),
	)
	if err != nil {
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
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, entity_type, entity_id, action, data, created_at
		   FROM audit_log
		  WHERE entity_type = ? AND entity_id = ?
		  ORDER BY created_at ASC, rowid ASC`,
		entityType, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []storage.AuditEntry
	for rows.Next() {
		var (
			entry     storage.AuditEntry
			id, data  string
			createdAt int64
		)
		if err := rows.Scan(&id, &entry.EntityType, &entry.EntityID, &entry.Action, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("list audit entries: %w", err)
		}
		if entry.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("audit entry id: %w", err)
		}
		entry.Data = []byte(data)
		entry.CreatedAt = fromMillis(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
