package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"mutuelle/pkg/domain"
	txcontext "mutuelle/pkg/platform/tx"
)

// PostgresStore persists audit entries in the audit_entries table. Append
// joins a caller transaction when one is present in context, which is how a
// state transition and its audit entry commit atomically.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO audit_entries (id, timestamp, actor_id, actor_name, action, details, severity, module)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		entry.Timestamp,
		uuid.UUID(entry.ActorID),
		entry.ActorName,
		entry.Action,
		entry.Details,
		string(entry.Severity),
		string(entry.Module),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByModule(ctx context.Context, module Module, limit int) ([]Entry, error) {
	query := `
		SELECT id, timestamp, actor_id, actor_name, action, details, severity, module
		FROM audit_entries
		WHERE module = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, string(module), limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, timestamp, actor_id, actor_name, action, details, severity, module
		FROM audit_entries
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			entry    Entry
			id       uuid.UUID
			actorID  uuid.UUID
			severity string
			module   string
		)
		err := rows.Scan(
			&id,
			&entry.Timestamp,
			&actorID,
			&entry.ActorName,
			&entry.Action,
			&entry.Details,
			&severity,
			&module,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.ID = domain.EntryID(id)
		entry.ActorID = domain.MemberID(actorID)
		entry.Severity = Severity(severity)
		entry.Module = Module(module)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
