package synclog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vkraskov/contactsync/internal/common"
	"github.com/vkraskov/contactsync/internal/dbx"
	"github.com/vkraskov/contactsync/internal/server/models"
)

// SQLiteRepository implements the sync log store for single-node deployments
// and tests.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, e *models.SyncLogEntry) error {
	payload, conflict, err := marshalEntry(e)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sync_log (id, user_id, operation, entity_id, entity_type, status, timestamp,
			synced_at, payload, conflict_data, retry_count, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Operation, e.EntityID, e.EntityType, e.Status, e.Timestamp,
		e.SyncedAt, payload, conflict, e.RetryCount, e.LastError)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, userID string, id string) (*models.SyncLogEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM sync_log WHERE id = ? AND user_id = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) listByStatus(ctx context.Context, userID string, status models.SyncStatus) ([]*models.SyncLogEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM sync_log
		WHERE user_id = ? AND status = ? ORDER BY timestamp ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to select sync log entries: %w", err)
	}
	defer rows.Close()

	var result []*models.SyncLogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context, userID string) ([]*models.SyncLogEntry, error) {
	return r.listByStatus(ctx, userID, models.StatusPending)
}

func (r *SQLiteRepository) ListByStatus(ctx context.Context, userID string, status models.SyncStatus) ([]*models.SyncLogEntry, error) {
	return r.listByStatus(ctx, userID, status)
}

func (r *SQLiteRepository) Save(ctx context.Context, e *models.SyncLogEntry) error {
	payload, conflict, err := marshalEntry(e)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sync_log (id, user_id, operation, entity_id, entity_type, status, timestamp,
			synced_at, payload, conflict_data, retry_count, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET
			status = excluded.status,
			entity_id = excluded.entity_id,
			synced_at = excluded.synced_at,
			payload = excluded.payload,
			conflict_data = excluded.conflict_data,
			retry_count = excluded.retry_count,
			last_error = excluded.last_error
			WHERE sync_log.user_id = excluded.user_id
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Operation, e.EntityID, e.EntityType, e.Status, e.Timestamp,
		e.SyncedAt, payload, conflict, e.RetryCount, e.LastError)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UsersWithPending(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT user_id FROM sync_log WHERE status = ?`
	rows, err := r.db.QueryContext(ctx, query, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to select users with pending entries: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		result = append(result, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
