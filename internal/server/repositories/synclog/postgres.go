package synclog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vkraskov/contactsync/internal/common"
	"github.com/vkraskov/contactsync/internal/dbx"
	"github.com/vkraskov/contactsync/internal/server/models"
)

const entryColumns = `id, user_id, operation, entity_id, entity_type, status, timestamp,
		synced_at, payload, conflict_data, retry_count, last_error`

// PostgresRepository implements the sync log store over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func marshalEntry(e *models.SyncLogEntry) (payload, conflict []byte, err error) {
	if e.Payload != nil {
		if payload, err = json.Marshal(e.Payload); err != nil {
			return nil, nil, fmt.Errorf("marshal payload: %w", err)
		}
	}
	if e.Conflict != nil {
		if conflict, err = json.Marshal(e.Conflict); err != nil {
			return nil, nil, fmt.Errorf("marshal conflict data: %w", err)
		}
	}
	return payload, conflict, nil
}

func scanEntry(row interface{ Scan(...any) error }) (*models.SyncLogEntry, error) {
	var e models.SyncLogEntry
	var syncedAt sql.NullTime
	var payload, conflict []byte
	err := row.Scan(
		&e.ID, &e.UserID, &e.Operation, &e.EntityID, &e.EntityType, &e.Status,
		&e.Timestamp, &syncedAt, &payload, &conflict, &e.RetryCount, &e.LastError,
	)
	if err != nil {
		return nil, err
	}
	if syncedAt.Valid {
		t := syncedAt.Time
		e.SyncedAt = &t
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &e.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
	}
	if len(conflict) > 0 {
		if err := json.Unmarshal(conflict, &e.Conflict); err != nil {
			return nil, fmt.Errorf("unmarshal conflict data: %w", err)
		}
	}
	return &e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.SyncLogEntry) error {
	payload, conflict, err := marshalEntry(e)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sync_log (id, user_id, operation, entity_id, entity_type, status, timestamp,
			synced_at, payload, conflict_data, retry_count, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Operation, e.EntityID, e.EntityType, e.Status, e.Timestamp,
		e.SyncedAt, payload, conflict, e.RetryCount, e.LastError)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID string, id string) (*models.SyncLogEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM sync_log WHERE id = $1 AND user_id = $2`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) listByStatus(ctx context.Context, userID string, status models.SyncStatus) ([]*models.SyncLogEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM sync_log
		WHERE user_id = $1 AND status = $2 ORDER BY timestamp ASC`
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

func (r *PostgresRepository) ListPending(ctx context.Context, userID string) ([]*models.SyncLogEntry, error) {
	return r.listByStatus(ctx, userID, models.StatusPending)
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, userID string, status models.SyncStatus) ([]*models.SyncLogEntry, error) {
	return r.listByStatus(ctx, userID, status)
}

func (r *PostgresRepository) Save(ctx context.Context, e *models.SyncLogEntry) error {
	payload, conflict, err := marshalEntry(e)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sync_log (id, user_id, operation, entity_id, entity_type, status, timestamp,
			synced_at, payload, conflict_data, retry_count, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id)
		DO UPDATE SET
			status = EXCLUDED.status,
			entity_id = EXCLUDED.entity_id,
			synced_at = EXCLUDED.synced_at,
			payload = EXCLUDED.payload,
			conflict_data = EXCLUDED.conflict_data,
			retry_count = EXCLUDED.retry_count,
			last_error = EXCLUDED.last_error
			WHERE sync_log.user_id = EXCLUDED.user_id
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Operation, e.EntityID, e.EntityType, e.Status, e.Timestamp,
		e.SyncedAt, payload, conflict, e.RetryCount, e.LastError)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UsersWithPending(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT user_id FROM sync_log WHERE status = $1`
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
