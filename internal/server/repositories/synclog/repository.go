// Package synclog persists sync log entries: the audit/state records that
// track the lifecycle of individual sync operation attempts.
package synclog

import (
	"context"

	"github.com/vkraskov/contactsync/internal/server/models"
)

// Repository is the sync log store contract. Save is an upsert-by-id so a
// processed entry can be persisted immediately after each state transition.
type Repository interface {
	Create(ctx context.Context, e *models.SyncLogEntry) error
	GetByID(ctx context.Context, userID string, id string) (*models.SyncLogEntry, error)
	// ListPending returns the user's pending entries sorted by creation
	// timestamp ascending.
	ListPending(ctx context.Context, userID string) ([]*models.SyncLogEntry, error)
	// ListByStatus returns the user's entries with the given status, sorted
	// by creation timestamp ascending.
	ListByStatus(ctx context.Context, userID string, status models.SyncStatus) ([]*models.SyncLogEntry, error)
	Save(ctx context.Context, e *models.SyncLogEntry) error
	// UsersWithPending lists the distinct user ids that currently have at
	// least one pending entry, for the background sweep.
	UsersWithPending(ctx context.Context) ([]string, error)
}
