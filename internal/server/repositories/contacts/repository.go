// Package contacts provides the contact store: per-user persistence of
// address-book records, with PostgreSQL and SQLite implementations.
package contacts

import (
	"context"

	"github.com/vkraskov/contactsync/internal/server/models"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	// Search matches case-insensitively against first name, last name,
	// email and company.
	Search string
	// Category matches the derived category label.
	Category string
	// FavoritesOnly keeps only contacts marked as favorite.
	FavoritesOnly bool
}

// Repository is the contact store contract. Every operation is scoped by
// userID; a contact belonging to another user behaves as absent.
type Repository interface {
	List(ctx context.Context, userID string, f Filter) ([]*models.Contact, error)
	GetByID(ctx context.Context, userID string, id string) (*models.Contact, error)
	Create(ctx context.Context, c *models.Contact) error
	// Update rewrites the row identified by (c.ID, c.UserID) and returns
	// common.ErrNotFound when no such row exists.
	Update(ctx context.Context, c *models.Contact) error
	// Delete removes the row identified by (id, userID) and returns
	// common.ErrNotFound when no such row exists.
	Delete(ctx context.Context, userID string, id string) error
}
