package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vkraskov/contactsync/internal/common"
	"github.com/vkraskov/contactsync/internal/dbx"
	"github.com/vkraskov/contactsync/internal/server/models"
)

// SQLiteRepository implements the contact store for single-node deployments
// and tests, over a dbx.DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) List(ctx context.Context, userID string, f Filter) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = ?`
	args := []any{userID}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query += ` AND (first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR company LIKE ?)`
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.FavoritesOnly {
		query += ` AND is_favorite = 1`
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select contacts: %w", err)
	}
	defer rows.Close()

	var result []*models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, userID string, id string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ? AND user_id = ?`
	c, err := scanContact(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, c *models.Contact) error {
	address, tags, categories, profiles, err := marshalJSONColumns(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO contacts (id, user_id, first_name, last_name, email, phone, company, title, notes,
			address, tags, category, categories, social_profiles, is_favorite, avatar_key,
			last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.FirstName, c.LastName, c.Email, c.Phone, c.Company, c.Title, c.Notes,
		address, tags, c.Category, categories, profiles, c.IsFavorite, c.AvatarKey,
		c.LastSyncedAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, c *models.Contact) error {
	address, tags, categories, profiles, err := marshalJSONColumns(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE contacts SET
			first_name = ?, last_name = ?, email = ?, phone = ?, company = ?, title = ?, notes = ?,
			address = ?, tags = ?, category = ?, categories = ?, social_profiles = ?,
			is_favorite = ?, avatar_key = ?, last_synced_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Company, c.Title, c.Notes,
		address, tags, c.Category, categories, profiles,
		c.IsFavorite, c.AvatarKey, c.LastSyncedAt, c.UpdatedAt,
		c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID string, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
