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

const contactColumns = `id, user_id, first_name, last_name, email, phone, company, title, notes,
		address, tags, category, categories, social_profiles, is_favorite, avatar_key,
		last_synced_at, created_at, updated_at`

// PostgresRepository implements the contact store over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanContact(row interface{ Scan(...any) error }) (*models.Contact, error) {
	var c models.Contact
	var address, tags, categories, profiles []byte
	err := row.Scan(
		&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Company, &c.Title, &c.Notes,
		&address, &tags, &c.Category, &categories, &profiles,
		&c.IsFavorite, &c.AvatarKey,
		&c.LastSyncedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSONColumns(&c, address, tags, categories, profiles); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, f Filter) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1`
	args := []any{userID}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		query += fmt.Sprintf(
			` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)`,
			n, n, n, n)
	}
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if f.FavoritesOnly {
		query += ` AND is_favorite`
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

func (r *PostgresRepository) GetByID(ctx context.Context, userID string, id string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND user_id = $2`
	c, err := scanContact(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Contact) error {
	address, tags, categories, profiles, err := marshalJSONColumns(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO contacts (id, user_id, first_name, last_name, email, phone, company, title, notes,
			address, tags, category, categories, social_profiles, is_favorite, avatar_key,
			last_synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
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

func (r *PostgresRepository) Update(ctx context.Context, c *models.Contact) error {
	address, tags, categories, profiles, err := marshalJSONColumns(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE contacts SET
			first_name = $3, last_name = $4, email = $5, phone = $6, company = $7, title = $8, notes = $9,
			address = $10, tags = $11, category = $12, categories = $13, social_profiles = $14,
			is_favorite = $15, avatar_key = $16, last_synced_at = $17, updated_at = $18
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Company, c.Title, c.Notes,
		address, tags, c.Category, categories, profiles,
		c.IsFavorite, c.AvatarKey, c.LastSyncedAt, c.UpdatedAt)
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

func (r *PostgresRepository) Delete(ctx context.Context, userID string, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1 AND user_id = $2`, id, userID)
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
