package repomanager

import (
	"context"
	"database/sql"

	"github.com/vkraskov/contactsync/internal/dbx"
	pgmigrations "github.com/vkraskov/contactsync/internal/server/migrations/postgres"
	"github.com/vkraskov/contactsync/internal/server/repositories/contacts"
	"github.com/vkraskov/contactsync/internal/server/repositories/synclog"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and runs the embedded migrations.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Contacts(db dbx.DBTX) contacts.Repository {
	return contacts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) SyncLog(db dbx.DBTX) synclog.Repository {
	return synclog.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(pgmigrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
