package repomanager

import (
	"context"
	"database/sql"

	"github.com/vkraskov/contactsync/internal/dbx"
	litemigrations "github.com/vkraskov/contactsync/internal/server/migrations/sqlite"
	"github.com/vkraskov/contactsync/internal/server/repositories/contacts"
	"github.com/vkraskov/contactsync/internal/server/repositories/synclog"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repository implementations for
// single-node deployments and integration tests.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Contacts(db dbx.DBTX) contacts.Repository {
	return contacts.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) SyncLog(db dbx.DBTX) synclog.Repository {
	return synclog.NewSQLiteRepository(db)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(litemigrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
