// Package repomanager vends per-DBTX repository implementations so services
// can run operations either directly against the pool or inside a
// transaction, and exposes schema migration hooks per backend.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/vkraskov/contactsync/internal/dbx"
	"github.com/vkraskov/contactsync/internal/server/repositories/contacts"
	"github.com/vkraskov/contactsync/internal/server/repositories/synclog"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Contacts(db dbx.DBTX) contacts.Repository
	SyncLog(db dbx.DBTX) synclog.Repository
}
