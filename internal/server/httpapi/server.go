// Package httpapi exposes the contactsync REST surface: contact CRUD,
// batch sync, sync status, and conflict resolution.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vkraskov/contactsync/internal/logging"
	"github.com/vkraskov/contactsync/internal/server/models"
	contactrepo "github.com/vkraskov/contactsync/internal/server/repositories/contacts"
	"github.com/vkraskov/contactsync/internal/server/sync"
)

// ContactService is the contact CRUD surface the API depends on.
type ContactService interface {
	List(ctx context.Context, userID string, f contactrepo.Filter) ([]*models.Contact, error)
	Get(ctx context.Context, userID, id string) (*models.Contact, error)
	Create(ctx context.Context, userID string, payload *models.ContactPatch) (*models.Contact, error)
	Update(ctx context.Context, userID, id string, patch *models.ContactPatch) (*models.Contact, error)
	Delete(ctx context.Context, userID, id string) error
	AvatarUploadURL(ctx context.Context, userID, contactID string) (string, string, error)
	AvatarDownloadURL(ctx context.Context, userID, contactID string) (string, error)
}

// SyncService is the offline-sync surface the API depends on.
type SyncService interface {
	SyncChanges(ctx context.Context, userID string, changes []sync.SyncChange) (*sync.SyncResult, error)
	QueueChanges(ctx context.Context, userID string, changes []sync.SyncChange) ([]*models.SyncLogEntry, error)
	Status(ctx context.Context, userID string) (*sync.SyncStatus, error)
	ResolveConflict(ctx context.Context, userID, syncLogID string, resolution sync.Resolution) (*models.Contact, error)
}

// Server is the HTTP front for the contact and sync services.
type Server struct {
	address   string
	logger    logging.Logger
	contacts  ContactService
	sync      SyncService
	jwtSecret []byte
}

func NewServer(address string, logger logging.Logger, cs ContactService, ss SyncService, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    logger.With("module", "http_server"),
		contacts:  cs,
		sync:      ss,
		jwtSecret: []byte(secretKey),
	}
}

// Handler builds the route table. Split from Run so tests can drive the mux
// through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", s.handlePing)

	mux.Handle("GET /api/contacts", s.withAuth(s.handleListContacts))
	mux.Handle("POST /api/contacts", s.withAuth(s.handleCreateContact))
	mux.Handle("GET /api/contacts/{id}", s.withAuth(s.handleGetContact))
	mux.Handle("PUT /api/contacts/{id}", s.withAuth(s.handleUpdateContact))
	mux.Handle("DELETE /api/contacts/{id}", s.withAuth(s.handleDeleteContact))

	mux.Handle("POST /api/contacts/{id}/avatar/upload-url", s.withAuth(s.handleAvatarUploadURL))
	mux.Handle("GET /api/contacts/{id}/avatar/download-url", s.withAuth(s.handleAvatarDownloadURL))

	mux.Handle("POST /api/contacts/sync", s.withAuth(s.handleSyncChanges))
	mux.Handle("POST /api/contacts/sync/queue", s.withAuth(s.handleQueueChanges))
	mux.Handle("GET /api/contacts/sync/status", s.withAuth(s.handleSyncStatus))
	mux.Handle("POST /api/contacts/sync/resolve", s.withAuth(s.handleResolveConflict))

	return mux
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
