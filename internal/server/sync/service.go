package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vkraskov/contactsync/internal/common"
	"github.com/vkraskov/contactsync/internal/dbx"
	"github.com/vkraskov/contactsync/internal/logging"
	"github.com/vkraskov/contactsync/internal/server/models"
	"github.com/vkraskov/contactsync/internal/server/repositories/repomanager"
)

// SyncChange is one client-submitted change in a batch.
type SyncChange struct {
	Operation models.SyncOperation `json:"operation"`
	ContactID string               `json:"contactId,omitempty"`
	Contact   *models.ContactPatch `json:"contact,omitempty"`
}

// ChangeResult is the per-change outcome, carried explicitly by index so
// callers never have to reconstruct which change failed from aggregate
// counters.
type ChangeResult struct {
	Index     int                  `json:"index"`
	Operation models.SyncOperation `json:"operation"`
	ContactID string               `json:"contactId,omitempty"`
	Success   bool                 `json:"success"`
	Error     string               `json:"error,omitempty"`
}

// SyncResult summarizes one batch: per-change results plus aggregate
// counters. Errors holds the failure messages in encounter order.
type SyncResult struct {
	Success   bool           `json:"success"`
	Processed int            `json:"processed"`
	Failed    int            `json:"failed"`
	Results   []ChangeResult `json:"results"`
	Errors    []string       `json:"errors"`
}

// SyncStatus is the out-of-band view of a user's sync log: queued entries
// awaiting the sweep and conflicts awaiting explicit resolution.
type SyncStatus struct {
	Pending   []*models.SyncLogEntry `json:"pending"`
	Conflicts []*models.SyncLogEntry `json:"conflicts"`
}

// Service is the offline-sync core. The batch path and the background sweep
// are independent entry points; neither locks the target contact, so
// interleaving between concurrent invocations is unspecified.
type Service struct {
	db      *sql.DB
	manager repomanager.RepositoryManager
	logger  logging.Logger
}

func NewService(db *sql.DB, manager repomanager.RepositoryManager, logger logging.Logger) *Service {
	return &Service{
		db:      db,
		manager: manager,
		logger:  logger.With("module", "sync_service"),
	}
}

// DetectConflicts compares a locally-edited contact payload against the
// stored server version. A missing server contact is not an error: it
// returns (nil, nil) and the caller decides whether to create or skip.
func (s *Service) DetectConflicts(ctx context.Context, userID, contactID string, local *models.ContactPatch) (*models.ConflictData, error) {
	server, err := s.manager.Contacts(s.db).GetByID(ctx, userID, contactID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading contact: %w", err)
	}
	return detectConflict(local, server), nil
}

// SyncChanges applies a client batch in submitted order. Changes are
// independent: a failure is recorded per item and processing continues, so
// partial success is expected and reported.
func (s *Service) SyncChanges(ctx context.Context, userID string, changes []SyncChange) (*SyncResult, error) {
	result := &SyncResult{Success: true, Results: make([]ChangeResult, 0, len(changes)), Errors: []string{}}

	for i, change := range changes {
		contactID, err := s.applyChange(ctx, userID, change)

		entry := &models.SyncLogEntry{
			ID:         uuid.NewString(),
			UserID:     userID,
			Operation:  change.Operation,
			EntityID:   contactID,
			EntityType: models.EntityTypeContact,
			Timestamp:  time.Now(),
			Payload:    change.Contact,
		}

		cr := ChangeResult{Index: i, Operation: change.Operation, ContactID: contactID}
		if err != nil {
			// a change without a target id still gets an audit entry
			if entry.EntityID == "" {
				entry.EntityID = uuid.NewString()
			}
			entry.Status = models.StatusFailed
			entry.LastError = err.Error()

			cr.Error = err.Error()
			result.Failed++
			result.Errors = append(result.Errors, err.Error())
			result.Success = false
			s.logger.Warn(ctx, "change failed", "user_id", userID, "index", i, "operation", change.Operation, "error", err)
		} else {
			now := time.Now()
			entry.Status = models.StatusCompleted
			entry.SyncedAt = &now

			cr.Success = true
			result.Processed++
		}
		result.Results = append(result.Results, cr)

		if logErr := s.manager.SyncLog(s.db).Create(ctx, entry); logErr != nil {
			s.logger.Error(ctx, "failed to write sync log entry", "user_id", userID, "index", i, "error", logErr)
		}
	}

	return result, nil
}

// applyChange performs one change against the contact store and returns the
// id of the affected contact.
func (s *Service) applyChange(ctx context.Context, userID string, change SyncChange) (string, error) {
	repo := s.manager.Contacts(s.db)

	switch change.Operation {
	case models.OperationCreate:
		if change.Contact == nil {
			return "", fmt.Errorf("%w: contact payload is required for create", common.ErrInvalidArgument)
		}
		c, err := newContact(userID, change.ContactID, change.Contact)
		if err != nil {
			return "", err
		}
		if err := repo.Create(ctx, c); err != nil {
			return c.ID, fmt.Errorf("error creating contact: %w", err)
		}
		return c.ID, nil

	case models.OperationUpdate:
		if change.ContactID == "" {
			return "", fmt.Errorf("%w: contact id is required for update", common.ErrInvalidArgument)
		}
		if change.Contact == nil {
			return change.ContactID, fmt.Errorf("%w: contact payload is required for update", common.ErrInvalidArgument)
		}
		return change.ContactID, s.updateContact(ctx, repo, userID, change.ContactID, change.Contact)

	case models.OperationDelete:
		if change.ContactID == "" {
			return "", fmt.Errorf("%w: contact id is required for delete", common.ErrInvalidArgument)
		}
		if err := repo.Delete(ctx, userID, change.ContactID); err != nil {
			return change.ContactID, fmt.Errorf("error deleting contact: %w", err)
		}
		return change.ContactID, nil

	default:
		return change.ContactID, fmt.Errorf("%w: %q", common.ErrInvalidOperation, string(change.Operation))
	}
}

func (s *Service) updateContact(ctx context.Context, repo contactStore, userID, contactID string, patch *models.ContactPatch) error {
	c, err := repo.GetByID(ctx, userID, contactID)
	if err != nil {
		return fmt.Errorf("error loading contact: %w", err)
	}

	now := time.Now()
	patch.Apply(c)
	c.Category = models.DeriveCategory(c.Categories, c.Category)
	c.LastSyncedAt = now
	c.UpdatedAt = now

	if err := repo.Update(ctx, c); err != nil {
		return fmt.Errorf("error updating contact: %w", err)
	}
	return nil
}

// contactStore is satisfied by contacts.Repository; declared locally to keep
// updateContact usable with any bound DBTX.
type contactStore interface {
	GetByID(ctx context.Context, userID, id string) (*models.Contact, error)
	Create(ctx context.Context, c *models.Contact) error
	Update(ctx context.Context, c *models.Contact) error
	Delete(ctx context.Context, userID, id string) error
}

// newContact materializes a create payload. The id is client-supplied when
// provided, otherwise generated.
func newContact(userID, id string, patch *models.ContactPatch) (*models.Contact, error) {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	c := &models.Contact{ID: id, UserID: userID, CreatedAt: now, UpdatedAt: now, LastSyncedAt: now}
	patch.Apply(c)
	c.Category = models.DeriveCategory(c.Categories, c.Category)

	if c.FirstName == "" || c.LastName == "" {
		return nil, fmt.Errorf("%w: firstName and lastName are required", common.ErrInvalidArgument)
	}
	return c, nil
}

// QueueChanges records a batch of changes as pending sync log entries for
// the background sweep instead of applying them inline. The whole batch is
// validated up front; a malformed change rejects the call.
func (s *Service) QueueChanges(ctx context.Context, userID string, changes []SyncChange) ([]*models.SyncLogEntry, error) {
	for i, change := range changes {
		if !change.Operation.IsValid() {
			return nil, fmt.Errorf("%w: %q (change %d)", common.ErrInvalidOperation, string(change.Operation), i)
		}
		if change.Operation == models.OperationCreate && change.Contact == nil {
			return nil, fmt.Errorf("%w: contact payload is required for create (change %d)", common.ErrInvalidArgument, i)
		}
		if change.Operation != models.OperationCreate && change.ContactID == "" {
			return nil, fmt.Errorf("%w: contact id is required for %s (change %d)", common.ErrInvalidArgument, change.Operation, i)
		}
	}

	repo := s.manager.SyncLog(s.db)
	entries := make([]*models.SyncLogEntry, 0, len(changes))
	for _, change := range changes {
		entityID := change.ContactID
		if entityID == "" {
			entityID = uuid.NewString()
		}
		entry := &models.SyncLogEntry{
			ID:         uuid.NewString(),
			UserID:     userID,
			Operation:  change.Operation,
			EntityID:   entityID,
			EntityType: models.EntityTypeContact,
			Status:     models.StatusPending,
			Timestamp:  time.Now(),
			Payload:    change.Contact,
		}
		if err := repo.Create(ctx, entry); err != nil {
			return entries, fmt.Errorf("error queueing change: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ProcessPendingSyncs advances a user's pending entries through the state
// machine, oldest first. Storage failures keep the entry pending with an
// incremented retry count; entries at the retry limit are failed without
// another attempt; diverging updates are parked as conflicts. Every entry is
// persisted immediately after its transition.
func (s *Service) ProcessPendingSyncs(ctx context.Context, userID string) error {
	logRepo := s.manager.SyncLog(s.db)

	pending, err := logRepo.ListPending(ctx, userID)
	if err != nil {
		return fmt.Errorf("error listing pending entries: %w", err)
	}

	for _, entry := range pending {
		if entry.RetryCount >= models.MaxRetries {
			entry.Status = models.StatusFailed
			if entry.LastError == "" {
				entry.LastError = "retry limit exceeded"
			}
			if err := logRepo.Save(ctx, entry); err != nil {
				return fmt.Errorf("error saving sync log entry: %w", err)
			}
			s.logger.Warn(ctx, "entry failed after retry limit", "user_id", userID, "entry_id", entry.ID)
			continue
		}

		transitioned, err := s.processPendingEntry(ctx, entry)
		if err != nil {
			entry.RetryCount++
			entry.LastError = err.Error()
			s.logger.Warn(ctx, "pending entry attempt failed", "user_id", userID, "entry_id", entry.ID,
				"retry_count", entry.RetryCount, "error", err)
		} else {
			*entry = *transitioned
		}
		if err := logRepo.Save(ctx, entry); err != nil {
			return fmt.Errorf("error saving sync log entry: %w", err)
		}
	}
	return nil
}

// SweepPending runs one sweep pass over every user that has pending
// entries. A failing user does not stop the sweep for the others.
func (s *Service) SweepPending(ctx context.Context) error {
	userIDs, err := s.manager.SyncLog(s.db).UsersWithPending(ctx)
	if err != nil {
		return fmt.Errorf("error listing users with pending entries: %w", err)
	}

	for _, userID := range userIDs {
		if err := s.ProcessPendingSyncs(ctx, userID); err != nil {
			s.logger.Error(ctx, "sweep failed for user", "user_id", userID, "error", err)
		}
	}
	return nil
}

// processPendingEntry attempts one pending entry and returns its new state.
// An error means "stays pending, retry next sweep".
func (s *Service) processPendingEntry(ctx context.Context, entry *models.SyncLogEntry) (*models.SyncLogEntry, error) {
	repo := s.manager.Contacts(s.db)

	switch entry.Operation {
	case models.OperationCreate:
		if entry.Payload == nil {
			return nil, fmt.Errorf("%w: queued create has no payload", common.ErrInvalidArgument)
		}
		c, err := newContact(entry.UserID, entry.EntityID, entry.Payload)
		if err != nil {
			return nil, err
		}
		if err := repo.Create(ctx, c); err != nil {
			return nil, fmt.Errorf("error creating contact: %w", err)
		}
		entry.EntityID = c.ID

	case models.OperationUpdate:
		if entry.Payload == nil {
			return nil, fmt.Errorf("%w: queued update has no payload", common.ErrInvalidArgument)
		}
		conflict, err := s.DetectConflicts(ctx, entry.UserID, entry.EntityID, entry.Payload)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			entry.Status = models.StatusConflict
			entry.Conflict = conflict
			return entry, nil
		}
		if err := s.updateContact(ctx, repo, entry.UserID, entry.EntityID, entry.Payload); err != nil {
			return nil, err
		}

	case models.OperationDelete:
		if err := repo.Delete(ctx, entry.UserID, entry.EntityID); err != nil {
			return nil, fmt.Errorf("error deleting contact: %w", err)
		}

	default:
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidOperation, string(entry.Operation))
	}

	now := time.Now()
	entry.Status = models.StatusCompleted
	entry.SyncedAt = &now
	entry.LastError = ""
	return entry, nil
}

// ResolveConflict commits the outcome of one conflicted entry using the
// given strategy and completes the entry. This is a deliberate single-shot
// action: an entry whose conflict data is already gone fails with
// ErrInvalidState rather than double-applying.
func (s *Service) ResolveConflict(ctx context.Context, userID, syncLogID string, resolution Resolution) (*models.Contact, error) {
	if !resolution.IsValid() {
		return nil, fmt.Errorf("%w: unknown resolution strategy %q", common.ErrInvalidArgument, string(resolution))
	}

	entry, err := s.manager.SyncLog(s.db).GetByID(ctx, userID, syncLogID)
	if err != nil {
		return nil, fmt.Errorf("error loading sync log entry: %w", err)
	}
	if entry.Conflict == nil {
		return nil, fmt.Errorf("%w: sync log entry has no conflict data", common.ErrInvalidState)
	}

	patch := resolutionPatch(entry.Conflict, resolution)

	var resolved *models.Contact
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.manager.Contacts(tx)

		c, err := repo.GetByID(ctx, userID, entry.EntityID)
		if err != nil {
			return fmt.Errorf("error loading contact: %w", err)
		}

		now := time.Now()
		patch.Apply(c)
		c.Category = models.DeriveCategory(c.Categories, c.Category)
		c.LastSyncedAt = now
		c.UpdatedAt = now
		if err := repo.Update(ctx, c); err != nil {
			return fmt.Errorf("error updating contact: %w", err)
		}

		entry.Status = models.StatusCompleted
		entry.SyncedAt = &now
		entry.Conflict = nil
		entry.LastError = ""
		if err := s.manager.SyncLog(tx).Save(ctx, entry); err != nil {
			return fmt.Errorf("error saving sync log entry: %w", err)
		}

		resolved = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "conflict resolved", "user_id", userID, "entry_id", entry.ID, "resolution", string(resolution))
	return resolved, nil
}

// Status reports the user's queued entries and unresolved conflicts.
func (s *Service) Status(ctx context.Context, userID string) (*SyncStatus, error) {
	repo := s.manager.SyncLog(s.db)

	pending, err := repo.ListPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing pending entries: %w", err)
	}
	conflicts, err := repo.ListByStatus(ctx, userID, models.StatusConflict)
	if err != nil {
		return nil, fmt.Errorf("error listing conflict entries: %w", err)
	}
	return &SyncStatus{Pending: pending, Conflicts: conflicts}, nil
}
