package models

import "time"

// SyncOperation is the kind of change a client submits for one contact.
type SyncOperation string

const (
	OperationCreate SyncOperation = "create"
	OperationUpdate SyncOperation = "update"
	OperationDelete SyncOperation = "delete"
)

// IsValid reports whether the operation is one of the recognized kinds.
func (o SyncOperation) IsValid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	default:
		return false
	}
}

// SyncStatus is the lifecycle state of a sync log entry.
type SyncStatus string

const (
	StatusPending   SyncStatus = "pending"
	StatusCompleted SyncStatus = "completed"
	StatusFailed    SyncStatus = "failed"
	StatusConflict  SyncStatus = "conflict"
)

// EntityTypeContact is the only entity type synced today; the field stays a
// string so the log can carry other entity kinds later.
const EntityTypeContact = "contact"

// MaxRetries bounds how often a pending entry is attempted before it is
// forced to StatusFailed.
const MaxRetries = 3

// ConflictData holds both sides of a detected divergence plus the list of
// diverging field names, in a stable order.
type ConflictData struct {
	LocalVersion   *ContactPatch `json:"localVersion"`
	ServerVersion  *Contact      `json:"serverVersion"`
	ConflictFields []string      `json:"conflictFields"`
}

// SyncLogEntry is the audit/state record for one sync operation attempt.
// Entries are mutated in place through the state machine and never deleted
// by the sync core.
type SyncLogEntry struct {
	ID         string        `json:"id"`
	UserID     string        `json:"-"`
	Operation  SyncOperation `json:"operation"`
	EntityID   string        `json:"entityId"`
	EntityType string        `json:"entityType"`
	Status     SyncStatus    `json:"status"`
	Timestamp  time.Time     `json:"timestamp"`
	SyncedAt   *time.Time    `json:"syncedAt,omitempty"`
	Payload    *ContactPatch `json:"payload,omitempty"`
	Conflict   *ConflictData `json:"conflictData,omitempty"`
	RetryCount int           `json:"retryCount"`
	LastError  string        `json:"lastError,omitempty"`
}
