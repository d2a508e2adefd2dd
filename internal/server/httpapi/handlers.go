package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vkraskov/contactsync/internal/common"
	"github.com/vkraskov/contactsync/internal/server/models"
	contactrepo "github.com/vkraskov/contactsync/internal/server/repositories/contacts"
	"github.com/vkraskov/contactsync/internal/server/sync"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(r.Context(), "failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, errorResponse{Error: msg})
}

// writeServiceError maps the error taxonomy onto HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrInvalidArgument), errors.Is(err, common.ErrInvalidOperation):
		s.writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrInvalidState):
		s.writeError(w, r, http.StatusConflict, err.Error())
	default:
		s.logger.Error(r.Context(), "internal error", "error", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(common.ErrInvalidArgument, err)
	}
	return nil
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := contactrepo.Filter{
		Search:        q.Get("search"),
		Category:      q.Get("category"),
		FavoritesOnly: q.Get("favorites") == "true",
	}

	result, err := s.contacts.List(r.Context(), userIDFromContext(r.Context()), f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if result == nil {
		result = []*models.Contact{}
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.contacts.Get(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var payload models.ContactPatch
	if err := decodeBody(r, &payload); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	c, err := s.contacts.Create(r.Context(), userIDFromContext(r.Context()), &payload)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, c)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var patch models.ContactPatch
	if err := decodeBody(r, &patch); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	c, err := s.contacts.Update(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"), &patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.contacts.Delete(r.Context(), userIDFromContext(r.Context()), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAvatarUploadURL(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.contacts.AvatarUploadURL(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"key": key, "url": url})
}

func (s *Server) handleAvatarDownloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := s.contacts.AvatarDownloadURL(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"url": url})
}

type syncRequest struct {
	Changes []sync.SyncChange `json:"changes"`
}

func (s *Server) handleSyncChanges(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	result, err := s.sync.SyncChanges(r.Context(), userIDFromContext(r.Context()), req.Changes)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleQueueChanges(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	entries, err := s.sync.QueueChanges(r.Context(), userIDFromContext(r.Context()), req.Changes)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusAccepted, map[string]any{"queued": entries})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.sync.Status(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if status.Pending == nil {
		status.Pending = []*models.SyncLogEntry{}
	}
	if status.Conflicts == nil {
		status.Conflicts = []*models.SyncLogEntry{}
	}
	s.writeJSON(w, r, http.StatusOK, status)
}

type resolveRequest struct {
	SyncLogID  string          `json:"syncLogId"`
	Resolution sync.Resolution `json:"resolution"`
}

func (s *Server) handleResolveConflict(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if req.SyncLogID == "" {
		s.writeError(w, r, http.StatusBadRequest, "syncLogId is required")
		return
	}

	c, err := s.sync.ResolveConflict(r.Context(), userIDFromContext(r.Context()), req.SyncLogID, req.Resolution)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, c)
}
