package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/vkraskov/contactsync/internal/server/auth"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// userIDFromContext returns the authenticated user id placed by withAuth.
func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// withAuth verifies the bearer token and stores the user id on the request
// context. Requests without a valid token never reach the handler.
func (s *Server) withAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, r, http.StatusUnauthorized, "missing token")
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}
