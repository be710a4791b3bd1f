package server

import (
	"context"
	"net/http"

	"video_digest/internal/domain"
)

type contextKey string

const userIDKey contextKey = "user_id"

// authMiddleware checks the caller's API key and attaches the user identity
// from the X-User-ID header to the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" || key != s.apiKey {
			s.respondError(w, r, domain.E(domain.KindUnauthorized, "missing or invalid api key"))
			return
		}

		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			s.respondError(w, r, domain.E(domain.KindInvalidInput, "missing X-User-ID header"))
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
