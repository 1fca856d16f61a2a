package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lazypower/lifelog/internal/auth"
	"github.com/lazypower/lifelog/internal/logger"
	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

type ctxKey int

const (
	userKey ctxKey = iota
	sessionKey
)

// currentUser returns the authenticated user. Only valid behind requireUser.
func currentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(userKey).(*models.User)
	return u
}

func currentSession(r *http.Request) *store.Session {
	sess, _ := r.Context().Value(sessionKey).(*store.Session)
	return sess
}

// bearerToken pulls the session token from the Authorization header,
// falling back to the session cookie.
func (s *Server) bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// requireUser rejects requests without a valid session token and stores
// the user and session on the request context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		u, sess, err := s.auth.ParseToken(token)
		if errors.Is(err, auth.ErrInvalidToken) {
			logger.Debug("rejected token", "path", r.URL.Path, "err", err)
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, u)
		ctx = context.WithValue(ctx, sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
