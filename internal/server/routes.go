package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lazypower/lifelog/internal/auth"
	"github.com/lazypower/lifelog/internal/logger"
	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

const recentSessionLimit = 10

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	u, err := s.auth.Authenticate(req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		logger.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	token, sess, err := s.auth.IssueToken(u, r.UserAgent())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	logger.Info("login", "user", u.ID)

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": sess.ExpiresAt,
		"user":       u,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Revoke(currentSession(r).TokenID); err != nil {
		s.fail(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSessions lists the caller's latest logins.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.db.RecentSessions(currentUser(r).ID, recentSessionLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []store.Session{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current":  currentSession(r).TokenID,
		"sessions": sessions,
	})
}

// handleTop is the dashboard: latest event stamps, open PDCs, and a
// proverb for the day.
func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	stamps, err := s.db.LatestTimestampsByEvent(u.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if stamps == nil {
		stamps = []models.EventStamp{}
	}

	open, err := s.db.ListPDCs(u.ID, false, store.Page{Number: 1, Size: 1})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var proverb map[string]any
	p, err := s.db.RandomProverb(u.ID)
	switch {
	case err == nil:
		proverb = map[string]any{
			"proverb":            p,
			"first_message":      p.FirstMessage(),
			"remaining_messages": p.RemainingMessages(),
		}
	case !errors.Is(err, store.ErrNotFound):
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":      u,
		"today":     s.today(),
		"events":    stamps,
		"open_pdcs": open.Total,
		"proverb":   proverb,
	})
}

// handleStampByName stamps the event with the given name, for clients
// that know events by name rather than id.
func (s *Server) handleStampByName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Event string     `json:"event"`
		At    *time.Time `json:"at"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Event) == "" {
		s.fail(w, r, models.FieldError("event", "this field is required"))
		return
	}

	userID := currentUser(r).ID
	ev, err := s.db.FindEventByName(userID, strings.TrimSpace(req.Event))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ts := &models.Timestamp{EventID: ev.ID, At: s.now()}
	if req.At != nil {
		ts.At = *req.At
	}
	if err := s.db.CreateTimestamp(userID, ts); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ts)
}
