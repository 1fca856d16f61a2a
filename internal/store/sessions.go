package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Session is one issued login token, keyed by the token's jti.
type Session struct {
	TokenID   string     `json:"token_id"`
	UserID    string     `json:"user_id"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	UserAgent string     `json:"user_agent,omitempty"`
}

// Active reports whether the session is neither revoked nor expired at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// CreateSession records a newly issued token.
func (db *DB) CreateSession(s *Session) error {
	_, err := db.Exec(`
		INSERT INTO sessions (token_id, user_id, issued_at, expires_at, user_agent)
		VALUES (?, ?, ?, ?, ?)
	`, s.TokenID, s.UserID, toMS(s.IssuedAt), toMS(s.ExpiresAt), s.UserAgent)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func scanSession(sc scanner) (*Session, error) {
	var s Session
	var issued, expires int64
	var revoked sql.NullInt64
	if err := sc.Scan(&s.TokenID, &s.UserID, &issued, &expires, &revoked, &s.UserAgent); err != nil {
		return nil, err
	}
	s.IssuedAt = fromMS(issued)
	s.ExpiresAt = fromMS(expires)
	if revoked.Valid {
		t := fromMS(revoked.Int64)
		s.RevokedAt = &t
	}
	return &s, nil
}

// GetSession returns a session by token id.
func (db *DB) GetSession(tokenID string) (*Session, error) {
	s, err := scanSession(db.QueryRow(`
		SELECT token_id, user_id, issued_at, expires_at, revoked_at, user_agent
		FROM sessions WHERE token_id = ?
	`, tokenID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", tokenID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// RevokeSession marks a token as logged out. Revoking twice is a no-op.
func (db *DB) RevokeSession(tokenID string) error {
	res, err := db.Exec(`
		UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE token_id = ?
	`, toMS(db.now()), tokenID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return affected(res, "session", tokenID)
}

// RecentSessions returns a user's most recently issued sessions.
func (db *DB) RecentSessions(userID string, limit int) ([]Session, error) {
	rows, err := db.Query(`
		SELECT token_id, user_id, issued_at, expires_at, revoked_at, user_agent
		FROM sessions WHERE user_id = ?
		ORDER BY issued_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// PruneSessions deletes sessions that expired before cutoff.
func (db *DB) PruneSessions(cutoff time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, toMS(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return res.RowsAffected()
}
