package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

const issuer = "lifelog"

// IssueToken signs a session token for u and records the session so it
// can be revoked later.
func (m *Manager) IssueToken(u *models.User, userAgent string) (string, *store.Session, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   u.ID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	sess := &store.Session{
		TokenID:   claims.ID,
		UserID:    u.ID,
		IssuedAt:  now,
		ExpiresAt: claims.ExpiresAt.Time,
		UserAgent: userAgent,
	}
	if err := m.db.CreateSession(sess); err != nil {
		return "", nil, err
	}
	return signed, sess, nil
}

// ParseToken validates a token and returns its active user and session.
// Every failure other than a database error is ErrInvalidToken.
func (m *Manager) ParseToken(token string) (*models.User, *store.Session, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sess, err := m.db.GetSession(claims.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrInvalidToken
	}
	if err != nil {
		return nil, nil, err
	}
	if !sess.Active(m.now()) || sess.UserID != claims.Subject {
		return nil, nil, ErrInvalidToken
	}

	u, err := m.db.GetUser(claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrInvalidToken
	}
	if err != nil {
		return nil, nil, err
	}
	if !u.IsActive {
		return nil, nil, ErrInvalidToken
	}
	return u, sess, nil
}

// Revoke ends a session; its token is rejected from then on.
func (m *Manager) Revoke(tokenID string) error {
	return m.db.RevokeSession(tokenID)
}
