// Package auth creates users, checks their passwords and issues the
// session tokens the HTTP server accepts.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

var (
	ErrEmailRequired      = errors.New("users must have an email address")
	ErrSuperuserStaff     = errors.New("superuser must have is_staff=true")
	ErrSuperuserFlag      = errors.New("superuser must have is_superuser=true")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// unusablePrefix marks a password hash no password can match.
const unusablePrefix = "!"

// Options carries the optional fields of a new user. Nil flags take the
// defaults of the create call.
type Options struct {
	FirstName   string
	LastName    string
	IsStaff     *bool
	IsSuperuser *bool
	IsActive    *bool
}

// Bool returns a pointer to b, for Options flags.
func Bool(b bool) *bool { return &b }

func flag(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Manager owns user accounts and login sessions.
type Manager struct {
	db     *store.DB
	secret []byte
	ttl    time.Duration

	// Cost is the bcrypt cost for new hashes.
	Cost int
	now  func() time.Time

	compare   func(hash, password []byte) error
	dummyOnce sync.Once
	dummyHash []byte
}

// NewManager returns a Manager signing tokens with secret that stay valid for ttl.
func NewManager(db *store.DB, secret string, ttl time.Duration) *Manager {
	return &Manager{
		db:      db,
		secret:  []byte(secret),
		ttl:     ttl,
		Cost:    bcrypt.DefaultCost,
		now:     time.Now,
		compare: bcrypt.CompareHashAndPassword,
	}
}

// SetClock overrides the time source for login and token stamps.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// CreateUser adds a regular user. An empty password leaves the account
// without a usable password.
func (m *Manager) CreateUser(email, password string, opts Options) (*models.User, error) {
	return m.create(email, password, opts, false)
}

// CreateSuperuser adds a user with staff and superuser rights. Explicitly
// passing false for either flag is an error.
func (m *Manager) CreateSuperuser(email, password string, opts Options) (*models.User, error) {
	if !flag(opts.IsStaff, true) {
		return nil, ErrSuperuserStaff
	}
	if !flag(opts.IsSuperuser, true) {
		return nil, ErrSuperuserFlag
	}
	return m.create(email, password, opts, true)
}

func (m *Manager) create(email, password string, opts Options, super bool) (*models.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrEmailRequired
	}
	hash, err := m.hash(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:        email,
		FirstName:    opts.FirstName,
		LastName:     opts.LastName,
		IsStaff:      flag(opts.IsStaff, super),
		IsSuperuser:  flag(opts.IsSuperuser, super),
		IsActive:     flag(opts.IsActive, true),
		PasswordHash: hash,
	}
	if err := m.db.CreateUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (m *Manager) hash(password string) (string, error) {
	if password == "" {
		return unusablePrefix + uuid.NewString(), nil
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), m.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// SetPassword replaces a user's password.
func (m *Manager) SetPassword(userID, password string) error {
	hash, err := m.hash(password)
	if err != nil {
		return err
	}
	return m.db.SetPasswordHash(userID, hash)
}

// HasUsablePassword reports whether any password can log this user in.
func HasUsablePassword(u *models.User) bool {
	return u.PasswordHash != "" && !strings.HasPrefix(u.PasswordHash, unusablePrefix)
}

// Authenticate checks email and password for an active user and records
// the login.
func (m *Manager) Authenticate(email, password string) (*models.User, error) {
	u, err := m.db.GetUserByEmail(email)
	if errors.Is(err, store.ErrNotFound) {
		u = nil
	} else if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive || !HasUsablePassword(u) {
		// Unknown and disabled accounts still pay for one comparison.
		m.compare(m.dummy(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := m.compare([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := m.now()
	if err := m.db.TouchLastLogin(u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin = &now
	return u, nil
}

// dummy is a hash at the manager's cost that no password matches.
func (m *Manager) dummy() []byte {
	m.dummyOnce.Do(func() {
		m.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), m.Cost)
	})
	return m.dummyHash
}
