package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	db, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := NewManager(db, "test-secret", time.Hour)
	m.Cost = bcrypt.MinCost
	return m
}

func TestCreateUserRequiresEmail(t *testing.T) {
	m := testManager(t)

	_, err := m.CreateUser("", "pw", Options{})
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = m.CreateUser("   ", "pw", Options{})
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestCreateUserDefaults(t *testing.T) {
	m := testManager(t)

	u, err := m.CreateUser("user@EXAMPLE.com", "pw", Options{FirstName: "Ann"})
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", u.Email)
	assert.Equal(t, "Ann", u.FirstName)
	assert.False(t, u.IsStaff)
	assert.False(t, u.IsSuperuser)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "pw", u.PasswordHash)
	assert.True(t, HasUsablePassword(u))
}

func TestCreateUserWithoutPassword(t *testing.T) {
	m := testManager(t)

	u, err := m.CreateUser("nopw@example.com", "", Options{})
	require.NoError(t, err)
	assert.False(t, HasUsablePassword(u))

	_, err = m.Authenticate("nopw@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateSuperuser(t *testing.T) {
	m := testManager(t)

	u, err := m.CreateSuperuser("root@example.com", "pw", Options{})
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsActive)
}

func TestCreateSuperuserFlags(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"staff false", Options{IsStaff: Bool(false)}, ErrSuperuserStaff},
		{"superuser false", Options{IsSuperuser: Bool(false)}, ErrSuperuserFlag},
		{"both false", Options{IsStaff: Bool(false), IsSuperuser: Bool(false)}, ErrSuperuserStaff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testManager(t)
			_, err := m.CreateSuperuser("root@example.com", "pw", tt.opts)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	m := testManager(t)
	_, err := m.CreateSuperuser("", "pw", Options{})
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestCreateUserDuplicate(t *testing.T) {
	m := testManager(t)

	_, err := m.CreateUser("dup@example.com", "pw", Options{})
	require.NoError(t, err)
	_, err = m.CreateUser("dup@example.com", "pw", Options{})
	v, ok := models.AsValidation(err)
	require.True(t, ok, "err = %v", err)
	assert.NotEmpty(t, v["email"])
}

func TestAuthenticate(t *testing.T) {
	m := testManager(t)
	login := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m.SetClock(func() time.Time { return login })

	created, err := m.CreateUser("me@example.com", "correct horse", Options{})
	require.NoError(t, err)

	_, err = m.Authenticate("me@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = m.Authenticate("nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, err := m.Authenticate("me@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
	require.NotNil(t, u.LastLogin)
	assert.True(t, u.LastLogin.Equal(login))

	require.NoError(t, m.SetPassword(u.ID, "battery staple"))
	_, err = m.Authenticate("me@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = m.Authenticate("me@example.com", "battery staple")
	assert.NoError(t, err)
}

func TestAuthenticateInactive(t *testing.T) {
	m := testManager(t)

	_, err := m.CreateUser("off@example.com", "pw", Options{IsActive: Bool(false)})
	require.NoError(t, err)

	_, err = m.Authenticate("off@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateComparesForEveryAccount(t *testing.T) {
	m := testManager(t)
	var compared int
	m.compare = func(hash, password []byte) error {
		compared++
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	_, err := m.CreateUser("me@example.com", "pw", Options{})
	require.NoError(t, err)
	_, err = m.CreateUser("off@example.com", "pw", Options{IsActive: Bool(false)})
	require.NoError(t, err)
	_, err = m.CreateUser("nopw@example.com", "", Options{})
	require.NoError(t, err)

	for _, email := range []string{"nobody@example.com", "off@example.com", "nopw@example.com", "me@example.com"} {
		before := compared
		_, err := m.Authenticate(email, "guess")
		assert.ErrorIs(t, err, ErrInvalidCredentials, email)
		assert.Equal(t, 1, compared-before, "comparisons for %s", email)
	}

	cost, err := bcrypt.Cost(m.dummy())
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestTokenRoundTrip(t *testing.T) {
	m := testManager(t)

	u, err := m.CreateUser("tok@example.com", "pw", Options{})
	require.NoError(t, err)

	token, sess, err := m.IssueToken(u, "test-agent")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")))
	assert.Equal(t, u.ID, sess.UserID)

	got, gotSess, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, sess.TokenID, gotSess.TokenID)
}

func TestTokenRejected(t *testing.T) {
	m := testManager(t)
	u, err := m.CreateUser("tok@example.com", "pw", Options{})
	require.NoError(t, err)
	token, sess, err := m.IssueToken(u, "")
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, _, err := m.ParseToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager(m.db, "other-secret", time.Hour)
		_, _, err := other.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewManager(m.db, "test-secret", time.Hour)
		late.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
		_, _, err := late.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("revoked", func(t *testing.T) {
		require.NoError(t, m.Revoke(sess.TokenID))
		_, _, err := m.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
