package store

import (
	"errors"
	"testing"
	"time"
)

func TestCreateAndGetSession(t *testing.T) {
	db := testDB(t)
	uid := testUser(t, db, "s@example.com")

	now := time.Now()
	s := &Session{TokenID: "tok-1", UserID: uid, IssuedAt: now, ExpiresAt: now.Add(time.Hour), UserAgent: "curl"}
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := db.GetSession("tok-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.UserID != uid || got.UserAgent != "curl" {
		t.Errorf("GetSession = %+v", got)
	}
	if !got.Active(now) {
		t.Error("fresh session not active")
	}
	if got.Active(now.Add(2 * time.Hour)) {
		t.Error("session active after expiry")
	}
}

func TestGetSessionNotFound(t *testing.T) {
	db := testDB(t)

	if _, err := db.GetSession("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRevokeSession(t *testing.T) {
	db := testDB(t)
	uid := testUser(t, db, "s@example.com")

	now := time.Now()
	if err := db.CreateSession(&Session{TokenID: "tok-1", UserID: uid, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := db.RevokeSession("tok-1"); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	if err := db.RevokeSession("tok-1"); err != nil {
		t.Fatalf("second RevokeSession: %v", err)
	}

	got, err := db.GetSession("tok-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.RevokedAt == nil {
		t.Fatal("RevokedAt not set")
	}
	if got.Active(now) {
		t.Error("revoked session still active")
	}

	if err := db.RevokeSession("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("revoke missing err = %v, want ErrNotFound", err)
	}
}

func TestRecentAndPruneSessions(t *testing.T) {
	db := testDB(t)
	uid := testUser(t, db, "s@example.com")

	base := time.UnixMilli(1_700_000_000_000)
	for i, id := range []string{"old", "mid", "new"} {
		issued := base.Add(time.Duration(i) * time.Hour)
		if err := db.CreateSession(&Session{TokenID: id, UserID: uid, IssuedAt: issued, ExpiresAt: issued.Add(time.Hour)}); err != nil {
			t.Fatalf("CreateSession(%s): %v", id, err)
		}
	}

	recent, err := db.RecentSessions(uid, 2)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(recent) != 2 || recent[0].TokenID != "new" || recent[1].TokenID != "mid" {
		t.Errorf("RecentSessions = %+v", recent)
	}

	n, err := db.PruneSessions(base.Add(90 * time.Minute))
	if err != nil {
		t.Fatalf("PruneSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}
}
