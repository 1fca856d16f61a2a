package client

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lazypower/lifelog/internal/auth"
	"github.com/lazypower/lifelog/internal/logger"
	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/server"
	"github.com/lazypower/lifelog/internal/store"
)

func testServer(t *testing.T) (*httptest.Server, *store.DB) {
	t.Helper()
	logger.SetOutput(io.Discard)
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	am := auth.NewManager(db, "test-secret", time.Hour)
	am.Cost = bcrypt.MinCost
	if _, err := am.CreateUser("me@example.com", "pw", auth.Options{}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	ts := httptest.NewServer(server.New(db, am, server.Options{Version: "test"}))
	t.Cleanup(ts.Close)
	return ts, db
}

func TestHealthy(t *testing.T) {
	ts, _ := testServer(t)

	if !New(ts.URL).Healthy() {
		t.Error("Healthy() = false, want true")
	}
	if New("http://127.0.0.1:1").Healthy() {
		t.Error("Healthy() on closed port = true")
	}
}

func TestLoginAndStamp(t *testing.T) {
	ts, db := testServer(t)
	c := New(ts.URL)
	c.SetToken("")

	u, err := c.Login("me@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if c.Token() == "" {
		t.Fatal("no token after login")
	}
	if err := db.CreateEvent(u.ID, &models.Event{Name: "coffee"}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	stamp, err := c.Stamp("coffee", &at)
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if !stamp.At.Equal(at) {
		t.Errorf("At = %v, want %v", stamp.At, at)
	}

	events, err := c.Events()
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].LastAt == nil || !events[0].LastAt.Equal(at) {
		t.Errorf("events = %+v", events)
	}

	if err := c.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := c.Events(); err == nil {
		t.Error("Events after logout succeeded")
	}
}

func TestStatusErrors(t *testing.T) {
	ts, _ := testServer(t)
	c := New(ts.URL)
	c.SetToken("")

	_, err := c.Login("me@example.com", "wrong")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("Login err = %v, want 401 StatusError", err)
	}

	if _, err := c.Login("me@example.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	_, err = c.Stamp("nothing", nil)
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Errorf("Stamp err = %v, want 404 StatusError", err)
	}
}
