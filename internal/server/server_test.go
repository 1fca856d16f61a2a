package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lazypower/lifelog/internal/auth"
	"github.com/lazypower/lifelog/internal/logger"
	"github.com/lazypower/lifelog/internal/store"
)

const testPassword = "correct horse"

type testEnv struct {
	srv *Server
	db  *store.DB
	am  *auth.Manager
}

func testServer(t *testing.T) *testEnv {
	t.Helper()
	logger.SetOutput(io.Discard)
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	am := auth.NewManager(db, "test-secret", time.Hour)
	am.Cost = bcrypt.MinCost
	srv := New(db, am, Options{Version: "test-version", Location: time.UTC})
	return &testEnv{srv: srv, db: db, am: am}
}

// login creates a user and returns a token from POST /auth/login.
func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	if _, err := e.am.CreateUser(email, testPassword, auth.Options{}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	w := e.do("POST", "/auth/login", "", `{"email":"`+email+`","password":"`+testPassword+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d; body: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return resp.Token
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v; body: %s", err, w.Body.String())
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	env := testServer(t)

	w := env.do("GET", "/api/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := decodeMap(t, w)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
}

func TestJournalRequiresLogin(t *testing.T) {
	env := testServer(t)

	paths := []string{
		"/api/me",
		"/logs/top/",
		"/logs/events/",
		"/logs/logs/sleep_index.json/",
		"/logs/concerns/",
	}
	for _, p := range paths {
		w := env.do("GET", p, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s: status = %d, want %d", p, w.Code, http.StatusUnauthorized)
		}
	}

	w := env.do("GET", "/logs/events/", "not-a-token", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLoginAndLogout(t *testing.T) {
	env := testServer(t)
	token := env.login(t, "me@example.com")

	w := env.do("GET", "/api/me", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d; body: %s", w.Code, w.Body.String())
	}
	user := decodeMap(t, w)["user"].(map[string]any)
	if user["email"] != "me@example.com" {
		t.Errorf("email = %v", user["email"])
	}
	if _, ok := user["password_hash"]; ok {
		t.Error("password hash leaked into response")
	}

	w = env.do("GET", "/api/sessions", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("sessions status = %d", w.Code)
	}
	if sessions := decodeMap(t, w)["sessions"].([]any); len(sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(sessions))
	}

	w = env.do("POST", "/auth/logout", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d; body: %s", w.Code, w.Body.String())
	}

	w = env.do("GET", "/api/me", token, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("after logout: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLoginSetsCookie(t *testing.T) {
	env := testServer(t)
	if _, err := env.am.CreateUser("cookie@example.com", testPassword, auth.Options{}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	w := env.do("POST", "/auth/login", "", `{"email":"cookie@example.com","password":"`+testPassword+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "lifelog_session" || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("cookie auth: status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := testServer(t)
	if _, err := env.am.CreateUser("me@example.com", testPassword, auth.Options{}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	w := env.do("POST", "/auth/login", "", `{"email":"me@example.com","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	w = env.do("POST", "/auth/login", "", `{"email":"nobody@example.com","password":"x"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	w = env.do("POST", "/auth/login", "", `{"email":""}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty body: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUINotEmbedded(t *testing.T) {
	env := testServer(t)

	w := env.do("GET", "/", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
