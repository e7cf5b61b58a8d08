package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/consultdesk/consultdesk/internal/auth"
	"github.com/consultdesk/consultdesk/internal/handlers"
	"github.com/consultdesk/consultdesk/internal/router"
	"github.com/consultdesk/consultdesk/internal/storetest"
)

func TestLoginAndMe(t *testing.T) {
	if err := auth.SetSecret("handler-test-secret"); err != nil {
		t.Fatalf("set secret: %v", err)
	}
	ts := newTestServer(t)

	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := ts.store.DB().Model(ts.user).Update("password_hash", hash).Error; err != nil {
		t.Fatalf("set password: %v", err)
	}

	rec := ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "demo", "password": "wrong"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "nobody", "password": "x"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "demo"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "demo", "password": "correct horse"})
	expectStatus(t, rec, http.StatusOK)
	var login handlers.LoginResponse
	decode(t, rec, &login)
	if login.Token == "" || login.User.ID != ts.user.ID {
		t.Fatalf("unexpected login response: %+v", login)
	}

	// A token for another user wins over demo mode.
	other := storetest.User(t, ts.store, "other")
	token, err := auth.GenerateJWT(other.ID, other.Username)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)

	var me struct {
		User handlers.UserResponse `json:"user"`
	}
	decode(t, rec, &me)
	if me.User.ID != other.ID || me.User.Username != "other" {
		t.Fatalf("me: got %+v", me.User)
	}
}

func TestTokenRequiredWithoutDemoMode(t *testing.T) {
	ts := newTestServer(t)
	engine := router.NewRouter(handlers.New(handlers.Options{Store: ts.store}), router.Config{
		Users:          ts.store,
		AllowedOrigins: []string{"*"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusUnauthorized)

	req = httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusUnauthorized)

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)
}
