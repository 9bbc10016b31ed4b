package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/displayables/dashboard-api/internal/api/handler"
	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
	"github.com/displayables/dashboard-api/internal/core/security"
	"github.com/displayables/dashboard-api/internal/core/service"
	"github.com/displayables/dashboard-api/internal/infrastructure/db/sqlite"
	"github.com/displayables/dashboard-api/internal/infrastructure/provider"
)

// newTestServer wires the real auth core onto a temporary SQLite store and a
// fake Google userinfo endpoint that accepts "ya29.bob".
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Seed(ctx, domain.Providers); err != nil {
		t.Fatalf("seed providers: %v", err)
	}

	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer ya29.bob" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"sub":"ext-42","name":"Bob"}`))
	}))
	t.Cleanup(google.Close)

	tokens := security.NewTokenService("test-secret", 0)
	svc, err := service.NewAuthService(
		store,
		security.NewVault(1000),
		[]ports.IdentityProvider{
			service.NewLocalProvider(tokens),
			provider.NewGoogle(provider.GoogleConfig{UserInfoURL: google.URL, HTTPClient: google.Client()}),
		},
		zerolog.Nop(),
	)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}

	return NewRouter(Dependencies{
		Auth:    svc,
		Health:  map[string]handler.Pinger{"store": store},
		Log:     zerolog.Nop(),
		Metrics: prometheus.NewRegistry(),
	})
}

type call struct {
	method, target, body string
	headers              map[string]string
}

func do(t *testing.T, e *echo.Echo, c call) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(c.method, c.target, strings.NewReader(c.body))
	if c.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

func TestRouter_LocalFlow(t *testing.T) {
	e := newTestServer(t)

	rec, body := do(t, e, call{method: http.MethodPost, target: "/register", body: `{"username":"alice","password":"Secret123"}`})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %v", rec.Code, body)
	}

	rec, body = do(t, e, call{method: http.MethodPost, target: "/login", body: `{"username":"alice","password":"Secret123"}`})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %v", rec.Code, body)
	}
	auth := rec.Header().Get("Authorization")
	if !strings.HasPrefix(auth, "bearer ") || strings.Count(auth, "bearer") != 1 {
		t.Fatalf("unexpected Authorization header: %q", auth)
	}
	if body["username"] != "alice" {
		t.Fatalf("unexpected login body: %v", body)
	}

	rec, body = do(t, e, call{method: http.MethodGet, target: "/users/self", headers: map[string]string{"Authorization": auth}})
	if rec.Code != http.StatusOK || body["username"] != "alice" || body["provider"] != "local" {
		t.Fatalf("self: %d %v", rec.Code, body)
	}

	rec, _ = do(t, e, call{method: http.MethodPost, target: "/login/refresh", headers: map[string]string{"Authorization": auth}})
	if rec.Code != http.StatusOK || rec.Header().Get("Authorization") == "" {
		t.Fatalf("refresh: %d", rec.Code)
	}

	rec, body = do(t, e, call{
		method:  http.MethodPut,
		target:  "/users/self/password",
		body:    `{"oldPassword":"Secret123","password":"NewSecret1"}`,
		headers: map[string]string{"Authorization": auth},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update password: %d %v", rec.Code, body)
	}

	rec, _ = do(t, e, call{method: http.MethodPost, target: "/login", body: `{"username":"alice","password":"NewSecret1"}`})
	if rec.Code != http.StatusOK {
		t.Fatalf("login with new password: expected 200, got %d", rec.Code)
	}
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	e := newTestServer(t)
	do(t, e, call{method: http.MethodPost, target: "/register", body: `{"username":"alice","password":"Secret123"}`})

	cases := []struct {
		name   string
		call   call
		status int
		kind   string
		reason string
	}{
		{
			name:   "wrong password",
			call:   call{method: http.MethodPost, target: "/login", body: `{"username":"alice","password":"WrongPass"}`},
			status: http.StatusUnauthorized, kind: "authentication", reason: "incorrect_password",
		},
		{
			name:   "username taken",
			call:   call{method: http.MethodPost, target: "/register", body: `{"username":"alice","password":"Secret123"}`},
			status: http.StatusConflict, kind: "validation", reason: "username_exists",
		},
		{
			name:   "restricted username",
			call:   call{method: http.MethodPost, target: "/register", body: `{"username":"siteadmin","password":"Secret123"}`},
			status: http.StatusBadRequest, kind: "validation", reason: "username_restricted",
		},
		{
			name:   "missing token",
			call:   call{method: http.MethodGet, target: "/users/self"},
			status: http.StatusUnauthorized, kind: "authentication", reason: "token_missing",
		},
		{
			name:   "garbage token",
			call:   call{method: http.MethodGet, target: "/users/self", headers: map[string]string{"Authorization": "bearer nope"}},
			status: http.StatusUnauthorized, kind: "authentication", reason: "token_malformed",
		},
		{
			name:   "provider rejection is presented as authentication",
			call:   call{method: http.MethodPost, target: "/login?provider=google", headers: map[string]string{"Authorization": "bearer ya29.forged"}},
			status: http.StatusUnauthorized, kind: "authentication", reason: "provider_rejected",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := do(t, e, tc.call)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %v", tc.status, rec.Code, body)
			}
			if body["error"] != tc.kind || body["reason"] != tc.reason {
				t.Fatalf("unexpected envelope: %v", body)
			}
			if d, _ := body["description"].(string); d == "" {
				t.Fatalf("missing description: %v", body)
			}
		})
	}
}

func TestRouter_LocalizedDescription(t *testing.T) {
	e := newTestServer(t)

	_, body := do(t, e, call{
		method:  http.MethodPost,
		target:  "/login",
		body:    `{"username":"ghost","password":"Secret123"}`,
		headers: map[string]string{"lang": "es"},
	})
	if body["description"] != "No existe una cuenta con ese nombre de usuario." {
		t.Fatalf("expected spanish description, got %v", body)
	}
}

func TestRouter_ExternalFlow(t *testing.T) {
	e := newTestServer(t)
	headers := map[string]string{"Authorization": "bearer ya29.bob", "provider": "google"}

	rec, first := do(t, e, call{method: http.MethodPost, target: "/login", headers: headers})
	if rec.Code != http.StatusOK {
		t.Fatalf("first login: %d %v", rec.Code, first)
	}
	if got := rec.Header().Get("Authorization"); got != "bearer ya29.bob" {
		t.Fatalf("expected echoed credential, got %q", got)
	}
	if first["username"] != "ext-42" || first["name"] != "Bob" || first["provider"] != "google" {
		t.Fatalf("unexpected body: %v", first)
	}

	_, second := do(t, e, call{method: http.MethodPost, target: "/login", headers: headers})
	if second["id"] != first["id"] {
		t.Fatalf("expected the same user on the second login: %v vs %v", first, second)
	}

	rec, self := do(t, e, call{method: http.MethodGet, target: "/users/self", headers: headers})
	if rec.Code != http.StatusOK || self["username"] != "ext-42" {
		t.Fatalf("self: %d %v", rec.Code, self)
	}

	rec, body := do(t, e, call{
		method:  http.MethodPut,
		target:  "/users/self/password",
		body:    `{"oldPassword":"x","password":"NewSecret1"}`,
		headers: headers,
	})
	if rec.Code != http.StatusUnauthorized || body["reason"] != "external_account" {
		t.Fatalf("password update for external user: %d %v", rec.Code, body)
	}
}

func TestRouter_Probes(t *testing.T) {
	e := newTestServer(t)

	for _, target := range []string{"/health", "/health/ready", "/metrics"} {
		rec, _ := do(t, e, call{method: http.MethodGet, target: target})
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rec.Code)
		}
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	e := newTestServer(t)

	rec, body := do(t, e, call{method: http.MethodGet, target: "/nope"})
	if rec.Code != http.StatusNotFound || body["error"] != "request" {
		t.Fatalf("unexpected: %d %v", rec.Code, body)
	}
}
