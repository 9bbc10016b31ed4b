package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/displayables/dashboard-api/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requireProviderReason(t *testing.T, err error, reason domain.Reason) {
	t.Helper()
	ae, ok := domain.AsAuthError(err)
	require.True(t, ok, "expected *domain.AuthError, got %v", err)
	assert.Equal(t, domain.KindProvider, ae.Kind)
	assert.Equal(t, reason, ae.Reason)
}

func TestGoogle_CheckIncomingCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer ya29.good" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error":             "invalid_token",
				"error_description": "Invalid Credentials",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sub": "1098765", "name": "Grace Hopper"})
	}))
	defer server.Close()

	g := NewGoogle(GoogleConfig{UserInfoURL: server.URL, HTTPClient: server.Client()})
	assert.Equal(t, domain.ProviderGoogle, g.Name())

	verified, err := g.CheckIncomingCredential(context.Background(), "ya29.good")
	require.NoError(t, err)
	assert.Equal(t, "1098765", verified.Identity.ExternalID)
	assert.Equal(t, "Grace Hopper", verified.Identity.DisplayName)
	assert.Equal(t, "ya29.good", verified.Credential)
	assert.Nil(t, verified.Claims)

	_, err = g.CheckIncomingCredential(context.Background(), "ya29.bad")
	requireProviderReason(t, err, domain.ReasonProviderRejected)
	assert.Contains(t, err.Error(), "Invalid Credentials")
}

func TestGoogle_EmptyProfileIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	}))
	defer server.Close()

	g := NewGoogle(GoogleConfig{UserInfoURL: server.URL, HTTPClient: server.Client()})
	_, err := g.CheckIncomingCredential(context.Background(), "ya29.good")
	requireProviderReason(t, err, domain.ReasonProviderRejected)
}

func TestFacebook_CheckIncomingCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		switch r.URL.Query().Get("access_token") {
		case "EAAgood":
			writeJSON(w, http.StatusOK, map[string]any{"id": "10157", "name": "Ada Lovelace"})
		case "EAAembedded":
			writeJSON(w, http.StatusOK, map[string]any{
				"error": map[string]any{"message": "Session has expired", "type": "OAuthException", "code": 190},
			})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{"message": "Invalid OAuth access token.", "type": "OAuthException", "code": 190},
			})
		}
	}))
	defer server.Close()

	f := NewFacebook(FacebookConfig{GraphURL: server.URL, HTTPClient: server.Client()})

	verified, err := f.CheckIncomingCredential(context.Background(), "EAAgood")
	require.NoError(t, err)
	assert.Equal(t, "10157", verified.Identity.ExternalID)
	assert.Equal(t, "Ada Lovelace", verified.Identity.DisplayName)

	_, err = f.CheckIncomingCredential(context.Background(), "EAAembedded")
	requireProviderReason(t, err, domain.ReasonProviderRejected)
	assert.Contains(t, err.Error(), "Session has expired")

	_, err = f.CheckIncomingCredential(context.Background(), "EAAbad")
	requireProviderReason(t, err, domain.ReasonProviderRejected)
	assert.Contains(t, err.Error(), "Invalid OAuth access token.")
}

func TestFacebook_RefreshRevalidates(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusOK, map[string]any{"id": "10157", "name": "Ada"})
	}))
	defer server.Close()

	f := NewFacebook(FacebookConfig{GraphURL: server.URL, HTTPClient: server.Client()})
	verified, err := f.Refresh(context.Background(), "EAAgood")
	require.NoError(t, err)
	assert.Equal(t, "EAAgood", verified.Credential)
	assert.Equal(t, 1, calls)
}

func newGithubServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login/oauth/access_token":
			assert.Equal(t, http.MethodPost, r.Method)
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			values, err := url.ParseQuery(string(body))
			assert.NoError(t, err)
			assert.Equal(t, "client-id", values.Get("client_id"))
			assert.Equal(t, "client-secret", values.Get("client_secret"))
			assert.Equal(t, "http://localhost:8080/login", values.Get("redirect_uri"))

			if values.Get("code") != "0123456789abcdef0123" {
				writeJSON(w, http.StatusOK, map[string]any{
					"error":             "bad_verification_code",
					"error_description": "The code passed is incorrect or expired.",
				})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "gho_exchanged",
				"token_type":   "bearer",
			})
		case "/user":
			switch r.Header.Get("Authorization") {
			case "Bearer gho_exchanged":
				writeJSON(w, http.StatusOK, map[string]any{"id": 583231, "login": "octocat", "name": "The Octocat"})
			case "Bearer gho_nameless":
				writeJSON(w, http.StatusOK, map[string]any{"id": 42, "login": "hubot"})
			default:
				writeJSON(w, http.StatusUnauthorized, map[string]any{
					"message":           "Bad credentials",
					"documentation_url": "https://docs.github.com/rest",
				})
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestGithub(server *httptest.Server) *Github {
	return NewGithub(GithubConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/login",
		APIURL:       server.URL,
		OAuthURL:     server.URL + "/login/oauth/access_token",
		HTTPClient:   server.Client(),
	})
}

func TestGithub_AccessToken(t *testing.T) {
	server := newGithubServer(t)
	defer server.Close()
	g := newTestGithub(server)

	verified, err := g.CheckIncomingCredential(context.Background(), "gho_exchanged")
	require.NoError(t, err)
	assert.Equal(t, "583231", verified.Identity.ExternalID)
	assert.Equal(t, "The Octocat", verified.Identity.DisplayName)
	assert.Equal(t, "gho_exchanged", verified.Credential)
}

func TestGithub_NameFallsBackToLogin(t *testing.T) {
	server := newGithubServer(t)
	defer server.Close()
	g := newTestGithub(server)

	verified, err := g.CheckIncomingCredential(context.Background(), "gho_nameless")
	require.NoError(t, err)
	assert.Equal(t, "42", verified.Identity.ExternalID)
	assert.Equal(t, "hubot", verified.Identity.DisplayName)
}

func TestGithub_ExchangesCode(t *testing.T) {
	server := newGithubServer(t)
	defer server.Close()
	g := newTestGithub(server)

	code := "0123456789abcdef0123"
	require.Len(t, code, ExchangeCodeLength)

	verified, err := g.CheckIncomingCredential(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, "gho_exchanged", verified.Credential)
	assert.Equal(t, "583231", verified.Identity.ExternalID)

	session, err := g.Finalize(context.Background(), &domain.User{ID: 7}, verified.Credential)
	require.NoError(t, err)
	assert.Equal(t, "bearer gho_exchanged", session.Authorization)
}

func TestGithub_BadCode(t *testing.T) {
	server := newGithubServer(t)
	defer server.Close()
	g := newTestGithub(server)

	_, err := g.CheckIncomingCredential(context.Background(), "zzzzzzzzzzzzzzzzzzzz")
	requireProviderReason(t, err, domain.ReasonProviderRejected)
}

func TestGithub_BadCredentials(t *testing.T) {
	server := newGithubServer(t)
	defer server.Close()
	g := newTestGithub(server)

	_, err := g.CheckIncomingCredential(context.Background(), "gho_revoked")
	requireProviderReason(t, err, domain.ReasonProviderRejected)
	assert.Contains(t, err.Error(), "Bad credentials")
}

func TestUpstream_TimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := server.Client()
	client.Timeout = 50 * time.Millisecond
	g := NewGoogle(GoogleConfig{UserInfoURL: server.URL, HTTPClient: client})

	_, err := g.CheckIncomingCredential(context.Background(), "ya29.slow")
	requireProviderReason(t, err, domain.ReasonProviderUnavailable)
}

func TestUpstream_UnreachableIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	f := NewFacebook(FacebookConfig{GraphURL: addr})
	_, err := f.CheckIncomingCredential(context.Background(), "EAAgood")
	requireProviderReason(t, err, domain.ReasonProviderUnavailable)
}

func TestNewHTTPClient_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewHTTPClient(0).Timeout)
	assert.Equal(t, 2*time.Second, NewHTTPClient(2*time.Second).Timeout)
}
