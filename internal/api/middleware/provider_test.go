package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/displayables/dashboard-api/internal/core/domain"
)

func TestRequireProvider_Allowed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(claimsKey, &domain.Claims{Username: "alice", Provider: domain.ProviderLocal})

	mw := RequireProvider(domain.ProviderLocal)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireProvider_Denied(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(claimsKey, &domain.Claims{Username: "583231", Provider: domain.ProviderGithub})

	mw := RequireProvider(domain.ProviderLocal)
	err := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})(c)

	ae, ok := domain.AsAuthError(err)
	if !ok || ae.Reason != domain.ReasonExternalAccount {
		t.Fatalf("expected external_account, got %v", err)
	}
}

func TestRequireProvider_NoClaims(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPut, "/", nil), httptest.NewRecorder())

	err := RequireProvider(domain.ProviderLocal)(func(c echo.Context) error { return nil })(c)
	if _, ok := domain.AsAuthError(err); !ok {
		t.Fatalf("expected auth error, got %v", err)
	}
}
