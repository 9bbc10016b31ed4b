package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/security"
)

const (
	// ProviderParam names the query parameter and header carrying the
	// provider tag.
	ProviderParam = "provider"

	claimsKey = "claims"
)

// Verifier validates a bearer credential for a provider.
type Verifier interface {
	Verify(ctx context.Context, provider domain.Provider, bearer string) (*domain.Claims, error)
}

// ProviderTag reads the provider from the query string, then the header.
// Missing or unknown tags resolve to local.
func ProviderTag(c echo.Context) domain.Provider {
	tag := strings.TrimSpace(c.QueryParam(ProviderParam))
	if tag == "" {
		tag = strings.TrimSpace(c.Request().Header.Get(ProviderParam))
	}
	return domain.ParseProvider(tag)
}

// Bearer extracts the credential from the Authorization header.
func Bearer(c echo.Context) string {
	token, _ := security.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	return token
}

// Auth guards protected routes: the bearer is verified with the provider named
// by the request and the resulting claims are stored on the context.
func Auth(v Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bearer := Bearer(c)
			if bearer == "" {
				return domain.NewAuthenticationError(domain.ReasonTokenMissing, nil)
			}

			claims, err := v.Verify(c.Request().Context(), ProviderTag(c), bearer)
			if err != nil {
				return err
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// Claims returns the claims stored by Auth.
func Claims(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}
