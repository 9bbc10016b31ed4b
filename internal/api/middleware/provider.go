package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/displayables/dashboard-api/internal/core/domain"
)

// RequireProvider restricts a route to accounts owned by one of the given
// providers. It must run after Auth.
func RequireProvider(allowed ...domain.Provider) echo.MiddlewareFunc {
	set := make(map[domain.Provider]struct{}, len(allowed))
	for _, p := range allowed {
		set[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := Claims(c)
			if !ok {
				return domain.NewAuthenticationError(domain.ReasonTokenMissing, nil)
			}
			if _, ok := set[claims.Provider]; !ok {
				return domain.NewAuthenticationError(domain.ReasonExternalAccount, nil)
			}
			return next(c)
		}
	}
}
