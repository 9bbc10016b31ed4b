package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/displayables/dashboard-api/internal/api/middleware"
	"github.com/displayables/dashboard-api/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. Missing
// claims mean the route was wired without the guard; treat it as an
// unauthenticated request.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil, domain.NewAuthenticationError(domain.ReasonTokenMissing, nil)
	}
	return claims, nil
}
