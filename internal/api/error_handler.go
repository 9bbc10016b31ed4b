package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/displayables/dashboard-api/internal/api/middleware"
	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/i18n"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error       string `json:"error"`
	Reason      string `json:"reason,omitempty"`
	Description string `json:"description"`
	Message     string `json:"message,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps *domain.AuthError values to their HTTP status and a localized description.
//   - Passes Echo's own errors (404, 405, bind failures) through with their code.
//   - Logs anything else and answers 500 with the error message.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	lang := middleware.Language(c)

	if ae, ok := domain.AsAuthError(err); ok {
		return statusFor(ae), errorResponse{
			Error:       string(presentedKind(ae.Kind)),
			Reason:      string(ae.Reason),
			Description: i18n.Describe(lang, ae.Reason),
		}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{
			Error:       "request",
			Description: fmt.Sprintf("%v", he.Message),
		}
	}

	// Unexpected error: log the real cause.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{
		Error:       string(domain.KindInternal),
		Reason:      string(domain.ReasonSomethingWrong),
		Description: i18n.Describe(lang, domain.ReasonSomethingWrong),
		Message:     err.Error(),
	}
}

// statusFor maps an auth failure to its HTTP status.
func statusFor(ae *domain.AuthError) int {
	switch ae.Kind {
	case domain.KindValidation:
		if ae.Reason == domain.ReasonUsernameExists {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case domain.KindAuthentication:
		if ae.Reason == domain.ReasonTooManyAttempts {
			return http.StatusTooManyRequests
		}
		return http.StatusUnauthorized
	case domain.KindProvider:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// presentedKind hides provider failures behind the authentication kind.
func presentedKind(k domain.ErrorKind) domain.ErrorKind {
	if k == domain.KindProvider {
		return domain.KindAuthentication
	}
	return k
}
