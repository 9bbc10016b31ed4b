package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/displayables/dashboard-api/internal/api/middleware"
	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
	"github.com/displayables/dashboard-api/internal/i18n"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=6,max=64"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Message  string          `json:"message"`
	Username string          `json:"username"`
	ID       int64           `json:"id"`
	Provider domain.Provider `json:"provider,omitempty"`
	Name     string          `json:"name,omitempty"`
}

// Register creates a new local account.
//
// @Summary      Register a local user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        lang  header    string              false  "Response language (en, es)"
// @Param        body  body      credentialsRequest  true   "Username and password"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Failure      500   {object}  errorBody
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError(domain.ReasonLoginDetailsRequired)
	}
	req.Username = domain.NormalizeUsername(req.Username)
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sessionResponse{
		Message:  i18n.Text(middleware.Language(c), i18n.KeyRegistered, user.Username),
		Username: user.Username,
		ID:       user.ID,
		Provider: user.Provider,
		Name:     user.Name,
	})
}

// Login authenticates with the provider named by the request and issues a
// session. Local logins post credentials; external logins send the provider
// token in the Authorization header.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        provider       query     string              false  "local, google, facebook or github"
// @Param        Authorization  header    string              false  "bearer <provider token>"
// @Param        body           body      loginRequest        false  "Local credentials"
// @Success      200            {object}  sessionResponse
// @Header       200            {string}  Authorization  "bearer <token>"
// @Failure      400            {object}  errorBody
// @Failure      401            {object}  errorBody
// @Failure      429            {object}  errorBody
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	provider := middleware.ProviderTag(c)
	in := ports.LoginInput{Provider: provider}

	if provider.IsExternal() {
		in.Bearer = middleware.Bearer(c)
	} else {
		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return domain.NewValidationError(domain.ReasonLoginDetailsRequired)
		}
		req.Username = domain.NormalizeUsername(req.Username)
		if err := c.Validate(&req); err != nil {
			return err
		}
		in.Username, in.Password = req.Username, req.Password
	}

	session, err := h.authService.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderAuthorization, session.Authorization)
	return c.JSON(http.StatusOK, sessionResponse{
		Message:  i18n.Text(middleware.Language(c), i18n.KeyAuthenticated, session.User.Name),
		Username: session.User.Username,
		ID:       session.User.ID,
		Provider: session.User.Provider,
		Name:     session.User.Name,
	})
}

// Refresh reconfirms the current credential and returns the one to continue
// with in the Authorization header.
//
// @Summary      Refresh a session
// @Tags         auth
// @Produce      json
// @Param        provider       query     string  false  "local, google, facebook or github"
// @Param        Authorization  header    string  true   "bearer <token>"
// @Success      200            {object}  sessionResponse
// @Header       200            {string}  Authorization  "bearer <token>"
// @Failure      401            {object}  errorBody
// @Router       /login/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	session, err := h.authService.Refresh(c.Request().Context(), middleware.ProviderTag(c), middleware.Bearer(c))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderAuthorization, session.Authorization)
	return c.JSON(http.StatusOK, sessionResponse{
		Message:  i18n.Text(middleware.Language(c), i18n.KeyTokenRefresh, session.User.Name),
		Username: session.User.Username,
		ID:       session.User.ID,
	})
}
