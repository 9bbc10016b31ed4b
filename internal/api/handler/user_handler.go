package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/displayables/dashboard-api/internal/api/middleware"
	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
	"github.com/displayables/dashboard-api/internal/i18n"
)

type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type selfResponse struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Username string          `json:"username"`
	Provider domain.Provider `json:"provider"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	Password    string `json:"password" validate:"required,min=6,max=64"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Self returns the authenticated user's basic information.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Param        provider       query     string  false  "local, google, facebook or github"
// @Param        Authorization  header    string  true   "bearer <token>"
// @Success      200            {object}  selfResponse
// @Failure      401            {object}  errorBody
// @Router       /users/self [get]
func (h *UserHandler) Self(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, selfResponse{
		ID:       claims.ID,
		Name:     claims.Name,
		Username: claims.Username,
		Provider: claims.Provider,
	})
}

// UpdatePassword replaces the password of a local account.
//
// @Summary      Update password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        Authorization  header    string                 true  "bearer <token>"
// @Param        body           body      updatePasswordRequest  true  "Current and new password"
// @Success      200            {object}  messageResponse
// @Failure      400            {object}  errorBody
// @Failure      401            {object}  errorBody
// @Router       /users/self/password [put]
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError(domain.ReasonPasswordUpdateRequired)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.UpdatePassword(c.Request().Context(), claims.ID, req.OldPassword, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{
		Message: i18n.Text(middleware.Language(c), i18n.KeyPasswordUpdated),
	})
}
