package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/displayables/dashboard-api/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
// Failures are reported as *domain.AuthError validation errors.
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	// A missing field is reported before any length problem.
	for _, fe := range ve {
		if fe.Tag() == "required" {
			return domain.NewValidationError(fieldReason(fe))
		}
	}
	return domain.NewValidationError(fieldReason(ve[0]))
}

// fieldReason converts a single FieldError into the matching failure reason.
func fieldReason(fe validator.FieldError) domain.Reason {
	switch fe.Field() {
	case "oldPassword":
		return domain.ReasonPasswordUpdateRequired
	case "username":
		if fe.Tag() == "required" {
			return domain.ReasonLoginDetailsRequired
		}
		return domain.ReasonInvalidUsernameLength
	case "password":
		if fe.Tag() == "required" {
			if fe.StructNamespace() == "updatePasswordRequest.Password" {
				return domain.ReasonPasswordUpdateRequired
			}
			return domain.ReasonLoginDetailsRequired
		}
		return domain.ReasonInvalidPasswordLength
	default:
		return domain.ReasonLoginDetailsRequired
	}
}
