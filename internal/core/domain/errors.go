package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable category of a failed auth flow.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindAuthentication ErrorKind = "authentication"
	KindProvider       ErrorKind = "provider"
	KindInternal       ErrorKind = "internal"
)

// Reason refines an ErrorKind. Reasons double as message catalog keys.
type Reason string

const (
	ReasonLoginDetailsRequired   Reason = "login_details_required"
	ReasonInvalidUsernameLength  Reason = "invalid_username_length"
	ReasonInvalidPasswordLength  Reason = "invalid_password_length"
	ReasonUsernameRestricted     Reason = "username_restricted"
	ReasonUsernameExists         Reason = "username_exists"
	ReasonPasswordUpdateRequired Reason = "password_update_required"

	ReasonIncorrectPassword     Reason = "incorrect_password"
	ReasonUsernameNotFound      Reason = "username_not_found"
	ReasonExternalAccount       Reason = "external_account"
	ReasonTokenMissing          Reason = "token_missing"
	ReasonTokenExpired          Reason = "token_expired"
	ReasonTokenMalformed        Reason = "token_malformed"
	ReasonTokenBadSignature     Reason = "token_bad_signature"
	ReasonTokenInvalid          Reason = "token_invalid"
	ReasonProviderMismatch      Reason = "provider_mismatch"
	ReasonAccountNotProvisioned Reason = "account_not_provisioned"
	ReasonTooManyAttempts       Reason = "too_many_attempts"

	ReasonProviderRejected    Reason = "provider_rejected"
	ReasonProviderUnavailable Reason = "provider_unavailable"

	ReasonSomethingWrong Reason = "something_wrong"
)

// AuthError is the uniform error contract of the authentication flows.
type AuthError struct {
	Kind   ErrorKind
	Reason Reason
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches another *AuthError by kind and reason, so callers can use
// errors.Is(err, domain.NewAuthenticationError(domain.ReasonTokenExpired, nil)).
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

func NewValidationError(reason Reason) *AuthError {
	return &AuthError{Kind: KindValidation, Reason: reason}
}

func NewAuthenticationError(reason Reason, err error) *AuthError {
	return &AuthError{Kind: KindAuthentication, Reason: reason, Err: err}
}

func NewProviderError(reason Reason, err error) *AuthError {
	return &AuthError{Kind: KindProvider, Reason: reason, Err: err}
}

// AsAuthError unwraps err into an *AuthError when possible.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
