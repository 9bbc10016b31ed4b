package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/displayables/dashboard-api/internal/core/domain"
)

func init() {
	lang := language.English

	// Validation
	setReason(lang, domain.ReasonLoginDetailsRequired, "A username and password are required.")
	setReason(lang, domain.ReasonInvalidUsernameLength, "Usernames must be between %d and %d characters long.")
	setReason(lang, domain.ReasonInvalidPasswordLength, "Passwords must be between %d and %d characters long.")
	setReason(lang, domain.ReasonUsernameRestricted, "That username is not allowed.")
	setReason(lang, domain.ReasonUsernameExists, "That username is already taken.")
	setReason(lang, domain.ReasonPasswordUpdateRequired, "The current and new passwords are both required.")

	// Authentication
	setReason(lang, domain.ReasonIncorrectPassword, "The password provided is incorrect.")
	setReason(lang, domain.ReasonUsernameNotFound, "No account exists with that username.")
	setReason(lang, domain.ReasonExternalAccount, "This account signs in through an external provider.")
	setReason(lang, domain.ReasonTokenMissing, "An authorization token is required.")
	setReason(lang, domain.ReasonTokenExpired, "The authorization token has expired.")
	setReason(lang, domain.ReasonTokenMalformed, "The authorization token is malformed.")
	setReason(lang, domain.ReasonTokenBadSignature, "The authorization token signature is invalid.")
	setReason(lang, domain.ReasonTokenInvalid, "The authorization token is invalid.")
	setReason(lang, domain.ReasonProviderMismatch, "This account belongs to a different provider.")
	setReason(lang, domain.ReasonAccountNotProvisioned, "Sign in with this provider before using the token.")
	setReason(lang, domain.ReasonTooManyAttempts, "Too many failed attempts. Try again later.")

	// Provider
	setReason(lang, domain.ReasonProviderRejected, "The provider rejected the authorization token.")
	setReason(lang, domain.ReasonProviderUnavailable, "The provider could not be reached.")

	setReason(lang, domain.ReasonSomethingWrong, "Something went wrong, please try again.")

	_ = message.SetString(lang, KeyAuthenticated, "authenticated %s")
	_ = message.SetString(lang, KeyTokenRefresh, "token refreshed for %s")
	_ = message.SetString(lang, KeyRegistered, "registered %s")
	_ = message.SetString(lang, KeyPasswordUpdated, "password updated")
}
