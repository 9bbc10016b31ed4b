package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/displayables/dashboard-api/internal/core/domain"
)

func init() {
	lang := language.Spanish

	// Validation
	setReason(lang, domain.ReasonLoginDetailsRequired, "Se requieren un nombre de usuario y una contraseña.")
	setReason(lang, domain.ReasonInvalidUsernameLength, "El nombre de usuario debe tener entre %d y %d caracteres.")
	setReason(lang, domain.ReasonInvalidPasswordLength, "La contraseña debe tener entre %d y %d caracteres.")
	setReason(lang, domain.ReasonUsernameRestricted, "Ese nombre de usuario no está permitido.")
	setReason(lang, domain.ReasonUsernameExists, "Ese nombre de usuario ya está en uso.")
	setReason(lang, domain.ReasonPasswordUpdateRequired, "Se requieren la contraseña actual y la nueva.")

	// Authentication
	setReason(lang, domain.ReasonIncorrectPassword, "La contraseña es incorrecta.")
	setReason(lang, domain.ReasonUsernameNotFound, "No existe una cuenta con ese nombre de usuario.")
	setReason(lang, domain.ReasonExternalAccount, "Esta cuenta inicia sesión con un proveedor externo.")
	setReason(lang, domain.ReasonTokenMissing, "Se requiere un token de autorización.")
	setReason(lang, domain.ReasonTokenExpired, "El token de autorización ha caducado.")
	setReason(lang, domain.ReasonTokenMalformed, "El token de autorización está mal formado.")
	setReason(lang, domain.ReasonTokenBadSignature, "La firma del token de autorización no es válida.")
	setReason(lang, domain.ReasonTokenInvalid, "El token de autorización no es válido.")
	setReason(lang, domain.ReasonProviderMismatch, "Esta cuenta pertenece a otro proveedor.")
	setReason(lang, domain.ReasonAccountNotProvisioned, "Inicia sesión con este proveedor antes de usar el token.")
	setReason(lang, domain.ReasonTooManyAttempts, "Demasiados intentos fallidos. Inténtalo más tarde.")

	// Provider
	setReason(lang, domain.ReasonProviderRejected, "El proveedor rechazó el token de autorización.")
	setReason(lang, domain.ReasonProviderUnavailable, "No se pudo contactar con el proveedor.")

	setReason(lang, domain.ReasonSomethingWrong, "Algo salió mal, inténtalo de nuevo.")

	_ = message.SetString(lang, KeyAuthenticated, "autenticado %s")
	_ = message.SetString(lang, KeyTokenRefresh, "token renovado para %s")
	_ = message.SetString(lang, KeyRegistered, "registrado %s")
	_ = message.SetString(lang, KeyPasswordUpdated, "contraseña actualizada")
}
