// Package i18n resolves the request language and renders user-facing
// messages for auth outcomes.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/displayables/dashboard-api/internal/core/domain"
)

// LangHeader is the request header clients use to pick a language.
const LangHeader = "lang"

// Message keys for successful outcomes.
const (
	KeyAuthenticated   = "user.authenticated"
	KeyTokenRefresh    = "user.token_refresh"
	KeyRegistered      = "user.registered"
	KeyPasswordUpdated = "user.password_updated"
)

var (
	supported = []language.Tag{language.English, language.Spanish}
	matcher   = language.NewMatcher(supported)

	// known holds every reason with a catalog entry; filled by the message
	// files' init functions.
	known = map[domain.Reason]bool{}
)

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.English
}

// Printer returns a message printer for the supplied tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// ResolveTag picks the best supported language from the lang header value,
// falling back to Accept-Language and then English.
func ResolveTag(lang, acceptLanguage string) language.Tag {
	if lang = strings.TrimSpace(lang); lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			return match(tag)
		}
		// Legacy clients send language names.
		switch strings.ToLower(lang) {
		case "english":
			return language.English
		case "spanish", "español", "espanol":
			return language.Spanish
		}
	}
	if accept := strings.TrimSpace(acceptLanguage); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return match(tags...)
		}
	}
	return Default()
}

func match(tags ...language.Tag) language.Tag {
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default()
	}
	return supported[idx]
}

// Describe renders the localized description for a failure reason. Unknown
// reasons render as the generic failure text.
func Describe(tag language.Tag, reason domain.Reason) string {
	if !known[reason] {
		reason = domain.ReasonSomethingWrong
	}
	p := Printer(tag)
	switch reason {
	case domain.ReasonInvalidUsernameLength:
		return p.Sprintf(string(reason), domain.UsernameMinLength, domain.UsernameMaxLength)
	case domain.ReasonInvalidPasswordLength:
		return p.Sprintf(string(reason), domain.PasswordMinLength, domain.PasswordMaxLength)
	default:
		return p.Sprintf(string(reason))
	}
}

// Text renders a success message by key.
func Text(tag language.Tag, key string, args ...any) string {
	return Printer(tag).Sprintf(key, args...)
}

func setReason(tag language.Tag, reason domain.Reason, text string) {
	known[reason] = true
	_ = message.SetString(tag, string(reason), text)
}
