package middleware

import (
	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"

	"github.com/displayables/dashboard-api/internal/i18n"
)

const languageKey = "language"

// Locale resolves the response language from the lang and Accept-Language
// headers.
func Locale() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header
			c.Set(languageKey, i18n.ResolveTag(h.Get(i18n.LangHeader), h.Get("Accept-Language")))
			return next(c)
		}
	}
}

// Language returns the tag chosen by Locale, or the default when the
// middleware did not run.
func Language(c echo.Context) language.Tag {
	if tag, ok := c.Get(languageKey).(language.Tag); ok {
		return tag
	}
	return i18n.ResolveTag(c.Request().Header.Get(i18n.LangHeader), c.Request().Header.Get("Accept-Language"))
}
