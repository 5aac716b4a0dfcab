package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/i18n"
)

const localeContextKey = "locale"

// LocaleSource is satisfied by *i18n.Store.
type LocaleSource interface {
	Current() domain.Locale
	Explicit() bool
}

// Locale resolves the display language of the request: the "lang" query
// parameter or cookie wins, then the store's current value. Accept-Language
// is only consulted while no language was ever chosen explicitly.
func Locale(src LocaleSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		loc := src.Current()
		if l, ok := i18n.ResolveRequest(c.Request, !src.Explicit()); ok {
			loc = l
		}
		c.Set(localeContextKey, loc)
		c.Header("Content-Language", string(loc))
		c.Next()
	}
}

// LocaleFrom returns the locale set by Locale.
func LocaleFrom(c *gin.Context) (domain.Locale, bool) {
	v, ok := c.Get(localeContextKey)
	if !ok {
		return "", false
	}
	loc, ok := v.(domain.Locale)
	return loc, ok
}

// RequestLocale is LocaleFrom falling back to domain.DefaultLocale.
func RequestLocale(c *gin.Context) domain.Locale {
	if loc, ok := LocaleFrom(c); ok {
		return loc
	}
	return domain.DefaultLocale
}
