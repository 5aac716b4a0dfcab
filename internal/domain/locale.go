package domain

import "strings"

// Locale is the active display language.
type Locale string

// Supported locales.
const (
	LocaleFR Locale = "fr"
	LocaleEN Locale = "en"
)

// DefaultLocale is used on cold start when nothing was persisted.
const DefaultLocale = LocaleFR

// ParseLocale normalizes code ("FR", " en ", "fr-CA") to a supported locale.
func ParseLocale(code string) (Locale, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if base, _, ok := strings.Cut(code, "-"); ok {
		code = base
	}
	switch Locale(code) {
	case LocaleFR:
		return LocaleFR, true
	case LocaleEN:
		return LocaleEN, true
	default:
		return "", false
	}
}

// Pick returns fr or en depending on l. An empty translation falls back to
// the other language.
func (l Locale) Pick(fr, en string) string {
	if l == LocaleEN {
		if en != "" {
			return en
		}
		return fr
	}
	if fr != "" {
		return fr
	}
	return en
}
