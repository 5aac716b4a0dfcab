package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/simp-lee/amcham/internal/domain"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the user's language preference.
	LangCookieName = "amcham_lang"
)

var matcher = language.NewMatcher([]language.Tag{language.French, language.English})

// ResolveRequest picks the locale a request asks for: the lang query
// parameter, then the language cookie, then Accept-Language when
// acceptHeader is set. ok is false when the request expresses no preference.
func ResolveRequest(r *http.Request, acceptHeader bool) (loc domain.Locale, ok bool) {
	if r == nil {
		return "", false
	}
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if loc, ok := domain.ParseLocale(v); ok {
			return loc, true
		}
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if loc, ok := domain.ParseLocale(cookie.Value); ok {
			return loc, true
		}
	}
	if !acceptHeader {
		return "", false
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, conf := matcher.Match(tags...)
			if conf != language.No {
				return Supported()[idx], true
			}
		}
	}
	return "", false
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, loc domain.Locale) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    string(loc),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}
