package i18n

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/simp-lee/amcham/internal/domain"
)

// Tag returns the language tag for loc.
func Tag(loc domain.Locale) language.Tag {
	if loc == domain.LocaleEN {
		return language.English
	}
	return language.French
}

// Printer returns a message printer for loc.
func Printer(loc domain.Locale) *message.Printer {
	return message.NewPrinter(Tag(loc))
}

// FormatCount formats n with the grouping rules of loc.
func FormatCount(loc domain.Locale, n int64) string {
	return Printer(loc).Sprintf("%d", n)
}

// SortBy orders items by the locale-aware collation of key, ignoring case.
func SortBy[T any](loc domain.Locale, items []T, key func(T) string) {
	c := collate.New(Tag(loc), collate.IgnoreCase)
	slices.SortStableFunc(items, func(a, b T) int {
		return c.CompareString(key(a), key(b))
	})
}
