package i18n

import (
	"slices"
	"strings"

	"github.com/simp-lee/amcham/internal/domain"
)

// Dimension names an enumerated value family shown in filters and tables.
type Dimension string

const (
	Country  Dimension = "country"
	Status   Dimension = "status"
	Weekday  Dimension = "weekday"
	Sector   Dimension = "sector"
	Category Dimension = "category"
)

type label struct {
	fr string
	en string
}

func (l label) in(loc domain.Locale) string { return loc.Pick(l.fr, l.en) }

type entry struct {
	key string
	label
}

// Tables are ordered; Options preserves the order.
var tables = map[Dimension][]entry{
	Country: {
		{"SN", label{"Sénégal", "Senegal"}},
		{"US", label{"États-Unis", "United States"}},
		{"FR", label{"France", "France"}},
		{"CI", label{"Côte d'Ivoire", "Ivory Coast"}},
		{"ML", label{"Mali", "Mali"}},
		{"GN", label{"Guinée", "Guinea"}},
		{"GM", label{"Gambie", "Gambia"}},
		{"MR", label{"Mauritanie", "Mauritania"}},
		{"MA", label{"Maroc", "Morocco"}},
		{"NG", label{"Nigéria", "Nigeria"}},
		{"GH", label{"Ghana", "Ghana"}},
		{"CM", label{"Cameroun", "Cameroon"}},
		{"CA", label{"Canada", "Canada"}},
		{"GB", label{"Royaume-Uni", "United Kingdom"}},
		{"DE", label{"Allemagne", "Germany"}},
		{"BE", label{"Belgique", "Belgium"}},
		{"CH", label{"Suisse", "Switzerland"}},
		{"CN", label{"Chine", "China"}},
		{"AE", label{"Émirats arabes unis", "United Arab Emirates"}},
		{"ZA", label{"Afrique du Sud", "South Africa"}},
	},
	Status: {
		{domain.StatusActive, label{"Actif", "Active"}},
		{domain.StatusInactive, label{"Inactif", "Inactive"}},
		{domain.StatusPending, label{"En attente", "Pending"}},
		{domain.StatusDraft, label{"Brouillon", "Draft"}},
		{domain.StatusPublished, label{"Publié", "Published"}},
		{domain.StatusArchived, label{"Archivé", "Archived"}},
	},
	Weekday: {
		{"MONDAY", label{"Lundi", "Monday"}},
		{"TUESDAY", label{"Mardi", "Tuesday"}},
		{"WEDNESDAY", label{"Mercredi", "Wednesday"}},
		{"THURSDAY", label{"Jeudi", "Thursday"}},
		{"FRIDAY", label{"Vendredi", "Friday"}},
		{"SATURDAY", label{"Samedi", "Saturday"}},
		{"SUNDAY", label{"Dimanche", "Sunday"}},
	},
}

var allLabels = map[Dimension]label{
	Country:  {"Tous les pays", "All countries"},
	Status:   {"Tous les statuts", "All statuses"},
	Weekday:  {"Tous les jours", "All days"},
	Sector:   {"Tous les secteurs", "All sectors"},
	Category: {"Toutes les catégories", "All categories"},
}

// Label translates value of dimension d into loc. value may be the table key
// or a label in any supported locale. Unknown values are returned unchanged.
func Label(d Dimension, value string, loc domain.Locale) string {
	if e, ok := lookup(d, value); ok {
		return e.in(loc)
	}
	return value
}

// Key returns the canonical key for value, or value itself when unknown.
func Key(d Dimension, value string) string {
	if e, ok := lookup(d, value); ok {
		return e.key
	}
	return value
}

func lookup(d Dimension, value string) (entry, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return entry{}, false
	}
	for _, e := range tables[d] {
		if strings.EqualFold(e.key, v) || Fold(e.fr) == Fold(v) || Fold(e.en) == Fold(v) {
			return e, true
		}
	}
	return entry{}, false
}

// AllLabel is the "no filter" option text for d in loc.
func AllLabel(d Dimension, loc domain.Locale) string {
	if l, ok := allLabels[d]; ok {
		return l.in(loc)
	}
	return loc.Pick("Tous", "All")
}

// IsAll reports whether value selects "no filter" for d. Besides the reserved
// domain.FilterAll token, the "all" label of the active locale is accepted, as
// well as the other locale's label since a locale switch keeps the criteria.
func IsAll(d Dimension, value string, active domain.Locale) bool {
	v := strings.TrimSpace(value)
	if strings.EqualFold(v, domain.FilterAll) {
		return true
	}
	if v == "" {
		return false
	}
	f := Fold(v)
	if f == Fold(AllLabel(d, active)) {
		return true
	}
	for _, loc := range Supported() {
		if loc != active && f == Fold(AllLabel(d, loc)) {
			return true
		}
	}
	return false
}

// Option is one dropdown entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options lists the entries of d in loc, preceded by the "all" entry.
func Options(d Dimension, loc domain.Locale) []Option {
	entries := tables[d]
	opts := make([]Option, 0, len(entries)+1)
	opts = append(opts, Option{Value: domain.FilterAll, Label: AllLabel(d, loc)})
	for _, e := range entries {
		opts = append(opts, Option{Value: e.key, Label: e.in(loc)})
	}
	return opts
}

// Dimensions returns the dimensions with an enumerated table.
func Dimensions() []Dimension {
	dims := make([]Dimension, 0, len(tables))
	for d := range tables {
		dims = append(dims, d)
	}
	slices.Sort(dims)
	return dims
}

// Supported returns the supported locales in display order.
func Supported() []domain.Locale {
	return []domain.Locale{domain.LocaleFR, domain.LocaleEN}
}
