// Package listview implements the list-view controller shared by every
// directory screen: search criteria, pagination, locale projection and the
// loading/error flags.
package listview

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/i18n"
	"github.com/simp-lee/amcham/internal/metrics"
)

// Mode selects where filtering and pagination happen.
type Mode int

const (
	// ServerPaginated fetches a page from the backend on every change.
	ServerPaginated Mode = iota
	// ClientFiltered loads the whole collection once and filters in memory.
	ClientFiltered
)

// DefaultPageSize applies when Config.PageSize is not set.
const DefaultPageSize = 10

// Source is the resource client a controller reads from.
type Source[T domain.Record] interface {
	List(ctx context.Context, c domain.Criteria) (*domain.Page[T], error)
	All(ctx context.Context) ([]T, error)
}

// Config wires a controller to its resource.
type Config[T domain.Record, V any] struct {
	Name   string
	Mode   Mode
	Source Source[T]
	// Project builds the displayed row of a record for a locale.
	Project func(rec T, loc domain.Locale) V
	// Dimensions maps filter keys to the label family of their "all" entry.
	Dimensions map[string]i18n.Dimension

	// SearchText returns the fields matched by the term (client mode).
	SearchText func(rec T, loc domain.Locale) []string
	// FilterValue returns the value of filter key on rec (client mode).
	FilterValue func(rec T, key string) string
	// Sort orders the filtered set (client mode). Optional.
	Sort func(recs []T, loc domain.Locale)

	PageSize int
	Logger   *slog.Logger
	Metrics  *metrics.Collector
}

// Patch is a partial criteria update. Nil fields are left unchanged; a filter
// set to "" or the "all" sentinel clears that filter.
type Patch struct {
	Term   *string
	Filter map[string]string
	Page   *int
	Size   *int
}

// State is a snapshot of what the view renders.
type State[V any] struct {
	Name          string            `json:"name"`
	Rows          []V               `json:"rows"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
	Term          string            `json:"term"`
	Filter        map[string]string `json:"filter"`
	Locale        domain.Locale     `json:"locale"`
	Loading       bool              `json:"loading"`
	Error         string            `json:"error,omitempty"`
}

// Controller holds the state of one list view. It is safe for concurrent use.
type Controller[T domain.Record, V any] struct {
	cfg Config[T, V]
	log *slog.Logger

	mu       sync.Mutex
	criteria domain.Criteria
	locale   domain.Locale
	// records is the current page (server mode) or the full set (client mode).
	records    []T
	filtered   []T
	visible    []T
	rows       []V
	total      int64
	totalPages int
	loaded     bool
	loading    bool
	errMsg     string
	seq        uint64
}

// New returns a controller starting on page 0 in locale loc.
func New[T domain.Record, V any](cfg Config[T, V], loc domain.Locale) *Controller[T, V] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller[T, V]{
		cfg:      cfg,
		log:      log.With(slog.String("view", cfg.Name)),
		criteria: domain.Criteria{Filter: map[string]string{}, Size: cfg.PageSize},
		locale:   loc,
	}
}

// LocaleSource is satisfied by *i18n.Store.
type LocaleSource interface {
	Subscribe(fn func(domain.Locale)) (unsubscribe func())
}

// Bind follows the locale of src until the returned function is called.
func (c *Controller[T, V]) Bind(src LocaleSource) (unbind func()) {
	return src.Subscribe(c.OnLocaleChange)
}

// OnCriteriaChange merges the term, filters and size of p. The page goes back
// to 0 when the selection changes. Exactly one fetch (server mode) or one
// re-filter (client mode) follows.
func (c *Controller[T, V]) OnCriteriaChange(ctx context.Context, p Patch) error {
	p.Page = nil
	return c.Apply(ctx, p)
}

// OnPageChange moves to page n.
func (c *Controller[T, V]) OnPageChange(ctx context.Context, n int) error {
	if n < 0 {
		n = 0
	}
	return c.Apply(ctx, Patch{Page: &n})
}

// Apply merges p like OnCriteriaChange but also honours p.Page when the
// selection is unchanged.
func (c *Controller[T, V]) Apply(ctx context.Context, p Patch) error {
	c.mu.Lock()
	prev := c.criteria
	next := c.merge(prev, p)
	if !next.SameSearch(prev) || next.Size != prev.Size {
		next.Page = 0
	}
	c.criteria = next

	if c.cfg.Mode == ClientFiltered && c.loaded {
		c.refilter()
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.fetch(ctx)
}

// Refresh re-reads the current page from the backend, keeping criteria.
func (c *Controller[T, V]) Refresh(ctx context.Context) error {
	return c.fetch(ctx)
}

// OnLocaleChange re-projects every row for loc. Criteria and page are
// untouched. In client mode the loaded set is re-filtered and re-sorted,
// since search text and collation depend on the locale.
func (c *Controller[T, V]) OnLocaleChange(loc domain.Locale) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locale == loc {
		return
	}
	c.locale = loc
	if c.cfg.Mode == ClientFiltered && c.loaded {
		c.refilter()
		return
	}
	c.project()
}

// State returns a snapshot of the view.
func (c *Controller[T, V]) State() State[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// StateIn returns a snapshot rendered in loc without changing the
// controller's own locale.
func (c *Controller[T, V]) StateIn(loc domain.Locale) State[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if loc == "" || loc == c.locale {
		return c.snapshot()
	}

	st := c.snapshot()
	visible := c.visible
	if c.cfg.Mode == ClientFiltered && c.loaded {
		var filtered []T
		filtered, visible, st.TotalPages, st.Page = c.selectPage(loc)
		st.TotalElements = int64(len(filtered))
	}
	rows := make([]V, len(visible))
	for i, rec := range visible {
		rows[i] = c.cfg.Project(rec, loc)
	}
	st.Rows = rows
	st.Locale = loc
	return st
}

// snapshot builds the State for the controller's locale. Caller holds c.mu.
func (c *Controller[T, V]) snapshot() State[V] {

	filter := make(map[string]string, len(c.criteria.Filter))
	for k := range c.criteria.Filter {
		if v := c.criteria.ActiveFilter(k); v != "" {
			filter[k] = v
		}
	}
	rows := make([]V, len(c.rows))
	copy(rows, c.rows)

	return State[V]{
		Name:          c.cfg.Name,
		Rows:          rows,
		Page:          c.criteria.Page,
		Size:          c.criteria.Size,
		TotalElements: c.total,
		TotalPages:    c.totalPages,
		Term:          c.criteria.Term,
		Filter:        filter,
		Locale:        c.locale,
		Loading:       c.loading,
		Error:         c.errMsg,
	}
}

// Criteria returns a copy of the current criteria.
func (c *Controller[T, V]) Criteria() domain.Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria.Clone()
}

func (c *Controller[T, V]) merge(prev domain.Criteria, p Patch) domain.Criteria {
	next := prev.Clone()
	if next.Filter == nil {
		next.Filter = map[string]string{}
	}
	if p.Term != nil {
		next.Term = strings.TrimSpace(*p.Term)
	}
	for k, v := range p.Filter {
		v = strings.TrimSpace(v)
		if v == "" || c.isAll(k, v) {
			delete(next.Filter, k)
			continue
		}
		next.Filter[k] = v
	}
	if p.Size != nil && *p.Size > 0 {
		next.Size = *p.Size
	}
	if p.Page != nil {
		next.Page = max(*p.Page, 0)
	}
	return next
}

func (c *Controller[T, V]) isAll(key, value string) bool {
	if dim, ok := c.cfg.Dimensions[key]; ok {
		return i18n.IsAll(dim, value, c.locale)
	}
	return strings.EqualFold(value, domain.FilterAll)
}

// fetch issues one backend request tagged with a new sequence number.
// Responses to superseded requests are dropped.
func (c *Controller[T, V]) fetch(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	criteria := c.criteria.Clone()
	c.loading = true
	c.mu.Unlock()

	var (
		page *domain.Page[T]
		all  []T
		err  error
	)
	if c.cfg.Mode == ClientFiltered {
		all, err = c.cfg.Source.All(ctx)
	} else {
		page, err = c.cfg.Source.List(ctx, criteria)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.cfg.Metrics.StaleResponse(c.cfg.Name)
		c.log.DebugContext(ctx, "discarding stale list response", slog.Uint64("seq", seq), slog.Uint64("latest", c.seq))
		return nil
	}
	c.loading = false

	if err != nil {
		c.errMsg = errorMessage(err)
		c.log.WarnContext(ctx, "list fetch failed", slog.Any("error", err))
		return err
	}
	c.errMsg = ""

	if c.cfg.Mode == ClientFiltered {
		c.records = all
		c.loaded = true
		c.refilter()
		return nil
	}

	c.records = page.Content
	c.visible = page.Content
	c.total = page.TotalElements
	c.totalPages = page.TotalPages
	c.project()
	return nil
}

// refilter recomputes the filtered set and the visible slice from records.
// Caller holds c.mu.
func (c *Controller[T, V]) refilter() {
	c.filtered, c.visible, c.totalPages, c.criteria.Page = c.selectPage(c.locale)
	c.total = int64(len(c.filtered))
	c.project()
}

// selectPage filters and sorts records for loc and slices the current page,
// clamped to the last page. Caller holds c.mu.
func (c *Controller[T, V]) selectPage(loc domain.Locale) (filtered, visible []T, totalPages, page int) {
	filtered = make([]T, 0, len(c.records))
	for _, rec := range c.records {
		if c.matches(rec, loc) {
			filtered = append(filtered, rec)
		}
	}
	if c.cfg.Sort != nil {
		c.cfg.Sort(filtered, loc)
	}

	size := c.criteria.Size
	totalPages = (len(filtered) + size - 1) / size
	page = c.criteria.Page
	if totalPages > 0 && page >= totalPages {
		page = totalPages - 1
	}
	start := min(page*size, len(filtered))
	end := min(start+size, len(filtered))
	return filtered, filtered[start:end], totalPages, page
}

func (c *Controller[T, V]) matches(rec T, loc domain.Locale) bool {
	if c.cfg.SearchText != nil && !i18n.Matches(c.criteria.Term, c.cfg.SearchText(rec, loc)...) {
		return false
	}
	if c.cfg.FilterValue == nil {
		return true
	}
	for key := range c.criteria.Filter {
		want := c.criteria.ActiveFilter(key)
		if want == "" {
			continue
		}
		got := c.cfg.FilterValue(rec, key)
		if dim, ok := c.cfg.Dimensions[key]; ok {
			want, got = i18n.Key(dim, want), i18n.Key(dim, got)
		}
		if i18n.Fold(want) != i18n.Fold(got) {
			return false
		}
	}
	return true
}

// project rebuilds rows from the visible records. Caller holds c.mu.
func (c *Controller[T, V]) project() {
	rows := make([]V, len(c.visible))
	for i, rec := range c.visible {
		rows[i] = c.cfg.Project(rec, c.locale)
	}
	c.rows = rows
}

func errorMessage(err error) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return domain.ErrConnection.Message
}
