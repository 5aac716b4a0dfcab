package listview

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/i18n"
)

type row struct {
	ID      int64
	Name    string
	Country string
}

func projectCompany(c domain.Company, loc domain.Locale) row {
	return row{ID: c.ID, Name: c.Name, Country: i18n.Label(i18n.Country, c.Country, loc)}
}

var companies = []domain.Company{
	{ID: 1, Name: "Société Générale", Country: "SN"},
	{ID: 2, Name: "Sonatel", Country: "SN"},
	{ID: 3, Name: "Acme", Country: "US"},
	{ID: 4, Name: "Orange", Country: "FR"},
	{ID: 5, Name: "Ecobank", Country: "CI"},
}

// fakeSource serves companies, filtering and paging like the backend.
type fakeSource struct {
	mu       sync.Mutex
	records  []domain.Company
	calls    []domain.Criteria
	allCalls int
	err      error
}

func (f *fakeSource) List(_ context.Context, c domain.Criteria) (*domain.Page[domain.Company], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c.Clone())
	if f.err != nil {
		return nil, f.err
	}
	var matched []domain.Company
	for _, rec := range f.records {
		if !i18n.Matches(c.Term, rec.Name) {
			continue
		}
		if v := c.ActiveFilter("country"); v != "" && v != rec.Country {
			continue
		}
		matched = append(matched, rec)
	}
	start := min(c.Page*c.Size, len(matched))
	end := min(start+c.Size, len(matched))
	return &domain.Page[domain.Company]{
		Content:       matched[start:end],
		TotalElements: int64(len(matched)),
		TotalPages:    (len(matched) + c.Size - 1) / c.Size,
		PageNumber:    c.Page,
		PageSize:      c.Size,
	}, nil
}

func (f *fakeSource) All(context.Context) ([]domain.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allCalls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Company(nil), f.records...), nil
}

func newController(src Source[domain.Company], mode Mode, size int) *Controller[domain.Company, row] {
	return New(Config[domain.Company, row]{
		Name:       "companies",
		Mode:       mode,
		Source:     src,
		Project:    projectCompany,
		Dimensions: map[string]i18n.Dimension{"country": i18n.Country},
		SearchText: func(c domain.Company, _ domain.Locale) []string { return []string{c.Name} },
		FilterValue: func(c domain.Company, key string) string {
			if key == "country" {
				return c.Country
			}
			return ""
		},
		PageSize: size,
	}, domain.LocaleFR)
}

func ptr[T any](v T) *T { return &v }

func ids(rows []row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestServerMode_CriteriaChangeResetsPageAndFetchesOnce(t *testing.T) {
	src := &fakeSource{records: companies}
	c := newController(src, ServerPaginated, 2)
	ctx := context.Background()

	if err := c.OnPageChange(ctx, 1); err != nil {
		t.Fatalf("OnPageChange() error = %v", err)
	}
	if got := c.State().Page; got != 1 {
		t.Fatalf("Page = %d, want 1", got)
	}

	before := len(src.calls)
	if err := c.OnCriteriaChange(ctx, Patch{Term: ptr("so")}); err != nil {
		t.Fatalf("OnCriteriaChange() error = %v", err)
	}
	if got := len(src.calls) - before; got != 1 {
		t.Errorf("fetches = %d, want 1", got)
	}
	st := c.State()
	if st.Page != 0 {
		t.Errorf("Page = %d, want 0 after criteria change", st.Page)
	}
	if !equalIDs(ids(st.Rows), []int64{1, 2}) {
		t.Errorf("rows = %v, want [1 2]", ids(st.Rows))
	}
	if st.TotalElements != 2 || st.Loading || st.Error != "" {
		t.Errorf("state = %+v", st)
	}
}

func TestServerMode_EmptyTermMeansNoFilter(t *testing.T) {
	src := &fakeSource{records: companies}
	c := newController(src, ServerPaginated, 10)

	if err := c.OnCriteriaChange(context.Background(), Patch{Term: ptr("   ")}); err != nil {
		t.Fatalf("OnCriteriaChange() error = %v", err)
	}
	if got := c.State().TotalElements; got != int64(len(companies)) {
		t.Errorf("TotalElements = %d, want %d", got, len(companies))
	}
}

func TestAllLabelSentinelIsNoFilter(t *testing.T) {
	for _, mode := range []Mode{ServerPaginated, ClientFiltered} {
		src := &fakeSource{records: companies}
		c := newController(src, mode, 10)
		ctx := context.Background()

		if err := c.OnCriteriaChange(ctx, Patch{Filter: map[string]string{"country": "SN"}}); err != nil {
			t.Fatalf("filter: %v", err)
		}
		if got := c.State().TotalElements; got != 2 {
			t.Fatalf("mode %d: SN total = %d, want 2", mode, got)
		}

		for _, sentinel := range []string{"Tous les pays", "all", "All countries"} {
			if err := c.OnCriteriaChange(ctx, Patch{Filter: map[string]string{"country": sentinel}}); err != nil {
				t.Fatalf("sentinel %q: %v", sentinel, err)
			}
			st := c.State()
			if st.TotalElements != int64(len(companies)) {
				t.Errorf("mode %d: %q total = %d, want all", mode, sentinel, st.TotalElements)
			}
			if _, ok := st.Filter["country"]; ok {
				t.Errorf("mode %d: %q kept as literal filter", mode, sentinel)
			}
		}
	}
}

func TestClientMode_LoadsOnceAndFiltersInMemory(t *testing.T) {
	src := &fakeSource{records: companies}
	c := newController(src, ClientFiltered, 2)
	ctx := context.Background()

	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	st := c.State()
	if st.TotalElements != 5 || st.TotalPages != 3 || !equalIDs(ids(st.Rows), []int64{1, 2}) {
		t.Fatalf("state = %+v", st)
	}

	if err := c.OnPageChange(ctx, 2); err != nil {
		t.Fatalf("OnPageChange() error = %v", err)
	}
	if got := ids(c.State().Rows); !equalIDs(got, []int64{5}) {
		t.Errorf("page 2 rows = %v, want [5]", got)
	}

	// Accent- and case-insensitive search resets the page.
	if err := c.OnCriteriaChange(ctx, Patch{Term: ptr("SOCIETE")}); err != nil {
		t.Fatalf("OnCriteriaChange() error = %v", err)
	}
	st = c.State()
	if st.Page != 0 || !equalIDs(ids(st.Rows), []int64{1}) {
		t.Errorf("search state = %+v", st)
	}

	// Country filter by localized label matches the stored key.
	if err := c.OnCriteriaChange(ctx, Patch{Term: ptr(""), Filter: map[string]string{"country": "États-Unis"}}); err != nil {
		t.Fatalf("OnCriteriaChange() error = %v", err)
	}
	if got := ids(c.State().Rows); !equalIDs(got, []int64{3}) {
		t.Errorf("country rows = %v, want [3]", got)
	}

	if src.allCalls != 1 {
		t.Errorf("All() calls = %d, want 1", src.allCalls)
	}
}

func TestClientMode_Idempotent(t *testing.T) {
	src := &fakeSource{records: companies}
	c := newController(src, ClientFiltered, 10)
	ctx := context.Background()

	_ = c.OnCriteriaChange(ctx, Patch{Term: ptr("o")})
	first := ids(c.State().Rows)
	_ = c.OnCriteriaChange(ctx, Patch{Term: ptr("o")})
	if second := ids(c.State().Rows); !equalIDs(first, second) {
		t.Errorf("repeated search = %v then %v", first, second)
	}
}

func TestClientMode_SortAndClamp(t *testing.T) {
	src := &fakeSource{records: companies}
	c := New(Config[domain.Company, row]{
		Name:    "companies",
		Mode:    ClientFiltered,
		Source:  src,
		Project: projectCompany,
		Sort: func(recs []domain.Company, loc domain.Locale) {
			i18n.SortBy(loc, recs, func(c domain.Company) string { return c.Name })
		},
		PageSize: 2,
	}, domain.LocaleFR)
	ctx := context.Background()

	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := ids(c.State().Rows); !equalIDs(got, []int64{3, 5}) {
		t.Errorf("sorted first page = %v, want [3 5]", got)
	}

	_ = c.OnPageChange(ctx, 2)
	src.mu.Lock()
	src.records = companies[:2]
	src.mu.Unlock()
	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if st := c.State(); st.Page != 0 || st.TotalPages != 1 {
		t.Errorf("after shrink page = %d totalPages = %d, want clamp to 0/1", st.Page, st.TotalPages)
	}
}

func TestOnLocaleChange_ReprojectsWithoutRefetch(t *testing.T) {
	src := &fakeSource{records: companies}
	c := newController(src, ServerPaginated, 10)
	ctx := context.Background()

	_ = c.OnCriteriaChange(ctx, Patch{Term: ptr("a")})
	_ = c.OnPageChange(ctx, 0)
	before := c.State()
	calls := len(src.calls)

	c.OnLocaleChange(domain.LocaleEN)
	after := c.State()

	if len(src.calls) != calls {
		t.Error("locale change triggered a fetch")
	}
	if after.Term != before.Term || after.Page != before.Page || after.TotalElements != before.TotalElements {
		t.Errorf("criteria changed: before %+v after %+v", before, after)
	}
	if !equalIDs(ids(before.Rows), ids(after.Rows)) {
		t.Fatalf("identity changed: %v vs %v", ids(before.Rows), ids(after.Rows))
	}
	for i := range after.Rows {
		if after.Rows[i].Name != before.Rows[i].Name {
			t.Errorf("non-label field changed: %q vs %q", before.Rows[i].Name, after.Rows[i].Name)
		}
	}
	if after.Locale != domain.LocaleEN {
		t.Errorf("Locale = %q", after.Locale)
	}
	for _, r := range after.Rows {
		if r.ID == 2 && r.Country != "Senegal" {
			t.Errorf("country label = %q, want Senegal", r.Country)
		}
	}
}

type localeSource struct {
	mu   sync.Mutex
	subs []func(domain.Locale)
}

func (l *localeSource) Subscribe(fn func(domain.Locale)) func() {
	l.mu.Lock()
	l.subs = append(l.subs, fn)
	l.mu.Unlock()
	fn(domain.LocaleEN)
	return func() {}
}

func TestBind_ReceivesCurrentLocale(t *testing.T) {
	c := newController(&fakeSource{records: companies}, ServerPaginated, 10)
	src := &localeSource{}
	c.Bind(src)
	if got := c.State().Locale; got != domain.LocaleEN {
		t.Errorf("Locale = %q, want en after Bind", got)
	}
}

func TestFetchError_StoresMessageAndClearsLoading(t *testing.T) {
	src := &fakeSource{records: companies, err: domain.NewAPIError(http.StatusInternalServerError, "server error", errors.New("boom"))}
	c := newController(src, ServerPaginated, 10)

	err := c.Refresh(context.Background())
	if err == nil {
		t.Fatal("Refresh() error = nil")
	}
	st := c.State()
	if st.Loading {
		t.Error("Loading stuck true after failure")
	}
	if st.Error != "server error" {
		t.Errorf("Error = %q", st.Error)
	}
	if len(src.calls) != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", len(src.calls))
	}

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if c.State().Error != "" {
		t.Error("error not cleared after success")
	}
}

// gatedSource blocks each List call until released, so tests control the
// order responses arrive in.
type gatedSource struct {
	started chan string
	release map[string]chan struct{}
	mu      sync.Mutex
}

func (g *gatedSource) List(_ context.Context, c domain.Criteria) (*domain.Page[domain.Company], error) {
	g.mu.Lock()
	gate := g.release[c.Term]
	g.mu.Unlock()
	g.started <- c.Term
	<-gate
	return &domain.Page[domain.Company]{
		Content:       []domain.Company{{ID: int64(len(c.Term)), Name: c.Term}},
		TotalElements: 1,
		TotalPages:    1,
	}, nil
}

func (g *gatedSource) All(context.Context) ([]domain.Company, error) { return nil, nil }

func TestStaleResponseDiscarded(t *testing.T) {
	src := &gatedSource{
		started: make(chan string, 2),
		release: map[string]chan struct{}{"s": make(chan struct{}), "son": make(chan struct{})},
	}
	c := newController(src, ServerPaginated, 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.OnCriteriaChange(ctx, Patch{Term: ptr("s")})
	}()
	<-src.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.OnCriteriaChange(ctx, Patch{Term: ptr("son")})
	}()
	<-src.started

	// The newer request completes first, then the older one arrives late.
	close(src.release["son"])
	deadline := time.Now().Add(2 * time.Second)
	for c.State().Loading && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	close(src.release["s"])
	wg.Wait()

	st := c.State()
	if st.Loading {
		t.Error("Loading still true")
	}
	if len(st.Rows) != 1 || !strings.EqualFold(st.Rows[0].Name, "son") {
		t.Errorf("rows = %+v, want the newer response", st.Rows)
	}
}

func TestStateIn_RendersLocaleWithoutSwitching(t *testing.T) {
	src := &fakeSource{records: companies}
	c := newController(src, ServerPaginated, 10)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	en := c.StateIn(domain.LocaleEN)
	if en.Locale != domain.LocaleEN {
		t.Errorf("StateIn Locale = %q, want en", en.Locale)
	}
	for _, r := range en.Rows {
		if r.ID == 2 && r.Country != "Senegal" {
			t.Errorf("en country = %q, want Senegal", r.Country)
		}
	}

	fr := c.State()
	if fr.Locale != domain.LocaleFR {
		t.Errorf("controller locale = %q, want fr", fr.Locale)
	}
	for _, r := range fr.Rows {
		if r.ID == 2 && r.Country != "Sénégal" {
			t.Errorf("fr country = %q, want Sénégal", r.Country)
		}
	}
	if len(src.calls) != 1 {
		t.Errorf("fetches = %d, want 1", len(src.calls))
	}
}

// bilingual records sort and match differently per locale.
var bilingual = []domain.Company{
	{ID: 1, Name: "a", DescriptionFr: "Banque", DescriptionEn: "Zeta bank"},
	{ID: 2, Name: "b", DescriptionFr: "Zinc", DescriptionEn: "Alpha"},
}

func newBilingualController(src Source[domain.Company]) *Controller[domain.Company, row] {
	return New(Config[domain.Company, row]{
		Name:   "companies",
		Mode:   ClientFiltered,
		Source: src,
		Project: func(c domain.Company, loc domain.Locale) row {
			return row{ID: c.ID, Name: loc.Pick(c.DescriptionFr, c.DescriptionEn)}
		},
		SearchText: func(c domain.Company, loc domain.Locale) []string {
			return []string{loc.Pick(c.DescriptionFr, c.DescriptionEn)}
		},
		Sort: func(recs []domain.Company, loc domain.Locale) {
			i18n.SortBy(loc, recs, func(c domain.Company) string { return loc.Pick(c.DescriptionFr, c.DescriptionEn) })
		},
	}, domain.LocaleFR)
}

func TestClientMode_LocaleChangeResortsAndRefilters(t *testing.T) {
	src := &fakeSource{records: bilingual}
	ctx := context.Background()

	c := newBilingualController(src)
	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := ids(c.State().Rows); !equalIDs(got, []int64{1, 2}) {
		t.Fatalf("fr order = %v, want [1 2]", got)
	}
	if got := ids(c.StateIn(domain.LocaleEN).Rows); !equalIDs(got, []int64{2, 1}) {
		t.Errorf("StateIn(en) order = %v, want [2 1]", got)
	}

	c.OnLocaleChange(domain.LocaleEN)
	if got := ids(c.State().Rows); !equalIDs(got, []int64{2, 1}) {
		t.Errorf("en order = %v, want [2 1]", got)
	}

	c.OnLocaleChange(domain.LocaleFR)
	if err := c.OnCriteriaChange(ctx, Patch{Term: ptr("zinc")}); err != nil {
		t.Fatal(err)
	}
	if got := ids(c.State().Rows); !equalIDs(got, []int64{2}) {
		t.Fatalf("fr search = %v, want [2]", got)
	}
	c.OnLocaleChange(domain.LocaleEN)
	st := c.State()
	if len(st.Rows) != 0 || st.Term != "zinc" {
		t.Errorf("en search rows = %v term %q, want none with term kept", ids(st.Rows), st.Term)
	}
	if src.allCalls != 1 {
		t.Errorf("loads = %d, want 1", src.allCalls)
	}
}
