package language

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/i18n"
	"github.com/simp-lee/amcham/internal/middleware"
	"github.com/simp-lee/amcham/internal/storage"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

func setup(t *testing.T) (*gin.Engine, *i18n.Store, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	kv := &memStore{data: map[string]string{}}
	store, err := i18n.NewStore(context.Background(), kv, domain.LocaleFR, nil)
	if err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	r.Use(middleware.Locale(store))
	api := r.Group("/api/v1")
	NewModule(store).RegisterRoutes(api, api)
	return r, store, kv
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSet_PersistsAndBroadcasts(t *testing.T) {
	r, store, kv := setup(t)

	var seen []domain.Locale
	unsubscribe := store.Subscribe(func(l domain.Locale) { seen = append(seen, l) })
	defer unsubscribe()

	w := do(r, http.MethodPut, "/api/v1/language", `{"lang":"EN"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if kv.data[storage.KeyLang] != "en" {
		t.Errorf("persisted = %q", kv.data[storage.KeyLang])
	}
	if len(seen) != 2 || seen[1] != domain.LocaleEN {
		t.Errorf("subscriber saw %v", seen)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), i18n.LangCookieName+"=en") {
		t.Errorf("Set-Cookie = %q", w.Header().Get("Set-Cookie"))
	}
	if w.Header().Get("Content-Language") != "en" {
		t.Errorf("Content-Language = %q", w.Header().Get("Content-Language"))
	}

	var resp struct {
		Data StateResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Locale != domain.LocaleEN || !resp.Data.Explicit {
		t.Errorf("state = %+v", resp.Data)
	}
}

func TestSet_Unsupported(t *testing.T) {
	r, store, kv := setup(t)

	w := do(r, http.MethodPut, "/api/v1/language", `{"lang":"de"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if store.Current() != domain.LocaleFR {
		t.Errorf("locale = %q, want unchanged", store.Current())
	}
	if _, ok := kv.data[storage.KeyLang]; ok {
		t.Error("unsupported language persisted")
	}
}

func TestOptions(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodGet, "/api/v1/language/options/country?lang=en", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Data []i18n.Option `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].Value != domain.FilterAll || resp.Data[0].Label != "All countries" {
		t.Errorf("options = %+v", resp.Data)
	}

	if w := do(r, http.MethodGet, "/api/v1/language/options/planet", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown dimension status = %d", w.Code)
	}
}

func TestAllOptions_DefaultLocale(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodGet, "/api/v1/language/options", "")
	var resp struct {
		Data map[string][]i18n.Option `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	weekdays := resp.Data[string(i18n.Weekday)]
	if len(weekdays) != 8 || weekdays[1].Label != "Lundi" {
		t.Errorf("weekday options = %+v", weekdays)
	}
}
