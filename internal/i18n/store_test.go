package i18n

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/storage"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	failSet bool
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errors.New("disk full")
	}
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, kv storage.Store) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), kv, domain.LocaleFR, discardLogger())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestNewStore_ColdStart(t *testing.T) {
	tests := []struct {
		name         string
		persisted    string
		want         domain.Locale
		wantExplicit bool
	}{
		{"nothing persisted", "", domain.LocaleFR, false},
		{"persisted en", "en", domain.LocaleEN, true},
		{"persisted garbage", "de", domain.LocaleFR, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMemStore()
			if tt.persisted != "" {
				kv.data[storage.KeyLang] = tt.persisted
			}
			s := newTestStore(t, kv)
			if got := s.Current(); got != tt.want {
				t.Errorf("Current() = %q, want %q", got, tt.want)
			}
			if got := s.Explicit(); got != tt.wantExplicit {
				t.Errorf("Explicit() = %v, want %v", got, tt.wantExplicit)
			}
		})
	}
}

func TestStore_SetLanguagePersistsAndBroadcasts(t *testing.T) {
	kv := newMemStore()
	s := newTestStore(t, kv)

	var got []domain.Locale
	unsubscribe := s.Subscribe(func(l domain.Locale) { got = append(got, l) })
	defer unsubscribe()

	if _, err := s.SetLanguage(context.Background(), "EN"); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}
	if kv.data[storage.KeyLang] != "en" {
		t.Errorf("persisted = %q, want %q", kv.data[storage.KeyLang], "en")
	}
	if s.Current() != domain.LocaleEN {
		t.Errorf("Current() = %q, want en", s.Current())
	}

	// Same value does not re-broadcast.
	if _, err := s.SetLanguage(context.Background(), "en"); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}

	want := []domain.Locale{domain.LocaleFR, domain.LocaleEN}
	if len(got) != len(want) {
		t.Fatalf("observed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("observed[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStore_SubscribeReplaysLatest(t *testing.T) {
	s := newTestStore(t, newMemStore())
	if _, err := s.SetLanguage(context.Background(), "en"); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}

	var got domain.Locale
	s.Subscribe(func(l domain.Locale) { got = l })
	if got != domain.LocaleEN {
		t.Errorf("late subscriber received %q, want en", got)
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	s := newTestStore(t, newMemStore())

	calls := 0
	unsubscribe := s.Subscribe(func(domain.Locale) { calls++ })
	unsubscribe()
	unsubscribe()

	if _, err := s.SetLanguage(context.Background(), "en"); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (replay only)", calls)
	}
}

func TestStore_SetLanguageRejectsUnknown(t *testing.T) {
	s := newTestStore(t, newMemStore())

	_, err := s.SetLanguage(context.Background(), "de")
	if !domain.IsValidation(err) {
		t.Fatalf("SetLanguage(de) error = %v, want validation error", err)
	}
	if s.Current() != domain.LocaleFR {
		t.Errorf("Current() = %q after rejected set, want fr", s.Current())
	}
}

func TestStore_SetLanguagePersistFailureKeepsState(t *testing.T) {
	kv := newMemStore()
	kv.failSet = true
	s := newTestStore(t, kv)

	if _, err := s.SetLanguage(context.Background(), "en"); err == nil {
		t.Fatal("SetLanguage() expected persist error")
	}
	if s.Current() != domain.LocaleFR {
		t.Errorf("Current() = %q, want fr", s.Current())
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := newTestStore(t, newMemStore())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			code := "fr"
			if i%2 == 0 {
				code = "en"
			}
			_, _ = s.SetLanguage(context.Background(), code)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Current()
		}()
	}
	wg.Wait()

	if _, ok := domain.ParseLocale(string(s.Current())); !ok {
		t.Errorf("Current() = %q, want a supported locale", s.Current())
	}
}
