// Package i18n holds the console's display language and the lookups that
// depend on it.
package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/storage"
)

// Store is the process-wide Language Store. The locale is persisted under
// storage.KeyLang and broadcast to subscribers on every change.
//
// Observers run on the caller's goroutine, outside the state lock, and must
// not call SetLanguage or Subscribe.
type Store struct {
	kv  storage.Store
	log *slog.Logger

	// setMu serializes changes with their broadcast.
	setMu sync.Mutex

	mu       sync.RWMutex
	current  domain.Locale
	explicit bool
	subs     []subscription
	nextID   int
}

type subscription struct {
	id int
	fn func(domain.Locale)
}

// NewStore loads the persisted locale from kv, falling back to def when the
// key is missing or holds an unsupported value.
func NewStore(ctx context.Context, kv storage.Store, def domain.Locale, log *slog.Logger) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("i18n: storage is nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if _, ok := domain.ParseLocale(string(def)); !ok {
		def = domain.DefaultLocale
	}

	s := &Store{kv: kv, log: log, current: def}

	raw, ok, err := kv.Get(ctx, storage.KeyLang)
	if err != nil {
		return nil, fmt.Errorf("load persisted locale: %w", err)
	}
	if ok {
		if loc, valid := domain.ParseLocale(raw); valid {
			s.current = loc
			s.explicit = true
		} else {
			log.Warn("ignoring unsupported persisted locale", slog.String("value", raw))
		}
	}
	return s, nil
}

// Current returns the active locale.
func (s *Store) Current() domain.Locale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Explicit reports whether the locale was chosen by the user (persisted or
// set) rather than taken from the default.
func (s *Store) Explicit() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.explicit
}

// SetLanguage validates code, persists it and broadcasts the new locale.
// Setting the active locale again is a no-op.
func (s *Store) SetLanguage(ctx context.Context, code string) (domain.Locale, error) {
	loc, ok := domain.ParseLocale(code)
	if !ok {
		return "", domain.NewAPIError(http.StatusBadRequest, fmt.Sprintf("unsupported language %q", code), nil)
	}

	s.setMu.Lock()
	defer s.setMu.Unlock()

	s.mu.RLock()
	same := s.current == loc && s.explicit
	s.mu.RUnlock()
	if same {
		return loc, nil
	}

	if err := s.kv.Set(ctx, storage.KeyLang, string(loc)); err != nil {
		return "", fmt.Errorf("persist locale: %w", err)
	}

	s.mu.Lock()
	changed := s.current != loc
	s.current = loc
	s.explicit = true
	subs := append([]subscription(nil), s.subs...)
	s.mu.Unlock()

	if !changed {
		return loc, nil
	}

	s.log.Info("locale changed", slog.String("locale", string(loc)), slog.Int("subscribers", len(subs)))
	for _, sub := range subs {
		sub.fn(loc)
	}
	return loc, nil
}

// Subscribe registers fn and immediately calls it with the current locale.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(domain.Locale)) (unsubscribe func()) {
	s.setMu.Lock()
	defer s.setMu.Unlock()

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	current := s.current
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}
