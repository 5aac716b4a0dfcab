// Package statistics builds the dashboard totals shown on the console home.
package statistics

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/i18n"
	"github.com/simp-lee/amcham/internal/listview"
)

// maxConcurrent bounds the backend calls issued for one dashboard.
const maxConcurrent = 4

// Counter returns one dashboard total.
type Counter func(ctx context.Context) (int64, error)

// PageTotal counts the records of a server-paginated resource with a
// one-row page.
func PageTotal[T domain.Record](src listview.Source[T]) Counter {
	return func(ctx context.Context) (int64, error) {
		page, err := src.List(ctx, domain.Criteria{Size: 1})
		if err != nil {
			return 0, err
		}
		return page.TotalElements, nil
	}
}

// Len counts the items returned by list.
func Len[T any](list func(ctx context.Context) ([]T, error)) Counter {
	return func(ctx context.Context) (int64, error) {
		items, err := list(ctx)
		if err != nil {
			return 0, err
		}
		return int64(len(items)), nil
	}
}

// Metric is one dashboard tile.
type Metric struct {
	Key     string
	LabelFr string
	LabelEn string
	Count   Counter
}

// Tile is a rendered dashboard tile.
type Tile struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Value   int64  `json:"value"`
	Display string `json:"display"`
	Error   string `json:"error,omitempty"`
}

// Dashboard is the response of GET /api/v1/statistics/dashboard.
type Dashboard struct {
	Locale domain.Locale `json:"locale"`
	Tiles  []Tile        `json:"tiles"`
}

// Service computes dashboards.
type Service struct {
	metrics []Metric
	log     *slog.Logger
}

// NewService creates a service over metrics, rendered in the given order.
func NewService(log *slog.Logger, metrics ...Metric) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{metrics: metrics, log: log}
}

// Dashboard fetches every total concurrently and renders it for loc. A
// failing total is reported on its tile; the call fails only when every
// total failed.
func (s *Service) Dashboard(ctx context.Context, loc domain.Locale) (*Dashboard, error) {
	tiles := make([]Tile, len(s.metrics))
	errs := make([]error, len(s.metrics))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, m := range s.metrics {
		g.Go(func() error {
			n, err := m.Count(gctx)
			tiles[i] = Tile{Key: m.Key, Label: loc.Pick(m.LabelFr, m.LabelEn)}
			if err != nil {
				errs[i] = err
				tiles[i].Error = messageOf(err)
				s.log.WarnContext(ctx, "dashboard total failed", slog.String("metric", m.Key), slog.Any("error", err))
				return nil
			}
			tiles[i].Value = n
			tiles[i].Display = i18n.FormatCount(loc, n)
			return nil
		})
	}
	_ = g.Wait()

	if len(s.metrics) > 0 && allFailed(errs) {
		return nil, errors.Join(errs...)
	}
	return &Dashboard{Locale: loc, Tiles: tiles}, nil
}

func messageOf(err error) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return domain.ErrServer.Message
}

func allFailed(errs []error) bool {
	for _, err := range errs {
		if err == nil {
			return false
		}
	}
	return true
}
