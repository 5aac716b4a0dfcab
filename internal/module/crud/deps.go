package crud

import (
	"log/slog"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/listview"
	"github.com/simp-lee/amcham/internal/metrics"
)

// Deps are the shared collaborators of every directory module.
type Deps struct {
	// Locale drives row projection; *i18n.Store satisfies it.
	Locale  listview.LocaleSource
	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// NewList builds a list view controller for cfg and binds it to the locale
// source. The controller starts with the source's current locale.
func NewList[T domain.Record, V any](deps Deps, cfg listview.Config[T, V]) *listview.Controller[T, V] {
	if cfg.Logger == nil {
		cfg.Logger = deps.Logger
	}
	if cfg.Metrics == nil {
		cfg.Metrics = deps.Metrics
	}
	ctrl := listview.New(cfg, domain.DefaultLocale)
	if deps.Locale != nil {
		ctrl.Bind(deps.Locale)
	}
	return ctrl
}
