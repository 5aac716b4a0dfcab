package app

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/client"
	"github.com/simp-lee/amcham/internal/config"
	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/i18n"
	"github.com/simp-lee/amcham/internal/metrics"
	"github.com/simp-lee/amcham/internal/module/announcement"
	"github.com/simp-lee/amcham/internal/module/auth"
	"github.com/simp-lee/amcham/internal/module/banner"
	"github.com/simp-lee/amcham/internal/module/category"
	"github.com/simp-lee/amcham/internal/module/company"
	"github.com/simp-lee/amcham/internal/module/crud"
	"github.com/simp-lee/amcham/internal/module/language"
	"github.com/simp-lee/amcham/internal/module/partner"
	"github.com/simp-lee/amcham/internal/module/sector"
	"github.com/simp-lee/amcham/internal/module/statistics"
	"github.com/simp-lee/amcham/internal/session"
)

// Module defines the contract for a self-registering console module.
// public needs no session; private is guarded by RequireSession.
type Module interface {
	RegisterRoutes(public *gin.RouterGroup, private *gin.RouterGroup)
}

// buildModules wires every console module to the directory clients.
func buildModules(dir *client.Directory, sessions *session.Manager, lang *i18n.Store, log *slog.Logger, m *metrics.Collector) []Module {
	deps := crud.Deps{Locale: lang, Logger: config.Component(log, "directory"), Metrics: m}

	dashboard := statistics.NewService(config.Component(log, "statistics"),
		statistics.Metric{Key: "companies", LabelFr: "Entreprises", LabelEn: "Companies", Count: statistics.PageTotal[domain.Company](dir.Companies)},
		statistics.Metric{Key: "upcomingEvents", LabelFr: "Événements à venir", LabelEn: "Upcoming events", Count: statistics.Len(dir.Announcements.Upcoming)},
		statistics.Metric{Key: "banners", LabelFr: "Bannières", LabelEn: "Banners", Count: statistics.PageTotal[domain.Banner](dir.Banners)},
		statistics.Metric{Key: "sectors", LabelFr: "Secteurs", LabelEn: "Sectors", Count: statistics.Len(dir.Sectors.All)},
		statistics.Metric{Key: "categories", LabelFr: "Catégories", LabelEn: "Categories", Count: statistics.Len(dir.Categories.All)},
		statistics.Metric{Key: "partners", LabelFr: "Partenaires", LabelEn: "Partners", Count: statistics.Len(dir.Partners.All)},
	)

	return []Module{
		language.NewModule(lang),
		auth.NewModule(auth.NewHandler(auth.NewService(sessions))),
		company.NewModule(dir.Companies, deps),
		announcement.NewModule(dir.Announcements, deps),
		banner.NewModule(dir.Banners, deps),
		sector.NewModule(dir.Sectors, deps),
		category.NewModule(dir.Categories, deps),
		partner.NewModule(dir.Partners, deps),
		statistics.NewModule(dashboard),
	}
}
