package company

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/client"
	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/i18n"
	"github.com/simp-lee/amcham/internal/listview"
	"github.com/simp-lee/amcham/internal/middleware"
	"github.com/simp-lee/amcham/internal/module/crud"
	"github.com/simp-lee/amcham/internal/pkg"
)

// Backend is the company resource client.
type Backend interface {
	crud.Backend[domain.Company]
	Schedules(ctx context.Context, id int64) ([]domain.Schedule, error)
	CircularStats(ctx context.Context, contactID int64) (domain.CircularStats, error)
}

// Module implements app.Module for the company directory.
type Module struct {
	backend Backend
	list    *listview.Controller[domain.Company, Row]
	crud    *crud.Handler[domain.Company, Row]
}

// NewModule wires the company list view and forms to backend.
func NewModule(backend Backend, deps crud.Deps) *Module {
	if backend == nil {
		panic("company.NewModule: backend must not be nil")
	}
	list := crud.NewList(deps, listview.Config[domain.Company, Row]{
		Name:    "companies",
		Mode:    listview.ServerPaginated,
		Source:  backend,
		Project: Project,
		Dimensions: map[string]i18n.Dimension{
			client.FilterCountry: i18n.Country,
			client.FilterStatus:  i18n.Status,
			client.FilterSector:  i18n.Sector,
		},
	})
	return &Module{
		backend: backend,
		list:    list,
		crud: crud.NewHandler(crud.Config[domain.Company, Row]{
			Backend:    backend,
			List:       list,
			FilterKeys: filterKeys,
			Schema:     Schema,
			Decode:     Decode,
			Encode:     Encode,
			Uploads:    []string{client.FieldLogoFile},
			Logger:     deps.Logger,
		}),
	}
}

// List returns the company list view controller.
func (m *Module) List() *listview.Controller[domain.Company, Row] { return m.list }

// RegisterRoutes registers the company routes.
func (m *Module) RegisterRoutes(public, private *gin.RouterGroup) {
	m.crud.Register(public, private, "companies")
	public.GET("/companies/:id/schedules", m.Schedules)
	private.GET("/companies/contacts/:id/circular-stats", m.CircularStats)
}

// Schedules handles GET /api/v1/companies/:id/schedules.
func (m *Module) Schedules(c *gin.Context) {
	id, ok := pkg.ParseID(c)
	if !ok {
		pkg.Error(c, domain.NewAPIError(http.StatusBadRequest, "invalid id", nil))
		return
	}
	schedules, err := m.backend.Schedules(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, projectSchedules(schedules, middleware.RequestLocale(c)))
}

// CircularStats handles GET /api/v1/companies/contacts/:id/circular-stats.
func (m *Module) CircularStats(c *gin.Context) {
	id, ok := pkg.ParseID(c)
	if !ok {
		pkg.Error(c, domain.NewAPIError(http.StatusBadRequest, "invalid id", nil))
		return
	}
	stats, err := m.backend.CircularStats(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, stats)
}
