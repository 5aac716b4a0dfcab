package statistics

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/middleware"
	"github.com/simp-lee/amcham/internal/pkg"
)

// Module implements app.Module for the dashboard.
type Module struct {
	svc *Service
}

// NewModule creates a statistics module over svc.
func NewModule(svc *Service) *Module {
	if svc == nil {
		panic("statistics.NewModule: service must not be nil")
	}
	return &Module{svc: svc}
}

// RegisterRoutes registers the dashboard route; it requires a session.
func (m *Module) RegisterRoutes(_, private *gin.RouterGroup) {
	private.GET("/statistics/dashboard", m.Dashboard)
}

// Dashboard handles GET /api/v1/statistics/dashboard.
func (m *Module) Dashboard(c *gin.Context) {
	d, err := m.svc.Dashboard(c.Request.Context(), middleware.RequestLocale(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, d)
}
