// Package language exposes the Language Store: the active locale, its switch
// and the enumerated labels the front end renders in filters.
package language

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/i18n"
	"github.com/simp-lee/amcham/internal/middleware"
	"github.com/simp-lee/amcham/internal/pkg"
)

// Store is satisfied by *i18n.Store.
type Store interface {
	Current() domain.Locale
	Explicit() bool
	SetLanguage(ctx context.Context, code string) (domain.Locale, error)
}

// SetRequest is the body of PUT /api/v1/language.
type SetRequest struct {
	Lang string `json:"lang" form:"lang" binding:"required"`
}

// StateResponse describes the active language.
type StateResponse struct {
	Locale    domain.Locale   `json:"locale"`
	Explicit  bool            `json:"explicit"`
	Supported []domain.Locale `json:"supported"`
}

// Module implements app.Module for the language switch.
type Module struct {
	store Store
}

// NewModule creates a language module over store.
func NewModule(store Store) *Module {
	if store == nil {
		panic("language.NewModule: store must not be nil")
	}
	return &Module{store: store}
}

// RegisterRoutes registers the language routes. Switching language needs no
// session.
func (m *Module) RegisterRoutes(public, _ *gin.RouterGroup) {
	public.GET("/language", m.Get)
	public.PUT("/language", m.Set)
	public.GET("/language/options", m.AllOptions)
	public.GET("/language/options/:dimension", m.Options)
}

// Get handles GET /api/v1/language.
func (m *Module) Get(c *gin.Context) {
	pkg.Success(c, m.state())
}

// Set handles PUT /api/v1/language. Every bound list view re-projects its
// rows before the response is written.
func (m *Module) Set(c *gin.Context) {
	var req SetRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	loc, err := m.store.SetLanguage(c.Request.Context(), req.Lang)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	i18n.SetLanguageCookie(c.Writer, loc)
	c.Header("Content-Language", string(loc))
	pkg.Success(c, m.state())
}

// AllOptions handles GET /api/v1/language/options.
func (m *Module) AllOptions(c *gin.Context) {
	loc := middleware.RequestLocale(c)
	out := make(map[i18n.Dimension][]i18n.Option)
	for _, d := range i18n.Dimensions() {
		out[d] = i18n.Options(d, loc)
	}
	pkg.Success(c, out)
}

// Options handles GET /api/v1/language/options/:dimension.
func (m *Module) Options(c *gin.Context) {
	d := i18n.Dimension(c.Param("dimension"))
	for _, known := range i18n.Dimensions() {
		if known == d {
			pkg.Success(c, i18n.Options(d, middleware.RequestLocale(c)))
			return
		}
	}
	pkg.Error(c, domain.NewAPIError(http.StatusNotFound, "unknown dimension", nil))
}

func (m *Module) state() StateResponse {
	return StateResponse{
		Locale:    m.store.Current(),
		Explicit:  m.store.Explicit(),
		Supported: i18n.Supported(),
	}
}
