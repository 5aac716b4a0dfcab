// Package category serves the announcement categories.
package category

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/form"
	"github.com/simp-lee/amcham/internal/i18n"
	"github.com/simp-lee/amcham/internal/listview"
	"github.com/simp-lee/amcham/internal/module/crud"
)

type Row struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	NameFr string `json:"nameFr"`
	NameEn string `json:"nameEn"`
}

func project(c domain.Category, loc domain.Locale) Row {
	return Row{ID: c.ID, Name: loc.Pick(c.NameFr, c.NameEn), NameFr: c.NameFr, NameEn: c.NameEn}
}

var schema = form.NewSchema("category",
	form.Field{Name: "nameFr", Rules: "required,min=2,max=100"},
	form.Field{Name: "nameEn", Rules: "required,min=2,max=100"},
)

type Module struct {
	list *listview.Controller[domain.Category, Row]
	crud *crud.Handler[domain.Category, Row]
}

func NewModule(backend crud.Backend[domain.Category], deps crud.Deps) *Module {
	if backend == nil {
		panic("category.NewModule: backend must not be nil")
	}
	list := crud.NewList(deps, listview.Config[domain.Category, Row]{
		Name:    "categories",
		Mode:    listview.ClientFiltered,
		Source:  backend,
		Project: project,
		SearchText: func(c domain.Category, _ domain.Locale) []string {
			return []string{c.NameFr, c.NameEn}
		},
		Sort: func(recs []domain.Category, loc domain.Locale) {
			i18n.SortBy(loc, recs, func(c domain.Category) string { return loc.Pick(c.NameFr, c.NameEn) })
		},
	})
	return &Module{
		list: list,
		crud: crud.NewHandler(crud.Config[domain.Category, Row]{
			Backend: backend,
			List:    list,
			Schema:  schema,
			Decode: func(id int64, v form.Values) domain.Category {
				return domain.Category{ID: id, NameFr: v["nameFr"], NameEn: v["nameEn"]}
			},
			Encode: func(c domain.Category) form.Values {
				return form.Values{"nameFr": c.NameFr, "nameEn": c.NameEn}
			},
			Logger: deps.Logger,
		}),
	}
}

func (m *Module) List() *listview.Controller[domain.Category, Row] { return m.list }

func (m *Module) RegisterRoutes(public, private *gin.RouterGroup) {
	m.crud.Register(public, private, "categories")
}
