// Package sector serves the business sectors of member companies. The list
// is loaded once and filtered in memory.
package sector

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/form"
	"github.com/simp-lee/amcham/internal/i18n"
	"github.com/simp-lee/amcham/internal/listview"
	"github.com/simp-lee/amcham/internal/module/crud"
)

// Row is a sector as displayed in the list.
type Row struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	NameFr      string `json:"nameFr"`
	NameEn      string `json:"nameEn"`
}

func project(s domain.Sector, loc domain.Locale) Row {
	return Row{
		ID:          s.ID,
		Name:        loc.Pick(s.NameFr, s.NameEn),
		Description: loc.Pick(s.DescriptionFr, s.DescriptionEn),
		NameFr:      s.NameFr,
		NameEn:      s.NameEn,
	}
}

func searchText(s domain.Sector, loc domain.Locale) []string {
	return []string{s.NameFr, s.NameEn, loc.Pick(s.DescriptionFr, s.DescriptionEn)}
}

func sortByName(recs []domain.Sector, loc domain.Locale) {
	i18n.SortBy(loc, recs, func(s domain.Sector) string { return loc.Pick(s.NameFr, s.NameEn) })
}

var schema = form.NewSchema("sector",
	form.Field{Name: "nameFr", Rules: "required,min=2,max=100"},
	form.Field{Name: "nameEn", Rules: "required,min=2,max=100"},
	form.Field{Name: "descriptionFr", Rules: "omitempty,max=500"},
	form.Field{Name: "descriptionEn", Rules: "omitempty,max=500"},
)

func decode(id int64, v form.Values) domain.Sector {
	return domain.Sector{
		ID:            id,
		NameFr:        v["nameFr"],
		NameEn:        v["nameEn"],
		DescriptionFr: v["descriptionFr"],
		DescriptionEn: v["descriptionEn"],
	}
}

func encode(s domain.Sector) form.Values {
	return form.Values{
		"nameFr":        s.NameFr,
		"nameEn":        s.NameEn,
		"descriptionFr": s.DescriptionFr,
		"descriptionEn": s.DescriptionEn,
	}
}

// Module implements app.Module for sectors.
type Module struct {
	list *listview.Controller[domain.Sector, Row]
	crud *crud.Handler[domain.Sector, Row]
}

// NewModule wires the sector list view and forms to backend.
func NewModule(backend crud.Backend[domain.Sector], deps crud.Deps) *Module {
	if backend == nil {
		panic("sector.NewModule: backend must not be nil")
	}
	list := crud.NewList(deps, listview.Config[domain.Sector, Row]{
		Name:       "sectors",
		Mode:       listview.ClientFiltered,
		Source:     backend,
		Project:    project,
		SearchText: searchText,
		Sort:       sortByName,
	})
	return &Module{
		list: list,
		crud: crud.NewHandler(crud.Config[domain.Sector, Row]{
			Backend: backend,
			List:    list,
			Schema:  schema,
			Decode:  decode,
			Encode:  encode,
			Logger:  deps.Logger,
		}),
	}
}

// List returns the sector list view controller.
func (m *Module) List() *listview.Controller[domain.Sector, Row] { return m.list }

// RegisterRoutes registers the sector routes.
func (m *Module) RegisterRoutes(public, private *gin.RouterGroup) {
	m.crud.Register(public, private, "sectors")
}
