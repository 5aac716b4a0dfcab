// Package partner serves the institutional partners of the chamber.
package partner

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/client"
	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/form"
	"github.com/simp-lee/amcham/internal/i18n"
	"github.com/simp-lee/amcham/internal/listview"
	"github.com/simp-lee/amcham/internal/module/crud"
)

// Row is a partner as displayed in the list.
type Row struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Website     string `json:"website"`
	LogoURL     string `json:"logoUrl"`
	Description string `json:"description"`
}

func project(p domain.Partner, loc domain.Locale) Row {
	return Row{
		ID:          p.ID,
		Name:        p.Name,
		Website:     p.Website,
		LogoURL:     p.LogoURL,
		Description: loc.Pick(p.DescriptionFr, p.DescriptionEn),
	}
}

var schema = form.NewSchema("partner",
	form.Field{Name: "name", Rules: "required,min=2,max=150"},
	form.Field{Name: "website", Rules: "omitempty,weburl"},
	form.Field{Name: "descriptionFr", Rules: "omitempty,max=2000"},
	form.Field{Name: "descriptionEn", Rules: "omitempty,max=2000"},
	form.Field{Name: "logoUrl"},
)

func decode(id int64, v form.Values) domain.Partner {
	return domain.Partner{
		ID:            id,
		Name:          v["name"],
		Website:       v["website"],
		DescriptionFr: v["descriptionFr"],
		DescriptionEn: v["descriptionEn"],
		LogoURL:       v["logoUrl"],
	}
}

func encode(p domain.Partner) form.Values {
	return form.Values{
		"name":          p.Name,
		"website":       p.Website,
		"descriptionFr": p.DescriptionFr,
		"descriptionEn": p.DescriptionEn,
		"logoUrl":       p.LogoURL,
	}
}

// Module implements app.Module for partners.
type Module struct {
	list *listview.Controller[domain.Partner, Row]
	crud *crud.Handler[domain.Partner, Row]
}

// NewModule wires the partner list view and forms to backend.
func NewModule(backend crud.Backend[domain.Partner], deps crud.Deps) *Module {
	if backend == nil {
		panic("partner.NewModule: backend must not be nil")
	}
	list := crud.NewList(deps, listview.Config[domain.Partner, Row]{
		Name:    "partners",
		Mode:    listview.ClientFiltered,
		Source:  backend,
		Project: project,
		SearchText: func(p domain.Partner, loc domain.Locale) []string {
			return []string{p.Name, p.Website, loc.Pick(p.DescriptionFr, p.DescriptionEn)}
		},
		Sort: func(recs []domain.Partner, loc domain.Locale) {
			i18n.SortBy(loc, recs, func(p domain.Partner) string { return p.Name })
		},
	})
	return &Module{
		list: list,
		crud: crud.NewHandler(crud.Config[domain.Partner, Row]{
			Backend: backend,
			List:    list,
			Schema:  schema,
			Decode:  decode,
			Encode:  encode,
			Uploads: []string{client.FieldLogoFile},
			Logger:  deps.Logger,
		}),
	}
}

// List returns the partner list view controller.
func (m *Module) List() *listview.Controller[domain.Partner, Row] { return m.list }

// RegisterRoutes registers the partner routes.
func (m *Module) RegisterRoutes(public, private *gin.RouterGroup) {
	m.crud.Register(public, private, "partners")
}
