// Package banner serves the advertisement banners shown on the public site.
package banner

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/client"
	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/form"
	"github.com/simp-lee/amcham/internal/i18n"
	"github.com/simp-lee/amcham/internal/listview"
	"github.com/simp-lee/amcham/internal/module/crud"
)

// Row is a banner as displayed in the list.
type Row struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Link           string `json:"link"`
	WebImageURL    string `json:"webImageUrl"`
	MobileImageURL string `json:"mobileImageUrl"`
	Status         string `json:"status"`
	StatusCode     string `json:"statusCode"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
}

func project(b domain.Banner, loc domain.Locale) Row {
	return Row{
		ID:             b.ID,
		Title:          loc.Pick(b.TitleFr, b.TitleEn),
		Link:           b.Link,
		WebImageURL:    b.WebImageURL,
		MobileImageURL: b.MobileImageURL,
		Status:         i18n.Label(i18n.Status, b.Status, loc),
		StatusCode:     b.Status,
		StartDate:      b.StartDate,
		EndDate:        b.EndDate,
	}
}

var schema = form.NewSchema("banner",
	form.Field{Name: "titleFr", Rules: "required,min=2,max=150"},
	form.Field{Name: "titleEn", Rules: "omitempty,max=150"},
	form.Field{Name: "link", Rules: "omitempty,weburl"},
	form.Field{Name: "status", Rules: "omitempty,oneof=ACTIVE INACTIVE"},
	form.Field{Name: "startDate", Rules: "omitempty,datetime=2006-01-02"},
	form.Field{Name: "endDate", Rules: "omitempty,datetime=2006-01-02"},
	form.Field{Name: "companyId", Rules: "omitempty,numeric"},
	form.Field{Name: "webImageUrl"},
	form.Field{Name: "mobileImageUrl"},
)

func decode(id int64, v form.Values) domain.Banner {
	return domain.Banner{
		ID:             id,
		TitleFr:        v["titleFr"],
		TitleEn:        v["titleEn"],
		Link:           v["link"],
		Status:         v["status"],
		StartDate:      v["startDate"],
		EndDate:        v["endDate"],
		CompanyID:      v.Int64("companyId"),
		WebImageURL:    v["webImageUrl"],
		MobileImageURL: v["mobileImageUrl"],
	}
}

func encode(b domain.Banner) form.Values {
	v := form.Values{
		"titleFr":        b.TitleFr,
		"titleEn":        b.TitleEn,
		"link":           b.Link,
		"status":         b.Status,
		"startDate":      b.StartDate,
		"endDate":        b.EndDate,
		"webImageUrl":    b.WebImageURL,
		"mobileImageUrl": b.MobileImageURL,
	}
	if b.CompanyID > 0 {
		v["companyId"] = strconv.FormatInt(b.CompanyID, 10)
	}
	return v
}

// Module implements app.Module for banners.
type Module struct {
	list *listview.Controller[domain.Banner, Row]
	crud *crud.Handler[domain.Banner, Row]
}

// NewModule wires the banner list view and forms to backend.
func NewModule(backend crud.Backend[domain.Banner], deps crud.Deps) *Module {
	if backend == nil {
		panic("banner.NewModule: backend must not be nil")
	}
	list := crud.NewList(deps, listview.Config[domain.Banner, Row]{
		Name:       "banners",
		Mode:       listview.ServerPaginated,
		Source:     backend,
		Project:    project,
		Dimensions: map[string]i18n.Dimension{client.FilterStatus: i18n.Status},
	})
	return &Module{
		list: list,
		crud: crud.NewHandler(crud.Config[domain.Banner, Row]{
			Backend:    backend,
			List:       list,
			FilterKeys: []string{client.FilterStatus},
			Schema:     schema,
			Decode:     decode,
			Encode:     encode,
			Uploads:    []string{client.FieldWebImage, client.FieldMobileImage},
			Logger:     deps.Logger,
		}),
	}
}

// List returns the banner list view controller.
func (m *Module) List() *listview.Controller[domain.Banner, Row] { return m.list }

// RegisterRoutes registers the banner routes.
func (m *Module) RegisterRoutes(public, private *gin.RouterGroup) {
	m.crud.Register(public, private, "banners")
}
