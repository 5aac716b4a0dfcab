// Package announcement serves events and news: list view, forms and the
// public upcoming-events feed.
package announcement

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/client"
	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/form"
	"github.com/simp-lee/amcham/internal/i18n"
	"github.com/simp-lee/amcham/internal/listview"
	"github.com/simp-lee/amcham/internal/middleware"
	"github.com/simp-lee/amcham/internal/module/crud"
	"github.com/simp-lee/amcham/internal/pkg"
)

// Row is an announcement as displayed in the list.
type Row struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Location   string `json:"location"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	ImageURL   string `json:"imageUrl"`
	Status     string `json:"status"`
	StatusCode string `json:"statusCode"`
	CategoryID int64  `json:"categoryId"`
	Category   string `json:"category"`
}

// Project builds the list row of a for loc.
func Project(a domain.Announcement, loc domain.Locale) Row {
	row := Row{
		ID:         a.ID,
		Title:      loc.Pick(a.TitleFr, a.TitleEn),
		Content:    loc.Pick(a.ContentFr, a.ContentEn),
		Location:   a.Location,
		StartDate:  a.StartDate,
		EndDate:    a.EndDate,
		ImageURL:   a.ImageURL,
		Status:     i18n.Label(i18n.Status, a.Status, loc),
		StatusCode: a.Status,
		CategoryID: a.CategoryID,
	}
	if a.Category != nil {
		row.Category = loc.Pick(a.Category.NameFr, a.Category.NameEn)
	}
	return row
}

// Schema is the create/edit form of an announcement.
var Schema = form.NewSchema("announcement",
	form.Field{Name: "titleFr", Rules: "required,min=3,max=200"},
	form.Field{Name: "titleEn", Rules: "omitempty,max=200"},
	form.Field{Name: "contentFr", Rules: "required"},
	form.Field{Name: "contentEn", Rules: "omitempty"},
	form.Field{Name: "location", Rules: "omitempty,max=255"},
	form.Field{Name: "startDate", Rules: "required,datetime=2006-01-02"},
	form.Field{Name: "endDate", Rules: "omitempty,datetime=2006-01-02"},
	form.Field{Name: "status", Rules: "omitempty,oneof=DRAFT PUBLISHED ARCHIVED"},
	form.Field{Name: "categoryId", Rules: "required,numeric"},
	form.Field{Name: "imageUrl"},
)

// Decode builds the announcement sent to the backend.
func Decode(id int64, v form.Values) domain.Announcement {
	return domain.Announcement{
		ID:         id,
		TitleFr:    v["titleFr"],
		TitleEn:    v["titleEn"],
		ContentFr:  v["contentFr"],
		ContentEn:  v["contentEn"],
		Location:   v["location"],
		StartDate:  v["startDate"],
		EndDate:    v["endDate"],
		Status:     v["status"],
		CategoryID: v.Int64("categoryId"),
		ImageURL:   v["imageUrl"],
	}
}

// Encode fills the edit form from a.
func Encode(a domain.Announcement) form.Values {
	v := form.Values{
		"titleFr":   a.TitleFr,
		"titleEn":   a.TitleEn,
		"contentFr": a.ContentFr,
		"contentEn": a.ContentEn,
		"location":  a.Location,
		"startDate": a.StartDate,
		"endDate":   a.EndDate,
		"status":    a.Status,
		"imageUrl":  a.ImageURL,
	}
	if a.CategoryID > 0 {
		v["categoryId"] = strconv.FormatInt(a.CategoryID, 10)
	}
	return v
}

// Backend is the announcement resource client.
type Backend interface {
	crud.Backend[domain.Announcement]
	Upcoming(ctx context.Context) ([]domain.Announcement, error)
}

// Module implements app.Module for announcements.
type Module struct {
	backend Backend
	list    *listview.Controller[domain.Announcement, Row]
	crud    *crud.Handler[domain.Announcement, Row]
}

// NewModule wires the announcement list view and forms to backend.
func NewModule(backend Backend, deps crud.Deps) *Module {
	if backend == nil {
		panic("announcement.NewModule: backend must not be nil")
	}
	list := crud.NewList(deps, listview.Config[domain.Announcement, Row]{
		Name:    "announcements",
		Mode:    listview.ServerPaginated,
		Source:  backend,
		Project: Project,
		Dimensions: map[string]i18n.Dimension{
			client.FilterCategory: i18n.Category,
			client.FilterStatus:   i18n.Status,
		},
	})
	return &Module{
		backend: backend,
		list:    list,
		crud: crud.NewHandler(crud.Config[domain.Announcement, Row]{
			Backend:    backend,
			List:       list,
			FilterKeys: []string{client.FilterCategory, client.FilterStatus},
			Schema:     Schema,
			Decode:     Decode,
			Encode:     Encode,
			Uploads:    []string{client.FieldImageFile},
			Logger:     deps.Logger,
		}),
	}
}

// List returns the announcement list view controller.
func (m *Module) List() *listview.Controller[domain.Announcement, Row] { return m.list }

// RegisterRoutes registers the announcement routes.
func (m *Module) RegisterRoutes(public, private *gin.RouterGroup) {
	public.GET("/announcements/upcoming", m.Upcoming)
	m.crud.Register(public, private, "announcements")
}

// Upcoming handles GET /api/v1/announcements/upcoming.
func (m *Module) Upcoming(c *gin.Context) {
	items, err := m.backend.Upcoming(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	loc := middleware.RequestLocale(c)
	rows := make([]Row, len(items))
	for i, a := range items {
		rows[i] = Project(a, loc)
	}
	pkg.Success(c, rows)
}
