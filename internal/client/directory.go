package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/simp-lee/amcham/internal/domain"
)

// Criteria filter keys understood by the directory endpoints.
const (
	FilterSector   = "sector"
	FilterCategory = "category"
	FilterCountry  = "country"
	FilterStatus   = "status"
)

// CompanyClient adds the company sub-resources.
type CompanyClient struct {
	*Resource[domain.Company]
}

// Schedules returns the opening hours of company id.
func (c *CompanyClient) Schedules(ctx context.Context, id int64) ([]domain.Schedule, error) {
	var out []domain.Schedule
	err := c.client.Do(ctx, c.call(http.MethodGet, c.itemPath(id)+"/schedules"), &out)
	return out, err
}

// CircularStats returns mailing statistics for a company contact.
func (c *CompanyClient) CircularStats(ctx context.Context, contactID int64) (domain.CircularStats, error) {
	var out domain.CircularStats
	path := c.ep.Path + "/contacts/" + strconv.FormatInt(contactID, 10) + "/circular-stats"
	err := c.client.Do(ctx, c.call(http.MethodGet, path), &out)
	return out, err
}

// AnnouncementClient adds the public upcoming-events feed.
type AnnouncementClient struct {
	*Resource[domain.Announcement]
}

// Upcoming returns the events that have not started yet.
func (a *AnnouncementClient) Upcoming(ctx context.Context) ([]domain.Announcement, error) {
	var out []domain.Announcement
	err := a.client.Do(ctx, a.call(http.MethodGet, a.ep.Path+"/upcoming"), &out)
	return out, err
}

// Directory groups the resource clients of the directory.
type Directory struct {
	Companies     *CompanyClient
	Announcements *AnnouncementClient
	Banners       *Resource[domain.Banner]
	Sectors       *Resource[domain.Sector]
	Categories    *Resource[domain.Category]
	Partners      *Resource[domain.Partner]
}

// NewDirectory builds every resource client on top of c.
func NewDirectory(c *Client) *Directory {
	return &Directory{
		Companies: &CompanyClient{NewResource[domain.Company](c, Endpoint{
			Name:       "companies",
			Path:       "/api/companies",
			SearchPath: "/api/companies/search",
			TermParam:  "name",
			Filters: map[string]string{
				FilterSector:  "sectorId",
				FilterCountry: "country",
				FilterStatus:  "status",
			},
			Messages: DefaultMessages.With(Messages{http.StatusConflict: "conflict: a company with this name or email already exists"}),
		})},
		Announcements: &AnnouncementClient{NewResource[domain.Announcement](c, Endpoint{
			Name:       "announcements",
			Path:       "/api/events",
			SearchPath: "/api/events/search",
			TermParam:  "title",
			Filters: map[string]string{
				FilterCategory: "categoryId",
				FilterStatus:   "status",
			},
		})},
		Banners: NewResource[domain.Banner](c, Endpoint{
			Name:       "banners",
			Path:       "/api/ads",
			SearchPath: "/api/ads/search",
			TermParam:  "title",
			Filters:    map[string]string{FilterStatus: "status"},
		}),
		Sectors: NewResource[domain.Sector](c, Endpoint{
			Name:     "sectors",
			Path:     "/api/sectors",
			Messages: DefaultMessages.With(Messages{http.StatusConflict: "conflict: sector already exists"}),
		}),
		Categories: NewResource[domain.Category](c, Endpoint{
			Name:     "categories",
			Path:     "/api/categories",
			Messages: DefaultMessages.With(Messages{http.StatusConflict: "conflict: category already exists"}),
		}),
		Partners: NewResource[domain.Partner](c, Endpoint{
			Name: "partners",
			Path: "/api/partners",
		}),
	}
}
