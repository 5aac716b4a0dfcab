// Package company serves the member company directory: list view, create and
// edit forms, schedules and contact circular statistics.
package company

import (
	"strconv"

	"github.com/simp-lee/amcham/internal/client"
	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/form"
	"github.com/simp-lee/amcham/internal/i18n"
)

// Row is a company as displayed in the directory list.
type Row struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Status      string `json:"status"`
	StatusCode  string `json:"statusCode"`
	SectorID    int64  `json:"sectorId"`
	Sector      string `json:"sector"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
}

// Project builds the list row of c for loc.
func Project(c domain.Company, loc domain.Locale) Row {
	row := Row{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Website:     c.Website,
		City:        c.City,
		Country:     i18n.Label(i18n.Country, c.Country, loc),
		CountryCode: c.Country,
		Status:      i18n.Label(i18n.Status, c.Status, loc),
		StatusCode:  c.Status,
		SectorID:    c.SectorID,
		Description: loc.Pick(c.DescriptionFr, c.DescriptionEn),
		LogoURL:     c.LogoURL,
	}
	if c.Sector != nil {
		row.Sector = loc.Pick(c.Sector.NameFr, c.Sector.NameEn)
	}
	return row
}

// Schema is the create/edit form of a company.
var Schema = form.NewSchema("company",
	form.Field{Name: "name", Rules: "required,min=2,max=150"},
	form.Field{Name: "email", Rules: "required,email"},
	form.Field{Name: "phone", Rules: "omitempty,max=30"},
	form.Field{Name: "website", Rules: "omitempty,weburl"},
	form.Field{Name: "address", Rules: "omitempty,max=255"},
	form.Field{Name: "city", Rules: "omitempty,max=100"},
	form.Field{Name: "country", Rules: "required,max=2"},
	form.Field{Name: "contactName", Rules: "omitempty,max=100"},
	form.Field{Name: "descriptionFr", Rules: "omitempty,max=2000"},
	form.Field{Name: "descriptionEn", Rules: "omitempty,max=2000"},
	form.Field{Name: "status", Rules: "omitempty,oneof=ACTIVE INACTIVE PENDING"},
	form.Field{Name: "sectorId", Rules: "required,numeric"},
	// logoUrl carries the stored logo through an edit without a new file.
	form.Field{Name: "logoUrl"},
)

// Decode builds the company sent to the backend.
func Decode(id int64, v form.Values) domain.Company {
	return domain.Company{
		ID:            id,
		Name:          v["name"],
		Email:         v["email"],
		Phone:         v["phone"],
		Website:       v["website"],
		Address:       v["address"],
		City:          v["city"],
		Country:       v["country"],
		ContactName:   v["contactName"],
		DescriptionFr: v["descriptionFr"],
		DescriptionEn: v["descriptionEn"],
		Status:        v["status"],
		SectorID:      v.Int64("sectorId"),
		LogoURL:       v["logoUrl"],
	}
}

// Encode fills the edit form from c.
func Encode(c domain.Company) form.Values {
	v := form.Values{
		"name":          c.Name,
		"email":         c.Email,
		"phone":         c.Phone,
		"website":       c.Website,
		"address":       c.Address,
		"city":          c.City,
		"country":       c.Country,
		"contactName":   c.ContactName,
		"descriptionFr": c.DescriptionFr,
		"descriptionEn": c.DescriptionEn,
		"status":        c.Status,
		"logoUrl":       c.LogoURL,
	}
	if c.SectorID > 0 {
		v["sectorId"] = strconv.FormatInt(c.SectorID, 10)
	}
	return v
}

// ScheduleRow is an opening-hours line with a localized day name.
type ScheduleRow struct {
	domain.Schedule
	Day string `json:"day"`
}

func projectSchedules(in []domain.Schedule, loc domain.Locale) []ScheduleRow {
	out := make([]ScheduleRow, len(in))
	for i, s := range in {
		out[i] = ScheduleRow{Schedule: s, Day: i18n.Label(i18n.Weekday, s.DayOfWeek, loc)}
	}
	return out
}

// filterKeys are the list view filters of the company directory.
var filterKeys = []string{client.FilterSector, client.FilterCountry, client.FilterStatus}
