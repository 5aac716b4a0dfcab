package domain

// Status values shared by companies, announcements and banners.
const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusPending   = "PENDING"
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
	StatusArchived  = "ARCHIVED"
)

// Sector is a business sector of member companies.
type Sector struct {
	ID            int64  `json:"id"`
	NameFr        string `json:"nameFr"`
	NameEn        string `json:"nameEn"`
	DescriptionFr string `json:"descriptionFr,omitempty"`
	DescriptionEn string `json:"descriptionEn,omitempty"`
}

func (s Sector) RecordID() int64 { return s.ID }

// Category classifies announcements.
type Category struct {
	ID     int64  `json:"id"`
	NameFr string `json:"nameFr"`
	NameEn string `json:"nameEn"`
}

func (c Category) RecordID() int64 { return c.ID }

// Company is a member company of the network.
type Company struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Website       string  `json:"website"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	Country       string  `json:"country"`
	ContactName   string  `json:"contactName"`
	DescriptionFr string  `json:"descriptionFr"`
	DescriptionEn string  `json:"descriptionEn"`
	LogoURL       string  `json:"logoUrl"`
	Status        string  `json:"status"`
	SectorID      int64   `json:"sectorId"`
	Sector        *Sector `json:"sector,omitempty"`
}

func (c Company) RecordID() int64 { return c.ID }

// Announcement is an event or news item published to members.
type Announcement struct {
	ID         int64     `json:"id"`
	TitleFr    string    `json:"titleFr"`
	TitleEn    string    `json:"titleEn"`
	ContentFr  string    `json:"contentFr"`
	ContentEn  string    `json:"contentEn"`
	Location   string    `json:"location"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	ImageURL   string    `json:"imageUrl"`
	Status     string    `json:"status"`
	CategoryID int64     `json:"categoryId"`
	Category   *Category `json:"category,omitempty"`
}

func (a Announcement) RecordID() int64 { return a.ID }

// Banner is an advertisement shown on the public site.
type Banner struct {
	ID             int64  `json:"id"`
	TitleFr        string `json:"titleFr"`
	TitleEn        string `json:"titleEn"`
	Link           string `json:"link"`
	WebImageURL    string `json:"webImageUrl"`
	MobileImageURL string `json:"mobileImageUrl"`
	Status         string `json:"status"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	CompanyID      int64  `json:"companyId,omitempty"`
}

func (b Banner) RecordID() int64 { return b.ID }

// Partner is an institutional partner of the chamber.
type Partner struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Website       string `json:"website"`
	LogoURL       string `json:"logoUrl"`
	DescriptionFr string `json:"descriptionFr"`
	DescriptionEn string `json:"descriptionEn"`
}

func (p Partner) RecordID() int64 { return p.ID }

// Schedule is one opening-hours row of a company.
type Schedule struct {
	ID        int64  `json:"id"`
	DayOfWeek string `json:"dayOfWeek"`
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
	Closed    bool   `json:"closed"`
}

// CircularStats summarizes circular mailings received by a company contact.
type CircularStats struct {
	ContactID int64   `json:"contactId"`
	Sent      int64   `json:"sent"`
	Opened    int64   `json:"opened"`
	Clicked   int64   `json:"clicked"`
	OpenRate  float64 `json:"openRate"`
}
