package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CompanySize buckets a company by headcount.
type CompanySize string

const (
	SizeMicro  CompanySize = "micro"
	SizeSmall  CompanySize = "small"
	SizeMedium CompanySize = "medium"
	SizeLarge  CompanySize = "large"
)

// Valid reports whether s is one of the known size buckets.
func (s CompanySize) Valid() bool {
	switch s {
	case SizeMicro, SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// DataSource names the origin of a company record.
type DataSource string

const (
	SourceSupabase       DataSource = "supabase"
	SourceGooglePlaces   DataSource = "google_places"
	SourceOpenCorporates DataSource = "opencorporates"
	SourceWebScraping    DataSource = "web_scraping"
	SourceCrunchbase     DataSource = "crunchbase"
	SourceYellowPages    DataSource = "yellow_pages"
	SourceCompaniesHouse DataSource = "companies_house"
	SourceManual         DataSource = "manual"
	SourceSample         DataSource = "sample"
)

// DefaultIndustry is applied when no industry could be inferred.
const DefaultIndustry = "business_services"

// Company represents a business stored in the catalogue.
type Company struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	WebsiteURL      *string     `json:"website_url"`
	ContactEmail    *string     `json:"contact_email"`
	Phone           *string     `json:"phone"`
	LocationCountry *string     `json:"location_country"`
	LocationCity    *string     `json:"location_city"`
	Industry        []string    `json:"industry"`
	Specialties     []string    `json:"specialties"`
	CompanySize     CompanySize `json:"company_size"`
	DataSource      DataSource  `json:"data_source"`
	Verified        bool        `json:"verified"`
	Synthetic       bool        `json:"synthetic"`
	ExternalID      *string     `json:"external_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// HasContact reports whether either contact field is populated.
func (c *Company) HasContact() bool {
	return (c.ContactEmail != nil && *c.ContactEmail != "") || (c.Phone != nil && *c.Phone != "")
}

// EnsureDefaults fills the required collections so persisted rows never carry
// empty sets. Missing specialties fall back to the primary industry label, so
// it must run after any enrichment that keys on empty specialties.
func (c *Company) EnsureDefaults() {
	if len(c.Industry) == 0 {
		c.Industry = []string{DefaultIndustry}
	}
	if len(c.Specialties) == 0 {
		c.Specialties = []string{IndustryLabel(c.Industry[0])}
	}
	if !c.CompanySize.Valid() {
		c.CompanySize = SizeSmall
	}
	if c.Synthetic {
		c.Verified = false
	}
}

// IndustryLabel turns an industry slug into its display form, e.g.
// "business_services" into "business services".
func IndustryLabel(slug string) string {
	return strings.ReplaceAll(strings.TrimSpace(slug), "_", " ")
}

// StringPtr returns nil for blank strings.
func StringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// Deref returns the pointed-to string or "".
func Deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
