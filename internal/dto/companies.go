package dto

import (
	"github.com/octobees/company-discovery/internal/entity"
)

// SearchParams are the query parameters of GET /companies.
type SearchParams struct {
	Q           string `query:"q"`
	Industry    string `query:"industry"`
	Location    string `query:"location"`
	PlaceID     string `query:"location_place_id"`
	CompanySize string `query:"company_size"`
	Verified    string `query:"verified"`
	DataSources string `query:"data_sources"`
	Page        int    `query:"page"`
	PageSize    int    `query:"page_size"`
}

// CompanyView is a company as returned to callers. The underscore flags
// describe how the contact fields were treated for this caller.
type CompanyView struct {
	entity.Company
	ContactRestricted bool `json:"_contact_restricted"`
	UpgradeRequired   bool `json:"_upgrade_required,omitempty"`
	AccessError       bool `json:"_access_error,omitempty"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Companies []CompanyView `json:"companies"`
	Count     int           `json:"count"`
	HasMore   bool          `json:"has_more"`
	Page      int           `json:"page"`
	PageSize  int           `json:"page_size"`
}

// InquiryRequest is the body of POST /companies/:id/inquiries.
type InquiryRequest struct {
	Message string `json:"message"`
}
