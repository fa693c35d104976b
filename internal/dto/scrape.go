package dto

import "github.com/octobees/company-discovery/internal/entity"

// ScrapeRequest is the payload used by the scraping endpoint.
type ScrapeRequest struct {
	URLs     []string `json:"urls"`
	Industry string   `json:"industry,omitempty"`
	Confirm  bool     `json:"confirm"`
	Replace  bool     `json:"replace"`
	LLM      bool     `json:"llm"`
}

// ScrapeResponse reports the scraped records and what was persisted.
type ScrapeResponse struct {
	Companies     []entity.Company `json:"companies"`
	Count         int              `json:"count"`
	StoredCount   int              `json:"stored_count"`
	ReplacedCount int              `json:"replaced_count"`
	SkippedCount  int              `json:"skipped_count"`
}
