package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/octobees/company-discovery/internal/catalog"
	"github.com/octobees/company-discovery/internal/entity"
	"github.com/octobees/company-discovery/internal/repository"
	"github.com/octobees/company-discovery/internal/sources"
)

// ErrQueryTooShort is returned for a one-character query without filters.
var ErrQueryTooShort = errors.New("query must be at least 2 characters")

const (
	defaultPageSize = 20
	maxPageSize     = 100
	industryAll     = "all"
)

// CompanyFinder runs store-level company searches.
type CompanyFinder interface {
	Search(ctx context.Context, q repository.CompanyQuery) ([]entity.Company, int, error)
}

// Ingester pulls records from external providers into the store.
type Ingester interface {
	Ingest(ctx context.Context, names []string, q sources.Query) sources.IngestSummary
}

// Filters narrow a search. Zero values mean "not filtered"; an industry of
// "all" is the same as none. DataSources and LocationPlaceID only steer the
// provider fallback: they pick the adapters and bias Google Places around a
// place id, and never narrow the stored results.
type Filters struct {
	Industry        string
	Location        string
	LocationPlaceID string
	CompanySize     entity.CompanySize
	Verified        *bool
	DataSources     []string
}

// SearchRequest is one page of a company search.
type SearchRequest struct {
	Query    string
	Filters  Filters
	Page     int
	PageSize int
}

// SearchResult is one page of matches.
type SearchResult struct {
	Companies []entity.Company
	Count     int
	HasMore   bool
	Page      int
	PageSize  int
}

// SearchService plans catalogue queries and falls back to external providers
// when the local store has too little.
type SearchService struct {
	companies  CompanyFinder
	ingester   Ingester
	tables     *catalog.Tables
	maxResults int
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithIngester enables the external fallback.
func WithIngester(ing Ingester) SearchOption {
	return func(s *SearchService) {
		s.ingester = ing
	}
}

// WithMaxResultsPerSource caps what each provider returns on fallback.
func WithMaxResultsPerSource(n int) SearchOption {
	return func(s *SearchService) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// NewSearchService constructs a SearchService. Nil tables fall back to the
// embedded defaults.
func NewSearchService(companies CompanyFinder, tables *catalog.Tables, opts ...SearchOption) *SearchService {
	if tables == nil {
		tables = catalog.Default()
	}
	s := &SearchService{companies: companies, tables: tables}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns one page of companies matching the request.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	req.Query = strings.TrimSpace(req.Query)
	req.Filters = normalizeFilters(req.Filters)
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	queryLen := utf8.RuneCountInString(req.Query)
	filtered := req.Filters.active()
	if queryLen == 1 && !filtered {
		return nil, ErrQueryTooShort
	}

	plan := s.Plan(req.Query, req.Filters)
	q := repository.CompanyQuery{
		Groups:      plan.Groups,
		CompanySize: req.Filters.CompanySize,
		Verified:    req.Filters.Verified,
		Limit:       req.PageSize,
		Offset:      (req.Page - 1) * req.PageSize,
	}

	companies, total, err := s.companies.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if s.ingester != nil && len(companies) < req.PageSize && req.Page == 1 && (queryLen >= 2 || filtered) {
		summary := s.ingester.Ingest(ctx, req.Filters.DataSources, sources.Query{
			Text:            req.Query,
			Location:        req.Filters.Location,
			LocationPlaceID: req.Filters.LocationPlaceID,
			Industry:        plan.Industry,
			MaxResults:      s.maxResults,
		})
		zap.L().Info("search fallback ingest",
			zap.String("query", req.Query),
			zap.Int("local", len(companies)),
			zap.Int("found", summary.Found),
			zap.Int("inserted", summary.Inserted),
		)
		if summary.Inserted > 0 {
			companies, total, err = s.companies.Search(ctx, q)
			if err != nil {
				return nil, err
			}
		}
	}

	return &SearchResult{
		Companies: companies,
		Count:     total,
		HasMore:   q.Offset+len(companies) < total,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}, nil
}

// QueryPlan is the store predicate set derived from a query and its filters.
type QueryPlan struct {
	Category string
	Region   string
	// Industry is the effective industry passed to providers on fallback.
	Industry string
	Groups   []repository.TermGroup
}

// Plan detects the category and region of a search and turns them into
// predicate groups. Each group is a disjunction; groups are ANDed.
func (s *SearchService) Plan(query string, f Filters) QueryPlan {
	var plan QueryPlan

	category, hasCategory := s.tables.DetectCategory(query)
	if !hasCategory && f.Industry != "" {
		category, hasCategory = s.tables.DetectCategory(f.Industry)
	}
	region, hasRegion := s.tables.DetectRegion(f.Location)
	if !hasRegion && f.Location == "" {
		region, hasRegion = s.tables.DetectRegion(query)
	}

	switch {
	case hasCategory:
		plan.Category = category.Key
		plan.Industry = category.Key
		plan.Groups = append(plan.Groups, repository.TermGroup{
			Patterns:   category.MatchTerms,
			Industries: category.Industries,
		})
	case f.Industry != "":
		terms := s.tables.IndustryTerms(f.Industry)
		plan.Industry = catalog.Normalize(f.Industry)
		plan.Groups = append(plan.Groups, repository.TermGroup{Patterns: terms, Industries: terms})
	}

	switch {
	case hasRegion:
		plan.Region = region.Key
		plan.Groups = append(plan.Groups, repository.TermGroup{Countries: region.Countries})
	case f.Location != "":
		plan.Groups = append(plan.Groups, repository.TermGroup{
			Countries: []string{f.Location},
			Cities:    []string{f.Location},
		})
	}

	// Free text is matched only when nothing was recognised, so a region-only
	// query matches every row in the region.
	if !hasCategory && !hasRegion && query != "" {
		plan.Groups = append(plan.Groups, repository.TermGroup{Patterns: []string{query}})
	}
	return plan
}

func normalizeFilters(f Filters) Filters {
	f.Industry = strings.TrimSpace(f.Industry)
	if strings.EqualFold(f.Industry, industryAll) {
		f.Industry = ""
	}
	f.Location = strings.TrimSpace(f.Location)
	f.LocationPlaceID = strings.TrimSpace(f.LocationPlaceID)
	if !f.CompanySize.Valid() {
		f.CompanySize = ""
	}
	return f
}

// active reports whether any result-narrowing filter is set. Data source
// selection only steers the fallback and does not count.
func (f Filters) active() bool {
	return f.Industry != "" || f.Location != "" || f.CompanySize != "" || f.Verified != nil
}
