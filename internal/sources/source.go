// Package sources adapts external company providers to the common company
// schema. Adapters never fail a search: provider errors are logged and yield
// an empty result.
package sources

import (
	"context"
	"strings"
	"time"

	"github.com/octobees/company-discovery/internal/entity"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxResults = 20
)

// Query is the provider-neutral search request.
type Query struct {
	Text            string
	Location        string
	LocationPlaceID string
	Industry        string
	MaxResults      int
}

func (q Query) limit() int {
	if q.MaxResults <= 0 {
		return defaultMaxResults
	}
	return q.MaxResults
}

// Source is a provider of company records.
type Source interface {
	Name() entity.DataSource
	// Synthetic reports whether the adapter generates demo data instead of
	// calling a live provider.
	Synthetic() bool
	Search(ctx context.Context, q Query) []entity.Company
	TestConnection(ctx context.Context) bool
}

func truncate(companies []entity.Company, n int) []entity.Company {
	if n > 0 && len(companies) > n {
		return companies[:n]
	}
	return companies
}

// companyTypeIndustry guesses an industry from a registry company type.
func companyTypeIndustry(companyType string) string {
	t := strings.ToLower(companyType)
	switch {
	case t == "":
		return ""
	case strings.Contains(t, "bank"), strings.Contains(t, "financ"), strings.Contains(t, "insurance"),
		strings.Contains(t, "investment"), strings.Contains(t, "credit"):
		return "finance"
	case strings.Contains(t, "charit"), strings.Contains(t, "non-profit"), strings.Contains(t, "nonprofit"),
		strings.Contains(t, "not for profit"), strings.Contains(t, "guarant"):
		return "nonprofit"
	case strings.Contains(t, "partnership"), strings.Contains(t, "llp"):
		return "professional_services"
	case strings.Contains(t, "cooperative"), strings.Contains(t, "co-operative"):
		return "cooperative"
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
