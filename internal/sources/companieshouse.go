package sources

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/company-discovery/internal/entity"
	"github.com/octobees/company-discovery/internal/extract"
	"github.com/octobees/company-discovery/pkg/companieshouse"
)

// CompaniesHouse searches the UK Companies House register.
type CompaniesHouse struct {
	client  companieshouse.Client
	timeout time.Duration
}

// NewCompaniesHouse builds the adapter. A nil client makes it inert.
func NewCompaniesHouse(client companieshouse.Client, timeout time.Duration) *CompaniesHouse {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CompaniesHouse{client: client, timeout: timeout}
}

// Configured reports whether the adapter has a client to call.
func (c *CompaniesHouse) Configured() bool { return c.client != nil }

func (c *CompaniesHouse) Name() entity.DataSource { return entity.SourceCompaniesHouse }

func (c *CompaniesHouse) Synthetic() bool { return false }

func (c *CompaniesHouse) Search(ctx context.Context, q Query) []entity.Company {
	if c.client == nil {
		return nil
	}
	term := firstNonEmpty(q.Text, q.Industry)
	if term == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.SearchCompanies(ctx, term, min(q.limit(), 100))
	if err != nil {
		zap.L().Warn("companies house search failed", zap.String("query", term), zap.Error(err))
		return nil
	}

	out := make([]entity.Company, 0, len(resp.Items))
	for _, item := range resp.Items {
		if strings.TrimSpace(item.Title) == "" {
			continue
		}
		out = append(out, mapCompaniesHouse(item))
	}
	return truncate(out, q.limit())
}

func (c *CompaniesHouse) TestConnection(ctx context.Context) bool {
	if c.client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	_, err := c.client.SearchCompanies(ctx, "test", 1)
	return err == nil
}

func mapCompaniesHouse(item companieshouse.Company) entity.Company {
	name := extract.SanitizeText(item.Title)

	industry := companyTypeIndustry(item.CompanyType)
	industries := []string{industry}
	if industry == "" {
		industries = extract.InferIndustry("", nil, name)
	}

	desc := firstNonEmpty(item.Description, item.AddressSnippet)
	if desc == "" {
		desc = name + " is registered with Companies House."
	}

	return entity.Company{
		Name:            name,
		Description:     extract.Truncate(extract.SanitizeText(desc), extract.MaxDescriptionRunes),
		LocationCountry: entity.StringPtr(firstNonEmpty(item.Address.Country, "United Kingdom")),
		LocationCity:    entity.StringPtr(item.Address.Locality),
		Industry:        industries,
		Specialties:     []string{},
		CompanySize:     entity.SizeSmall,
		Verified:        item.CompanyStatus == "active",
		ExternalID:      entity.StringPtr(item.CompanyNumber),
	}
}
