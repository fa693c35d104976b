package sources

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/octobees/company-discovery/internal/entity"
	"github.com/octobees/company-discovery/internal/extract"
	"github.com/octobees/company-discovery/pkg/opencorporates"
)

const openCorporatesFallbackTerm = "company"

var jurisdictionCodes = map[string]string{
	"united kingdom": "gb",
	"uk":             "gb",
	"england":        "gb",
	"united states":  "us",
	"usa":            "us",
	"japan":          "jp",
	"日本":             "jp",
	"thailand":       "th",
	"タイ":             "th",
	"singapore":      "sg",
	"germany":        "de",
	"france":         "fr",
	"netherlands":    "nl",
	"australia":      "au",
	"canada":         "ca",
	"india":          "in",
	"vietnam":        "vn",
	"indonesia":      "id",
	"malaysia":       "my",
	"philippines":    "ph",
	"hong kong":      "hk",
	"new zealand":    "nz",
	"ireland":        "ie",
}

var jurisdictionCountries = map[string]string{
	"gb": "United Kingdom",
	"us": "United States",
	"jp": "Japan",
	"th": "Thailand",
	"sg": "Singapore",
	"de": "Germany",
	"fr": "France",
	"nl": "Netherlands",
	"au": "Australia",
	"ca": "Canada",
	"in": "India",
	"vn": "Vietnam",
	"id": "Indonesia",
	"my": "Malaysia",
	"ph": "Philippines",
	"hk": "Hong Kong",
	"nz": "New Zealand",
	"ie": "Ireland",
}

// OpenCorporates searches the OpenCorporates registry aggregator.
type OpenCorporates struct {
	client  opencorporates.Client
	timeout time.Duration
}

// NewOpenCorporates builds the adapter. A nil client makes it inert.
func NewOpenCorporates(client opencorporates.Client, timeout time.Duration) *OpenCorporates {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenCorporates{client: client, timeout: timeout}
}

// Configured reports whether the adapter has a client to call.
func (o *OpenCorporates) Configured() bool { return o.client != nil }

func (o *OpenCorporates) Name() entity.DataSource { return entity.SourceOpenCorporates }

func (o *OpenCorporates) Synthetic() bool { return false }

func (o *OpenCorporates) Search(ctx context.Context, q Query) []entity.Company {
	if o.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	term := firstNonEmpty(q.Text, q.Industry, openCorporatesFallbackTerm)
	resp, err := o.client.SearchCompanies(ctx, opencorporates.SearchRequest{
		Query:            term,
		JurisdictionCode: JurisdictionCode(q.Location),
		PerPage:          min(q.limit(), 100),
	})
	if err != nil {
		zap.L().Warn("opencorporates search failed", zap.String("query", term), zap.Error(err))
		return nil
	}

	hits := resp.Companies()
	out := make([]entity.Company, 0, len(hits))
	for _, hit := range hits {
		if strings.TrimSpace(hit.Name) == "" {
			continue
		}
		out = append(out, mapOpenCorporates(hit))
	}
	return truncate(out, q.limit())
}

func (o *OpenCorporates) TestConnection(ctx context.Context) bool {
	if o.client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	_, err := o.client.SearchCompanies(ctx, opencorporates.SearchRequest{Query: "test", PerPage: 1})
	return err == nil
}

// JurisdictionCode maps a location to an OpenCorporates jurisdiction code,
// falling back to the first two letters of the location.
func JurisdictionCode(location string) string {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return ""
	}
	if code, ok := jurisdictionCodes[loc]; ok {
		return code
	}
	var letters []rune
	for _, r := range loc {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			continue
		}
		letters = append(letters, r)
		if len(letters) == 2 {
			return string(letters)
		}
	}
	return ""
}

func mapOpenCorporates(hit opencorporates.Company) entity.Company {
	name := extract.SanitizeText(hit.Name)
	code := strings.ToLower(hit.JurisdictionCode)
	country := firstNonEmpty(hit.RegisteredAddress.Country, jurisdictionCountries[strings.SplitN(code, "_", 2)[0]])

	industry := companyTypeIndustry(hit.CompanyType)
	industries := []string{industry}
	if industry == "" {
		industries = extract.InferIndustry("", nil, name)
	}

	desc := fmt.Sprintf("%s is a registered company", name)
	if hit.CompanyType != "" {
		desc += fmt.Sprintf(" (%s)", hit.CompanyType)
	}
	if country != "" {
		desc += " in " + country
	}
	if hit.IncorporationDate != "" {
		desc += ", incorporated " + hit.IncorporationDate
	}
	desc += "."

	externalID := hit.OpenCorporatesURL
	if hit.CompanyNumber != "" {
		externalID = code + "/" + hit.CompanyNumber
	}

	return entity.Company{
		Name:            name,
		Description:     desc,
		LocationCountry: entity.StringPtr(country),
		LocationCity:    entity.StringPtr(hit.RegisteredAddress.Locality),
		Industry:        industries,
		Specialties:     []string{},
		CompanySize:     entity.SizeSmall,
		Verified:        !hit.Inactive,
		ExternalID:      entity.StringPtr(externalID),
	}
}
