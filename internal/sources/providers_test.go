package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/company-discovery/internal/entity"
	"github.com/octobees/company-discovery/pkg/companieshouse"
	"github.com/octobees/company-discovery/pkg/opencorporates"
)

type fakeOpenCorporates struct {
	resp *opencorporates.SearchResponse
	err  error
	got  []opencorporates.SearchRequest
}

func (f *fakeOpenCorporates) SearchCompanies(_ context.Context, req opencorporates.SearchRequest) (*opencorporates.SearchResponse, error) {
	f.got = append(f.got, req)
	return f.resp, f.err
}

func ocResponse(companies ...opencorporates.Company) *opencorporates.SearchResponse {
	resp := &opencorporates.SearchResponse{}
	for _, c := range companies {
		resp.Results.Companies = append(resp.Results.Companies, opencorporates.CompanyWrapper{Company: c})
	}
	return resp
}

func TestOpenCorporates_Search(t *testing.T) {
	client := &fakeOpenCorporates{resp: ocResponse(
		opencorporates.Company{
			Name: "Siam Logistics Co., Ltd.", CompanyNumber: "0105551234567", JurisdictionCode: "th",
			CompanyType: "Limited Company", IncorporationDate: "2008-04-01",
			RegisteredAddress: opencorporates.Address{Locality: "Bangkok"},
		},
		opencorporates.Company{Name: "Old Bank PLC", CompanyNumber: "42", JurisdictionCode: "gb", CompanyType: "Bank", Inactive: true},
		opencorporates.Company{Name: " "},
	)}
	src := NewOpenCorporates(client, 0)

	got := src.Search(context.Background(), Query{Location: "Thailand", MaxResults: 5})

	require.Len(t, client.got, 1)
	assert.Equal(t, "company", client.got[0].Query)
	assert.Equal(t, "th", client.got[0].JurisdictionCode)
	assert.Equal(t, 5, client.got[0].PerPage)

	require.Len(t, got, 2)
	assert.Equal(t, "Siam Logistics Co., Ltd.", got[0].Name)
	assert.Equal(t, "Thailand", entity.Deref(got[0].LocationCountry))
	assert.Equal(t, "Bangkok", entity.Deref(got[0].LocationCity))
	assert.Contains(t, got[0].Industry, "logistics")
	assert.True(t, got[0].Verified)
	assert.Equal(t, "th/0105551234567", entity.Deref(got[0].ExternalID))
	assert.Contains(t, got[0].Description, "incorporated 2008-04-01")

	assert.Equal(t, []string{"finance"}, got[1].Industry)
	assert.False(t, got[1].Verified)
	assert.Equal(t, "United Kingdom", entity.Deref(got[1].LocationCountry))
}

func TestOpenCorporates_Degrades(t *testing.T) {
	assert.Empty(t, NewOpenCorporates(nil, 0).Search(context.Background(), Query{Text: "x"}))
	assert.False(t, NewOpenCorporates(nil, 0).TestConnection(context.Background()))

	client := &fakeOpenCorporates{err: &opencorporates.APIError{StatusCode: 401, Body: "invalid token"}}
	src := NewOpenCorporates(client, 0)
	assert.Empty(t, src.Search(context.Background(), Query{Text: "x"}))
	assert.False(t, src.TestConnection(context.Background()))
}

func TestJurisdictionCode(t *testing.T) {
	assert.Equal(t, "gb", JurisdictionCode("United Kingdom"))
	assert.Equal(t, "jp", JurisdictionCode(" Japan "))
	assert.Equal(t, "jp", JurisdictionCode("日本"))
	assert.Equal(t, "br", JurisdictionCode("Brazil"))
	assert.Equal(t, "", JurisdictionCode(""))
	assert.Equal(t, "", JurisdictionCode("東京"))
}

type fakeCompaniesHouse struct {
	resp  *companieshouse.SearchResponse
	err   error
	query string
	per   int
}

func (f *fakeCompaniesHouse) SearchCompanies(_ context.Context, query string, itemsPerPage int) (*companieshouse.SearchResponse, error) {
	f.query, f.per = query, itemsPerPage
	return f.resp, f.err
}

func TestCompaniesHouse_Search(t *testing.T) {
	client := &fakeCompaniesHouse{resp: &companieshouse.SearchResponse{Items: []companieshouse.Company{
		{Title: "THAMES FREIGHT LIMITED", CompanyNumber: "01234567", CompanyStatus: "active", CompanyType: "ltd",
			Description: "01234567 - Incorporated on 1 March 1999", Address: companieshouse.Address{Locality: "London"}},
		{Title: "NORTHERN CHARITY TRUST", CompanyNumber: "07654321", CompanyStatus: "dissolved",
			CompanyType: "private-limited-guarant-nsc", AddressSnippet: "1 High St, Leeds"},
	}}}
	src := NewCompaniesHouse(client, 0)

	got := src.Search(context.Background(), Query{Text: "freight", MaxResults: 200})

	assert.Equal(t, "freight", client.query)
	assert.Equal(t, 100, client.per)
	require.Len(t, got, 2)
	assert.True(t, got[0].Verified)
	assert.Equal(t, "United Kingdom", entity.Deref(got[0].LocationCountry))
	assert.Equal(t, "London", entity.Deref(got[0].LocationCity))
	assert.Equal(t, "01234567", entity.Deref(got[0].ExternalID))
	assert.Equal(t, "01234567 - Incorporated on 1 March 1999", got[0].Description)

	assert.False(t, got[1].Verified)
	assert.Equal(t, []string{"nonprofit"}, got[1].Industry)
	assert.Equal(t, "1 High St, Leeds", got[1].Description)
}

func TestCompaniesHouse_Degrades(t *testing.T) {
	src := NewCompaniesHouse(&fakeCompaniesHouse{err: errors.New("dial tcp: timeout")}, 0)
	assert.Empty(t, src.Search(context.Background(), Query{Text: "x"}))
	assert.Empty(t, src.Search(context.Background(), Query{}))
	assert.Empty(t, NewCompaniesHouse(nil, 0).Search(context.Background(), Query{Text: "x"}))
}

func TestSynthetic(t *testing.T) {
	cb := NewCrunchbase()
	q := Query{Text: "robotics", Industry: "Technology", Location: "Japan", MaxResults: 20}

	first := cb.Search(context.Background(), q)
	second := cb.Search(context.Background(), q)

	require.Len(t, first, 5)
	assert.Equal(t, first, second)
	for _, c := range first {
		assert.True(t, c.Synthetic)
		assert.False(t, c.Verified)
		assert.Equal(t, []string{"technology"}, c.Industry)
		assert.Equal(t, "Japan", entity.Deref(c.LocationCountry))
		assert.True(t, c.CompanySize.Valid())
	}
	assert.True(t, cb.Synthetic())
	assert.True(t, cb.TestConnection(context.Background()))

	yp := NewYellowPages().Search(context.Background(), Query{MaxResults: 2})
	require.Len(t, yp, 2)
	assert.Equal(t, []string{entity.DefaultIndustry}, yp[0].Industry)
	assert.NotEqual(t, entity.Deref(first[0].ExternalID), entity.Deref(yp[0].ExternalID))
}
