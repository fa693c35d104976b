// Package opencorporates is a client for the OpenCorporates company search API.
package opencorporates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.opencorporates.com/v0.4"

// Client defines the OpenCorporates operations used by the source adapter.
type Client interface {
	SearchCompanies(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest holds the query parameters for GET /companies/search.
type SearchRequest struct {
	Query            string
	JurisdictionCode string
	PerPage          int
}

// SearchResponse is the response envelope of GET /companies/search.
type SearchResponse struct {
	Results struct {
		Companies  []CompanyWrapper `json:"companies"`
		Page       int              `json:"page"`
		PerPage    int              `json:"per_page"`
		TotalCount int              `json:"total_count"`
	} `json:"results"`
}

// Companies flattens the wrapped result list.
func (r *SearchResponse) Companies() []Company {
	out := make([]Company, 0, len(r.Results.Companies))
	for _, w := range r.Results.Companies {
		out = append(out, w.Company)
	}
	return out
}

// CompanyWrapper matches the {"company": {...}} nesting of the API.
type CompanyWrapper struct {
	Company Company `json:"company"`
}

// Company is a registry entry.
type Company struct {
	Name                    string  `json:"name"`
	CompanyNumber           string  `json:"company_number"`
	JurisdictionCode        string  `json:"jurisdiction_code"`
	IncorporationDate       string  `json:"incorporation_date"`
	CompanyType             string  `json:"company_type"`
	CurrentStatus           string  `json:"current_status"`
	Inactive                bool    `json:"inactive"`
	RegisteredAddressInFull string  `json:"registered_address_in_full"`
	RegisteredAddress       Address `json:"registered_address"`
	OpenCorporatesURL       string  `json:"opencorporates_url"`
}

// Address is the structured registered address.
type Address struct {
	StreetAddress string `json:"street_address"`
	Locality      string `json:"locality"`
	Region        string `json:"region"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

// APIError is returned when OpenCorporates responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("opencorporates: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiToken string
	baseURL  string
	http     *http.Client
}

// NewClient creates a new OpenCorporates client.
func NewClient(apiToken string, opts ...Option) Client {
	c := &httpClient{
		apiToken: apiToken,
		baseURL:  defaultBaseURL,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchCompanies(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", req.Query)
	if req.JurisdictionCode != "" {
		params.Set("jurisdiction_code", req.JurisdictionCode)
	}
	if req.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(req.PerPage))
	}
	if c.apiToken != "" {
		params.Set("api_token", c.apiToken)
	}

	var resp SearchResponse
	if err := c.get(ctx, "/companies/search?"+params.Encode(), &resp); err != nil {
		return nil, eris.Wrapf(err, "opencorporates: search %q", req.Query)
	}
	return &resp, nil
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}
	return nil
}
