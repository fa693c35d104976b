// Package companieshouse is a client for the UK Companies House public data API.
package companieshouse

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

const defaultBaseURL = "https://api.company-information.service.gov.uk"

// Client defines the Companies House operations used by the source adapter.
type Client interface {
	SearchCompanies(ctx context.Context, query string, itemsPerPage int) (*SearchResponse, error)
}

// SearchResponse is the response of GET /search/companies.
type SearchResponse struct {
	TotalResults int       `json:"total_results"`
	ItemsPerPage int       `json:"items_per_page"`
	Items        []Company `json:"items"`
}

// Company is a single search hit.
type Company struct {
	Title          string  `json:"title"`
	CompanyNumber  string  `json:"company_number"`
	CompanyStatus  string  `json:"company_status"`
	CompanyType    string  `json:"company_type"`
	DateOfCreation string  `json:"date_of_creation"`
	AddressSnippet string  `json:"address_snippet"`
	Description    string  `json:"description"`
	Address        Address `json:"address"`
}

// Address is the registered office address.
type Address struct {
	AddressLine1 string `json:"address_line_1"`
	Locality     string `json:"locality"`
	Region       string `json:"region"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

// APIError is returned when Companies House responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("companieshouse: HTTP %d: %s", e.StatusCode, e.Body)
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
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Companies House client. The API key is sent as the
// basic auth user name with an empty password.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchCompanies(ctx context.Context, query string, itemsPerPage int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	if itemsPerPage > 0 {
		params.Set("items_per_page", strconv.Itoa(itemsPerPage))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/companies?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "companieshouse: create request")
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "companieshouse: search %q", query)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "companieshouse: read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Wrapf(&APIError{StatusCode: resp.StatusCode, Body: string(data)}, "companieshouse: search %q", query)
	}

	var out SearchResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "companieshouse: decode response")
	}
	return &out, nil
}
