package scraper

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"

	"github.com/octobees/company-discovery/internal/extract"
	"github.com/octobees/company-discovery/pkg/firecrawl"
)

const (
	// DefaultUserAgent identifies the crawler to site operators.
	DefaultUserAgent = "CompanyDiscoveryBot/1.0 (+https://octobees.com/bot; company directory crawler)"

	maxBodyBytes = 2 << 20
)

// Fetcher retrieves a page and returns its content as UTF-8 HTML or markdown.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// DirectFetcher downloads pages over plain HTTP.
type DirectFetcher struct {
	client    *http.Client
	userAgent string
}

// NewDirectFetcher builds a fetcher with a descriptive user agent. Timeouts
// are applied per call by the orchestrator through the context. The default
// client refuses to connect to non-public addresses, including ones a public
// hostname resolves to.
func NewDirectFetcher(userAgent string, client *http.Client) *DirectFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if client == nil {
		client = publicOnlyClient()
	}
	return &DirectFetcher{client: client, userAgent: userAgent}
}

func publicOnlyClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip == nil || !PublicIP(ip) {
				return fmt.Errorf("%w: %s", ErrNonPublicHost, host)
			}
			return nil
		},
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: 30 * time.Second, Transport: transport}
}

func (f *DirectFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "direct: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "ja,en;q=0.8,th;q=0.6")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "direct: get %s", pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", eris.Errorf("direct: get %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", eris.Wrapf(err, "direct: read %s", pageURL)
	}
	text, _ := extract.DecodeBody(body, resp.Header.Get("Content-Type"))
	return text, nil
}

// FirecrawlFetcher retrieves pages through the Firecrawl scraping API.
type FirecrawlFetcher struct {
	client firecrawl.Client
}

// NewFirecrawlFetcher wraps a Firecrawl client.
func NewFirecrawlFetcher(client firecrawl.Client) *FirecrawlFetcher {
	return &FirecrawlFetcher{client: client}
}

func (f *FirecrawlFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     pageURL,
		Formats: []string{"rawHtml", "markdown"},
	})
	if err != nil {
		return "", err
	}
	content := resp.Data.Content()
	if strings.TrimSpace(content) == "" {
		return "", eris.Errorf("firecrawl: empty content for %s", pageURL)
	}
	return content, nil
}
