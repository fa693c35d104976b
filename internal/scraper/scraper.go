// Package scraper turns submitted website URLs into company records: it fetches
// each site, extracts a candidate record, backfills contacts and descriptions
// from likely sub-pages, optionally enriches the result and persists it.
package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/company-discovery/internal/entity"
	"github.com/octobees/company-discovery/internal/enrich"
	"github.com/octobees/company-discovery/internal/extract"
	"github.com/octobees/company-discovery/internal/repository"
)

const (
	defaultConcurrency  = 3
	defaultFetchTimeout = 15 * time.Second
	defaultProbeTimeout = 10 * time.Second
)

var contactPaths = []string{
	"/contact", "/contact-us", "/contactus", "/inquiry", "/about", "/about-us", "/company",
	"/ja/contact", "/jp/contact", "/ja/inquiry", "/jp/inquiry", "/ja/company", "/jp/company",
}

var aboutPaths = []string{
	"/about", "/about-us", "/company", "/company/profile", "/corporate",
	"/ja/about", "/jp/about", "/ja/company", "/jp/company",
}

// Store is the persistence the orchestrator needs when results are confirmed.
type Store interface {
	FindByWebsite(ctx context.Context, source entity.DataSource, websiteURL string) (*entity.Company, error)
	Insert(ctx context.Context, company *entity.Company) error
	Replace(ctx context.Context, id uuid.UUID, company *entity.Company) error
}

// Request describes one scrape batch.
type Request struct {
	URLs     []string
	Industry string
	Confirm  bool
	Replace  bool
	LLM      bool
}

// Result is returned even when individual URLs failed.
type Result struct {
	Companies     []entity.Company
	Count         int
	StoredCount   int
	ReplacedCount int
	SkippedCount  int
}

// Orchestrator coordinates fetching, extraction, enrichment and persistence.
type Orchestrator struct {
	primary      Fetcher
	direct       Fetcher
	enricher     *enrich.Enricher
	store        Store
	concurrency  int
	fetchTimeout time.Duration
	probeTimeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPrimaryFetcher sets the scraping API tried before the direct fetch.
func WithPrimaryFetcher(f Fetcher) Option {
	return func(o *Orchestrator) { o.primary = f }
}

// WithEnricher enables the model pass for requests that ask for it.
func WithEnricher(e *enrich.Enricher) Option {
	return func(o *Orchestrator) { o.enricher = e }
}

// WithConcurrency caps the number of sites processed at once.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithTimeouts overrides the page fetch and probe timeouts.
func WithTimeouts(fetch, probe time.Duration) Option {
	return func(o *Orchestrator) {
		if fetch > 0 {
			o.fetchTimeout = fetch
		}
		if probe > 0 {
			o.probeTimeout = probe
		}
	}
}

// New creates an orchestrator. direct is required; store may be nil when
// results are never confirmed.
func New(direct Fetcher, store Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		direct:       direct,
		store:        store,
		concurrency:  defaultConcurrency,
		fetchTimeout: defaultFetchTimeout,
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Scrape processes every valid URL in req. Failures of single sites are
// logged and omitted; only an input with no valid URL fails the batch.
func (o *Orchestrator) Scrape(ctx context.Context, req Request) (*Result, error) {
	urls := canonicalURLs(req.URLs)
	if len(urls) == 0 {
		return nil, ErrNoValidURLs
	}

	slots := make([]*entity.Company, len(urls))
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, pageURL := range urls {
		g.Go(func() error {
			slots[i] = o.scrapeSite(ctx, pageURL, req)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{Companies: make([]entity.Company, 0, len(urls))}
	for _, c := range slots {
		if c != nil {
			res.Companies = append(res.Companies, *c)
		}
	}
	res.Count = len(res.Companies)

	if req.Confirm {
		o.persist(ctx, res, req.Replace)
	}

	zap.L().Info("scrape batch finished",
		zap.Int("requested", len(req.URLs)),
		zap.Int("valid", len(urls)),
		zap.Int("extracted", res.Count),
		zap.Int("stored", res.StoredCount),
		zap.Int("replaced", res.ReplacedCount),
		zap.Int("skipped", res.SkippedCount),
	)
	return res, nil
}

func (o *Orchestrator) scrapeSite(ctx context.Context, pageURL string, req Request) *entity.Company {
	ex := o.extractPage(ctx, pageURL, req.Industry)
	if ex == nil {
		return nil
	}
	c := ex.Company
	text := ex.Text

	base := origin(pageURL)
	if !c.HasContact() {
		text += o.probeContacts(ctx, base, &c)
	}
	if c.Description == extract.PlaceholderDescription {
		text += o.probeAbout(ctx, base, &c)
	}

	if o.enricher != nil {
		c = o.enricher.Apply(ctx, c, text, req.LLM)
	}

	c.WebsiteURL = entity.StringPtr(pageURL)
	c.DataSource = entity.SourceWebScraping
	c.EnsureDefaults()
	return &c
}

// extractPage tries the scraping API first and falls back to a direct fetch
// when the API fails or returns garbled text.
func (o *Orchestrator) extractPage(ctx context.Context, pageURL, hint string) *extract.Extraction {
	if o.primary != nil {
		content, err := o.fetch(ctx, o.primary, pageURL, o.fetchTimeout)
		switch {
		case err != nil:
			zap.L().Warn("scraping api failed, falling back to direct fetch", zap.String("url", pageURL), zap.Error(err))
		default:
			if ex := extract.Extract(content, pageURL, hint); ex != nil && !extract.IsGarbled(&ex.Company) {
				return ex
			}
			zap.L().Info("scraping api content unusable, falling back to direct fetch", zap.String("url", pageURL))
		}
	}

	content, err := o.fetch(ctx, o.direct, pageURL, o.fetchTimeout)
	if err != nil {
		zap.L().Warn("site fetch failed", zap.String("url", pageURL), zap.Error(err))
		return nil
	}
	ex := extract.Extract(content, pageURL, hint)
	if ex == nil {
		zap.L().Warn("no company extracted", zap.String("url", pageURL))
	}
	return ex
}

func (o *Orchestrator) fetch(ctx context.Context, f Fetcher, pageURL string, timeout time.Duration) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return f.Fetch(fetchCtx, pageURL)
}

// probeContacts walks the contact paths until one yields an email or phone.
// It returns the probed page text for the enrichment pass.
func (o *Orchestrator) probeContacts(ctx context.Context, base string, c *entity.Company) string {
	for _, path := range contactPaths {
		if ctx.Err() != nil {
			return ""
		}
		ex := o.probe(ctx, base+path)
		if ex == nil || !ex.Company.HasContact() {
			continue
		}
		if c.ContactEmail == nil {
			c.ContactEmail = ex.Company.ContactEmail
		}
		if c.Phone == nil {
			c.Phone = ex.Company.Phone
		}
		if c.LocationCountry == nil {
			c.LocationCountry = ex.Company.LocationCountry
		}
		if c.LocationCity == nil {
			c.LocationCity = ex.Company.LocationCity
		}
		return "\n" + ex.Text
	}
	return ""
}

// probeAbout walks the about paths until one yields a real description.
func (o *Orchestrator) probeAbout(ctx context.Context, base string, c *entity.Company) string {
	for _, path := range aboutPaths {
		if ctx.Err() != nil {
			return ""
		}
		ex := o.probe(ctx, base+path)
		if ex == nil || ex.Company.Description == extract.PlaceholderDescription {
			continue
		}
		c.Description = ex.Company.Description
		if len(c.Specialties) == 0 {
			c.Specialties = ex.Company.Specialties
		}
		return "\n" + ex.Text
	}
	return ""
}

func (o *Orchestrator) probe(ctx context.Context, pageURL string) *extract.Extraction {
	content, err := o.fetch(ctx, o.direct, pageURL, o.probeTimeout)
	if err != nil || strings.TrimSpace(content) == "" {
		return nil
	}
	return extract.Extract(content, pageURL, "")
}

// persist stores confirmed records one by one. A scraped record already stored
// under the same canonical URL is skipped unless replace is set, in which case
// it is swapped for the new one under the same id. Rows other sources hold for
// the URL are left alone.
func (o *Orchestrator) persist(ctx context.Context, res *Result, replace bool) {
	if o.store == nil {
		zap.L().Warn("scrape results not persisted: no store configured")
		return
	}

	for i := range res.Companies {
		c := &res.Companies[i]
		website := entity.Deref(c.WebsiteURL)
		log := zap.L().With(zap.String("website", website))

		existing, err := o.store.FindByWebsite(ctx, entity.SourceWebScraping, website)
		switch {
		case err == nil && !replace:
			res.SkippedCount++
			continue
		case err == nil:
			err = o.store.Replace(ctx, existing.ID, c)
			if err == nil {
				res.StoredCount++
				res.ReplacedCount++
				continue
			}
			if !errors.Is(err, repository.ErrCompanyNotFound) {
				log.Error("replace existing company failed", zap.Error(err))
				continue
			}
		case !errors.Is(err, repository.ErrCompanyNotFound):
			log.Error("lookup existing company failed", zap.Error(err))
			continue
		}

		if err := o.store.Insert(ctx, c); err != nil {
			log.Error("store scraped company failed", zap.Error(err))
			continue
		}
		res.StoredCount++
	}
}
