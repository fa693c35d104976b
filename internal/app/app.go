// Package app assembles the repositories, services and HTTP surface from
// configuration. Both the API server and discoveryctl build on it.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/company-discovery/internal/auth"
	"github.com/octobees/company-discovery/internal/catalog"
	"github.com/octobees/company-discovery/internal/config"
	"github.com/octobees/company-discovery/internal/enrich"
	"github.com/octobees/company-discovery/internal/handler"
	middlewarepkg "github.com/octobees/company-discovery/internal/middleware"
	"github.com/octobees/company-discovery/internal/notify"
	"github.com/octobees/company-discovery/internal/repository"
	"github.com/octobees/company-discovery/internal/router"
	"github.com/octobees/company-discovery/internal/scraper"
	"github.com/octobees/company-discovery/internal/service"
	"github.com/octobees/company-discovery/internal/sources"
	"github.com/octobees/company-discovery/pkg/companieshouse"
	"github.com/octobees/company-discovery/pkg/firecrawl"
	"github.com/octobees/company-discovery/pkg/opencorporates"
)

// DB is the database handle the repositories run on. *pgxpool.Pool
// satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// App holds the wired services.
type App struct {
	Config    *config.Config
	JWT       *auth.JWTManager
	Auth      *service.AuthService
	Companies *service.CompaniesService
	Search    *service.SearchService
	Access    *service.AccessFilter
	Inquiries *service.InquiryService
	Scraper   *scraper.Orchestrator
	Registry  *sources.Registry
}

// New wires every component on top of db.
func New(ctx context.Context, cfg *config.Config, db DB) (*App, error) {
	tables := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		tables = loaded
	}

	companiesRepo := repository.NewPGXCompaniesRepository(db)
	usersRepo := repository.NewPGXUsersRepository(db)
	inquiriesRepo := repository.NewPGXInquiriesRepository(db)
	entitlementsRepo := repository.NewPGXEntitlementsRepository(db)

	adapters, err := buildSources(ctx, cfg.Sources)
	if err != nil {
		return nil, err
	}
	registry := sources.NewRegistry(companiesRepo, cfg.Sources.DefaultDataSources, adapters...)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	companies := service.NewCompaniesService(companiesRepo)

	a := &App{
		Config:    cfg,
		JWT:       jwtManager,
		Auth:      service.NewAuthService(usersRepo, jwtManager),
		Companies: companies,
		Search: service.NewSearchService(companiesRepo, tables,
			service.WithIngester(registry),
			service.WithMaxResultsPerSource(cfg.Sources.MaxResultsPerSource),
		),
		Access:    service.NewAccessFilter(entitlementsRepo),
		Inquiries: service.NewInquiryService(companiesRepo, inquiriesRepo, buildNotifier(cfg.NotifyBaseURL)),
		Scraper:   buildScraper(cfg, companiesRepo),
		Registry:  registry,
	}
	return a, nil
}

// Handlers builds the HTTP handlers.
func (a *App) Handlers() router.Handlers {
	return router.Handlers{
		Auth:        handler.NewAuthHandler(a.Auth),
		Companies:   handler.NewCompaniesHandler(a.Search, a.Companies, a.Access),
		Inquiries:   handler.NewInquiriesHandler(a.Inquiries),
		Scrape:      handler.NewScrapeHandler(a.Scraper),
		Sources:     handler.NewSourcesHandler(a.Registry),
		AdminUpload: handler.NewAdminUploadHandler(a.Companies),
	}
}

// Echo returns a server with the global middleware and every route registered.
func (a *App) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, a.Config, a.JWT, a.Handlers())
	return e
}

// Close waits for background work started by requests.
func (a *App) Close() {
	a.Inquiries.Wait()
}

func buildSources(ctx context.Context, cfg config.SourcesConfig) ([]sources.Source, error) {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	places, err := sources.NewGooglePlaces(ctx, cfg.GooglePlacesKey, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("google places: %w", err)
	}

	var corporates opencorporates.Client
	if cfg.OpenCorporatesToken != "" {
		corporates = opencorporates.NewClient(cfg.OpenCorporatesToken, opencorporates.WithHTTPClient(httpClient))
	}
	var house companieshouse.Client
	if cfg.CompaniesHouseKey != "" {
		house = companieshouse.NewClient(cfg.CompaniesHouseKey, companieshouse.WithHTTPClient(httpClient))
	}

	out := []sources.Source{
		places,
		sources.NewOpenCorporates(corporates, cfg.RequestTimeout),
		sources.NewCompaniesHouse(house, cfg.RequestTimeout),
	}
	for _, s := range out {
		if c, ok := s.(configurable); ok && !c.Configured() {
			zap.L().Warn("source credentials not set; searches return no results", zap.String("source", string(s.Name())))
		}
	}

	if cfg.EnableSynthetic {
		out = append(out, sources.NewCrunchbase(), sources.NewYellowPages())
	}
	return out, nil
}

// configurable is implemented by adapters that need credentials.
type configurable interface {
	Configured() bool
}

func buildScraper(cfg *config.Config, store scraper.Store) *scraper.Orchestrator {
	opts := []scraper.Option{
		scraper.WithConcurrency(cfg.Scrape.Concurrency),
		scraper.WithTimeouts(cfg.Scrape.FetchTimeout, cfg.Scrape.ProbeTimeout),
	}
	if cfg.Scrape.FirecrawlKey != "" {
		client := firecrawl.NewClient(cfg.Scrape.FirecrawlKey, firecrawl.WithBaseURL(cfg.Scrape.FirecrawlBaseURL))
		opts = append(opts, scraper.WithPrimaryFetcher(scraper.NewFirecrawlFetcher(client)))
	}
	if model := enrich.NewModel(cfg.LLM); model != nil {
		opts = append(opts, scraper.WithEnricher(enrich.New(model,
			enrich.WithTimeout(cfg.LLM.RequestTimeout),
			enrich.WithMaxExcerpt(cfg.LLM.MaxExcerptChars),
		)))
	}
	return scraper.New(scraper.NewDirectFetcher(cfg.Scrape.UserAgent, nil), store, opts...)
}

func buildNotifier(baseURL string) notify.Notifier {
	if baseURL == "" {
		return notify.Noop{}
	}
	return notify.NewClient(nil, baseURL)
}
