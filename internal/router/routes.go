package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/company-discovery/internal/auth"
	"github.com/octobees/company-discovery/internal/config"
	"github.com/octobees/company-discovery/internal/entity"
	"github.com/octobees/company-discovery/internal/handler"
	middlewarepkg "github.com/octobees/company-discovery/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Companies   *handler.CompaniesHandler
	Inquiries   *handler.InquiriesHandler
	Scrape      *handler.ScrapeHandler
	Sources     *handler.SourcesHandler
	AdminUpload *handler.AdminUploadHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/login", handlers.Auth.Login)

	optionalAuth := middlewarepkg.OptionalJWT(jwtManager)
	e.GET("/companies", handlers.Companies.Search, optionalAuth)
	e.GET("/companies/:id", handlers.Companies.Get, optionalAuth)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.POST("/companies/:id/inquiries", handlers.Inquiries.Create)
	secured.POST("/scrape", handlers.Scrape.Scrape, middlewarepkg.ScrapeRateLimiter(cfg.RateLimitScrape))

	admin := secured.Group("/admin", middlewarepkg.RequireRole(entity.RoleAdmin))
	admin.GET("/sources", handlers.Sources.Test)
	admin.POST("/upload-csv", handlers.AdminUpload.UploadCSV)
}
