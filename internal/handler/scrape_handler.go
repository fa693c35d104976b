package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/company-discovery/internal/dto"
	middleware "github.com/octobees/company-discovery/internal/middleware"
	"github.com/octobees/company-discovery/internal/scraper"
)

// maxScrapeURLs bounds a single batch.
const maxScrapeURLs = 20

// Scraper runs a scrape batch.
type Scraper interface {
	Scrape(ctx context.Context, req scraper.Request) (*scraper.Result, error)
}

// ScrapeHandler runs website scrapes synchronously.
type ScrapeHandler struct {
	scraper Scraper
}

// NewScrapeHandler constructs a scrape handler.
func NewScrapeHandler(s Scraper) *ScrapeHandler {
	return &ScrapeHandler{scraper: s}
}

// Scrape handles POST /scrape requests.
func (h *ScrapeHandler) Scrape(c echo.Context) error {
	var req dto.ScrapeRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if len(req.URLs) == 0 {
		return Error(c, http.StatusBadRequest, "urls are required")
	}
	if len(req.URLs) > maxScrapeURLs {
		return Error(c, http.StatusBadRequest, "too many urls")
	}

	result, err := h.scraper.Scrape(c.Request().Context(), scraper.Request{
		URLs:     req.URLs,
		Industry: strings.TrimSpace(req.Industry),
		Confirm:  req.Confirm,
		Replace:  req.Replace,
		LLM:      req.LLM,
	})
	if err != nil {
		if errors.Is(err, scraper.ErrNoValidURLs) {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		zap.L().Error("scrape failed", zap.String("request_id", middleware.RequestIDFromContext(c)), zap.Error(err))
		return Error(c, http.StatusInternalServerError, "scrape failed")
	}

	return Success(c, http.StatusOK, "scrape completed", dto.ScrapeResponse{
		Companies:     result.Companies,
		Count:         result.Count,
		StoredCount:   result.StoredCount,
		ReplacedCount: result.ReplacedCount,
		SkippedCount:  result.SkippedCount,
	})
}
