package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/company-discovery/internal/sources"
)

// ConnectionTester reports adapter connectivity.
type ConnectionTester interface {
	TestConnections(ctx context.Context) []sources.ConnectionStatus
}

// SourcesHandler exposes the adapter connectivity matrix to administrators.
type SourcesHandler struct {
	registry ConnectionTester
}

// NewSourcesHandler constructs a SourcesHandler.
func NewSourcesHandler(registry ConnectionTester) *SourcesHandler {
	return &SourcesHandler{registry: registry}
}

// Test handles GET /admin/sources requests.
func (h *SourcesHandler) Test(c echo.Context) error {
	return Success(c, http.StatusOK, "sources checked", h.registry.TestConnections(c.Request().Context()))
}
