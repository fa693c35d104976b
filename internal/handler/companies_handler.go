package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/company-discovery/internal/dto"
	"github.com/octobees/company-discovery/internal/entity"
	middleware "github.com/octobees/company-discovery/internal/middleware"
	"github.com/octobees/company-discovery/internal/repository"
	"github.com/octobees/company-discovery/internal/service"
)

// CompaniesHandler exposes company search endpoints.
type CompaniesHandler struct {
	search    *service.SearchService
	companies *service.CompaniesService
	access    *service.AccessFilter
}

// NewCompaniesHandler creates a new handler instance.
func NewCompaniesHandler(search *service.SearchService, companies *service.CompaniesService, access *service.AccessFilter) *CompaniesHandler {
	return &CompaniesHandler{search: search, companies: companies, access: access}
}

// Search handles GET /companies requests.
func (h *CompaniesHandler) Search(c echo.Context) error {
	var params dto.SearchParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &params); err != nil {
		return Error(c, http.StatusBadRequest, "invalid query parameters")
	}

	req := service.SearchRequest{
		Query:    params.Q,
		Page:     params.Page,
		PageSize: params.PageSize,
		Filters: service.Filters{
			Industry:        strings.TrimSpace(params.Industry),
			Location:        strings.TrimSpace(params.Location),
			LocationPlaceID: strings.TrimSpace(params.PlaceID),
			CompanySize:     entity.CompanySize(strings.ToLower(strings.TrimSpace(params.CompanySize))),
			DataSources:     splitCSVParam(params.DataSources),
		},
	}

	if verified := strings.TrimSpace(params.Verified); verified != "" {
		parsed, err := strconv.ParseBool(verified)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid verified value")
		}
		req.Filters.Verified = &parsed
	}

	ctx := c.Request().Context()
	result, err := h.search.Search(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrQueryTooShort) {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		zap.L().Error("company search failed", zap.String("request_id", middleware.RequestIDFromContext(c)), zap.Error(err))
		return Error(c, http.StatusInternalServerError, "failed to search companies")
	}

	return Success(c, http.StatusOK, "companies retrieved", dto.SearchResponse{
		Companies: h.access.Apply(ctx, middleware.OptionalUserID(c), result.Companies),
		Count:     result.Count,
		HasMore:   result.HasMore,
		Page:      result.Page,
		PageSize:  result.PageSize,
	})
}

// Get handles GET /companies/:id requests.
func (h *CompaniesHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid company id")
	}

	ctx := c.Request().Context()
	company, err := h.companies.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return Error(c, http.StatusNotFound, "company not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to load company")
	}

	return Success(c, http.StatusOK, "company retrieved", h.access.ApplyOne(ctx, middleware.OptionalUserID(c), *company))
}

func splitCSVParam(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
