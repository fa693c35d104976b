package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/company-discovery/internal/dto"
	middleware "github.com/octobees/company-discovery/internal/middleware"
	"github.com/octobees/company-discovery/internal/repository"
	"github.com/octobees/company-discovery/internal/service"
)

// InquiriesHandler records partnership inquiries.
type InquiriesHandler struct {
	inquiries *service.InquiryService
}

// NewInquiriesHandler constructs an InquiriesHandler.
func NewInquiriesHandler(inquiries *service.InquiryService) *InquiriesHandler {
	return &InquiriesHandler{inquiries: inquiries}
}

// Create handles POST /companies/:id/inquiries requests.
func (h *InquiriesHandler) Create(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "authentication required")
	}

	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid company id")
	}

	var req dto.InquiryRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	inquiry, err := h.inquiries.Create(c.Request().Context(), userID, companyID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInquiry):
			return Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrCompanyNotFound):
			return Error(c, http.StatusNotFound, "company not found")
		default:
			return Error(c, http.StatusInternalServerError, "unable to create inquiry")
		}
	}

	return Created(c, "inquiry submitted", inquiry)
}
