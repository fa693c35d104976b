package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/company-discovery/internal/middleware"
	"github.com/octobees/company-discovery/internal/service"
)

const maxCompaniesCSVBytes = 5 << 20

// AdminUploadHandler imports curated company lists as manual records.
type AdminUploadHandler struct {
	companies *service.CompaniesService
}

// NewAdminUploadHandler wires the CSV import endpoint.
func NewAdminUploadHandler(companies *service.CompaniesService) *AdminUploadHandler {
	return &AdminUploadHandler{companies: companies}
}

// UploadCSV handles POST /admin/upload-csv. The multipart field "file" holds
// a CSV with a name column; rows whose website is already stored are skipped.
func (h *AdminUploadHandler) UploadCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != "" && ext != ".csv" {
		return Error(c, http.StatusBadRequest, fmt.Sprintf("unsupported file type %q", ext))
	}
	if fileHeader.Size > maxCompaniesCSVBytes {
		return Error(c, http.StatusRequestEntityTooLarge, "csv file exceeds 5 MiB")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.companies.ImportCompaniesCSV(c.Request().Context(), file)
	if err != nil {
		var validationErr service.CSVValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		zap.L().Error("companies csv import failed",
			zap.String("request_id", middleware.RequestIDFromContext(c)),
			zap.String("file", fileHeader.Filename),
			zap.Error(err),
		)
		return Error(c, http.StatusInternalServerError, "failed to import companies")
	}

	zap.L().Info("companies csv imported",
		zap.String("file", fileHeader.Filename),
		zap.Int("inserted", summary.Inserted),
		zap.Int("skipped", summary.Skipped),
	)
	return Success(c, http.StatusOK, "companies imported", summary)
}
