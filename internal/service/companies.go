package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/company-discovery/internal/enrich"
	"github.com/octobees/company-discovery/internal/entity"
	"github.com/octobees/company-discovery/internal/extract"
	"github.com/octobees/company-discovery/internal/repository"
	"github.com/octobees/company-discovery/internal/scraper"
)

// CompaniesService exposes single-record reads and the manual seed import.
type CompaniesService struct {
	repo repository.CompaniesRepository
}

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// UploadSummary reports how many rows were inserted or skipped during import.
type UploadSummary struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// NewCompaniesService creates a new instance of CompaniesService.
func NewCompaniesService(repo repository.CompaniesRepository) *CompaniesService {
	return &CompaniesService{repo: repo}
}

// Get returns a single company.
func (s *CompaniesService) Get(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	return s.repo.GetByID(ctx, id)
}

// ImportCompaniesCSV ingests manually curated companies from a CSV reader.
// Rows whose website is already stored are skipped.
func (s *CompaniesService) ImportCompaniesCSV(ctx context.Context, r io.Reader) (UploadSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return UploadSummary{}, CSVValidationError{Message: "csv file is empty"}
		}
		return UploadSummary{}, fmt.Errorf("read csv header: %w", err)
	}

	index, valErr := buildHeaderIndex(header)
	if valErr != nil {
		return UploadSummary{}, valErr
	}

	var (
		records []entity.Company
		rowNum  = 1
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return UploadSummary{}, fmt.Errorf("read csv row: %w", err)
		}
		rowNum++

		col := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name := extract.SanitizeText(col("name"))
		if name == "" {
			continue
		}

		company := entity.Company{
			Name:            name,
			Description:     extract.Truncate(extract.SanitizeText(col("description")), extract.MaxDescriptionRunes),
			ContactEmail:    entity.StringPtr(extract.CleanEmail(col("email"))),
			Phone:           entity.StringPtr(extract.CleanPhone(col("phone"))),
			LocationCountry: normalizeString(col("country")),
			LocationCity:    normalizeString(col("city")),
			Industry:        splitList(col("industry"), 0),
			Specialties:     splitList(col("specialties"), 5),
			DataSource:      entity.SourceManual,
		}

		if website := col("website"); website != "" {
			canonical, err := scraper.NormalizeURL(website)
			if err != nil {
				return UploadSummary{}, CSVValidationError{Message: fmt.Sprintf("invalid website value on row %d", rowNum)}
			}
			company.WebsiteURL = &canonical
		}

		if raw := col("company_size"); raw != "" {
			size, ok := enrich.NormalizeSize(raw)
			if !ok {
				return UploadSummary{}, CSVValidationError{Message: fmt.Sprintf("invalid company_size value on row %d", rowNum)}
			}
			company.CompanySize = size
		}

		if raw := col("verified"); raw != "" {
			verified, parseErr := strconv.ParseBool(raw)
			if parseErr != nil {
				return UploadSummary{}, CSVValidationError{Message: fmt.Sprintf("invalid verified value on row %d", rowNum)}
			}
			company.Verified = verified
		}

		company.EnsureDefaults()
		records = append(records, company)
	}

	if len(records) == 0 {
		return UploadSummary{}, nil
	}

	result, err := s.repo.BulkInsert(ctx, records)
	if err != nil {
		return UploadSummary{}, err
	}

	return UploadSummary{
		Inserted: result.Inserted,
		Skipped:  result.Skipped,
		Total:    result.Total,
	}, nil
}

var requiredCSVHeaders = []string{"name"}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		index[col] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredCSVHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

// splitList splits a ";" or "|" separated cell into lowercase, deduplicated
// values. limit <= 0 keeps everything.
func splitList(value string, limit int) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ';' || r == '|' })
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.ToLower(extract.SanitizeText(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func normalizeString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
