package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/company-discovery/internal/entity"
	middleware "github.com/octobees/company-discovery/internal/middleware"
	"github.com/octobees/company-discovery/internal/repository"
)

type stubCompaniesRepository struct {
	search  func(ctx context.Context, q repository.CompanyQuery) ([]entity.Company, int, error)
	getByID func(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	bulk    func(ctx context.Context, records []entity.Company) (repository.BulkInsertResult, error)
}

func (s *stubCompaniesRepository) Search(ctx context.Context, q repository.CompanyQuery) ([]entity.Company, int, error) {
	if s.search != nil {
		return s.search(ctx, q)
	}
	return nil, 0, nil
}

func (s *stubCompaniesRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, repository.ErrCompanyNotFound
}

func (s *stubCompaniesRepository) FindByWebsite(ctx context.Context, source entity.DataSource, websiteURL string) (*entity.Company, error) {
	return nil, repository.ErrCompanyNotFound
}

func (s *stubCompaniesRepository) Insert(ctx context.Context, company *entity.Company) error {
	return errors.New("not implemented")
}

func (s *stubCompaniesRepository) InsertIfAbsent(ctx context.Context, company *entity.Company) (bool, error) {
	return false, errors.New("not implemented")
}

func (s *stubCompaniesRepository) Replace(ctx context.Context, id uuid.UUID, company *entity.Company) error {
	return errors.New("not implemented")
}

func (s *stubCompaniesRepository) BulkInsert(ctx context.Context, records []entity.Company) (repository.BulkInsertResult, error) {
	if s.bulk != nil {
		return s.bulk(ctx, records)
	}
	return repository.BulkInsertResult{Inserted: len(records), Total: len(records)}, nil
}

type stubEntitlements struct {
	entitled map[uuid.UUID]bool
}

func (s *stubEntitlements) HasContactAccess(ctx context.Context, userID, companyID uuid.UUID) (bool, error) {
	return s.entitled[companyID], nil
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body io.Reader = http.NoBody
	switch v := payload.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func withUser(c echo.Context, id uuid.UUID) {
	c.Set(middleware.ContextKeyUserID, id)
	c.Set(middleware.ContextKeyUserRole, "user")
}

// decodeData unmarshals the envelope's data field into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Status != "success" {
		t.Fatalf("expected success envelope, got %s", rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}
