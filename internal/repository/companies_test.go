package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/company-discovery/internal/entity"
)

var acmeID = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")

func companyScan(name string, verified bool) func(dest ...any) error {
	return func(dest ...any) error {
		created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		*dest[0].(*uuid.UUID) = acmeID
		*dest[1].(*string) = name
		*dest[2].(*string) = "Industrial robots."
		*dest[3].(**string) = entity.StringPtr("https://acme.example.com")
		*dest[4].(**string) = entity.StringPtr("info@acme.example.com")
		*dest[5].(**string) = nil
		*dest[6].(**string) = entity.StringPtr("Japan")
		*dest[7].(**string) = entity.StringPtr("Tokyo")
		*dest[8].(*[]string) = []string{"manufacturing"}
		*dest[9].(*[]string) = nil
		*dest[10].(*string) = "medium"
		*dest[11].(*string) = "web_scraping"
		*dest[12].(*bool) = verified
		*dest[13].(*bool) = false
		*dest[14].(**string) = nil
		*dest[15].(*time.Time) = created
		*dest[16].(*time.Time) = created
		return nil
	}
}

func TestBuildWhere(t *testing.T) {
	verified := true
	where, args := buildWhere(CompanyQuery{
		Groups: []TermGroup{
			{Patterns: []string{"robot", "100%_sure"}, Industries: []string{"Manufacturing"}},
			{},
			{Countries: []string{"Japan"}, Cities: []string{"Tokyo"}},
		},
		CompanySize: entity.SizeMedium,
		Verified:    &verified,
	})

	assert.Equal(t,
		" WHERE (name ILIKE ANY($1) OR description ILIKE ANY($1) OR industry && $2::text[])"+
			" AND (location_country ILIKE ANY($3) OR location_city ILIKE ANY($4))"+
			" AND company_size = $5 AND verified = $6",
		where)
	require.Len(t, args, 6)
	assert.Equal(t, []string{"%robot%", `%100\%\_sure%`}, args[0])
	assert.Equal(t, []string{"manufacturing"}, args[1])
	assert.Equal(t, []string{"%Japan%"}, args[2])
	assert.Equal(t, "medium", args[4])
	assert.Equal(t, true, args[5])
}

func TestBuildWhere_Empty(t *testing.T) {
	where, args := buildWhere(CompanyQuery{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestSearch_ZeroTotalSkipsListing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM companies WHERE`).
		WithArgs([]string{"%nothing%"}).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	repo := NewPGXCompaniesRepository(mock)
	companies, total, err := repo.Search(context.Background(), CompanyQuery{
		Groups: []TermGroup{{Patterns: []string{"nothing"}}},
		Limit:  20,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, companies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_OffsetPastTotal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM companies`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(15))

	repo := NewPGXCompaniesRepository(mock)
	companies, total, err := repo.Search(context.Background(), CompanyQuery{Limit: 20, Offset: 20})

	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Empty(t, companies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_ReturnsPage(t *testing.T) {
	var listQuery string
	var listArgs []any
	repo := NewPGXCompaniesRepository(&stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*int) = 3
				return nil
			}}
		},
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			listQuery, listArgs = query, args
			return &stubRows{scans: []func(dest ...any) error{
				companyScan("Acme", true),
				companyScan("Beta", false),
			}}, nil
		},
	})

	companies, total, err := repo.Search(context.Background(), CompanyQuery{
		Groups: []TermGroup{{Industries: []string{"manufacturing"}}},
		Limit:  2,
		Offset: 0,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, companies, 2)
	assert.Equal(t, "Acme", companies[0].Name)
	assert.Equal(t, entity.SizeMedium, companies[0].CompanySize)
	assert.Equal(t, entity.SourceWebScraping, companies[0].DataSource)
	assert.Equal(t, []string{}, companies[0].Specialties)
	assert.Nil(t, companies[0].Phone)
	assert.Contains(t, listQuery, "ORDER BY verified DESC, created_at DESC LIMIT $2 OFFSET $3")
	assert.Equal(t, []any{[]string{"manufacturing"}, 2, 0}, listArgs)
}

func TestSearch_CountError(t *testing.T) {
	repo := NewPGXCompaniesRepository(&stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return errors.New("db down") }}
		},
	})
	_, _, err := repo.Search(context.Background(), CompanyQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count companies")
}

func TestGetByID(t *testing.T) {
	repo := NewPGXCompaniesRepository(&stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			assert.Equal(t, acmeID, args[0])
			return &stubRows{scans: []func(dest ...any) error{companyScan("Acme", true)}}, nil
		},
	})
	company, err := repo.GetByID(context.Background(), acmeID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", company.Name)
	assert.Equal(t, "info@acme.example.com", entity.Deref(company.ContactEmail))

	repo = NewPGXCompaniesRepository(&stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{}, nil
		},
	})
	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestFindByWebsite(t *testing.T) {
	repo := NewPGXCompaniesRepository(&stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			assert.Contains(t, query, "WHERE data_source = $1 AND website_url = $2")
			assert.Equal(t, []any{"web_scraping", "https://acme.example.com"}, args)
			return &stubRows{scans: []func(dest ...any) error{companyScan("Acme", false)}}, nil
		},
	})
	company, err := repo.FindByWebsite(context.Background(), entity.SourceWebScraping, "https://acme.example.com")
	require.NoError(t, err)
	assert.Equal(t, acmeID, company.ID)
}

func TestInsert(t *testing.T) {
	var gotArgs []any
	created := time.Now()
	repo := NewPGXCompaniesRepository(&stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotArgs = args
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*uuid.UUID) = acmeID
				*dest[1].(*time.Time) = created
				*dest[2].(*time.Time) = created
				return nil
			}}
		},
	})

	company := &entity.Company{
		Name:       "Acme",
		WebsiteURL: entity.StringPtr("https://acme.example.com"),
		Phone:      entity.StringPtr(""),
		DataSource: entity.SourceWebScraping,
		Synthetic:  true,
		Verified:   true,
	}
	require.NoError(t, repo.Insert(context.Background(), company))

	assert.Equal(t, acmeID, company.ID)
	assert.Equal(t, created, company.CreatedAt)
	require.Len(t, gotArgs, 14)
	assert.Equal(t, "https://acme.example.com", gotArgs[2])
	assert.Nil(t, gotArgs[4])
	assert.Equal(t, []string{entity.DefaultIndustry}, gotArgs[7])
	assert.Equal(t, []string{"business services"}, gotArgs[8])
	assert.Equal(t, "small", gotArgs[9])
	assert.Equal(t, false, gotArgs[11])
}

func TestInsert_Duplicate(t *testing.T) {
	repo := NewPGXCompaniesRepository(&stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				return &pgconn.PgError{Code: "23505", Message: "companies_source_external_idx"}
			}}
		},
	})
	err := repo.Insert(context.Background(), &entity.Company{Name: "Acme", DataSource: entity.SourceOpenCorporates})
	assert.ErrorIs(t, err, ErrCompanyDuplicate)
	assert.Error(t, repo.Insert(context.Background(), nil))
}

func TestInsertIfAbsent(t *testing.T) {
	var gotQuery string
	repo := NewPGXCompaniesRepository(&stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotQuery = query
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	})
	inserted, err := repo.InsertIfAbsent(context.Background(), &entity.Company{Name: "Acme", DataSource: entity.SourceGooglePlaces})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.True(t, strings.Contains(gotQuery, "ON CONFLICT (data_source, external_id)"))
	assert.True(t, strings.Contains(gotQuery, "data_source = $11::text AND website_url = $3::text"))

	repo = NewPGXCompaniesRepository(&stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*uuid.UUID) = acmeID
				return nil
			}}
		},
	})
	c := &entity.Company{Name: "Acme", DataSource: entity.SourceGooglePlaces}
	inserted, err = repo.InsertIfAbsent(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, acmeID, c.ID)
}

func TestReplace_KeepsCompanyID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM companies WHERE id = \$1`).
		WithArgs(acmeID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(`INSERT INTO companies \(id, name`).
		WithArgs(acmeID, "Acme Robotics", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "web_scraping",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(acmeID, created, created))
	mock.ExpectCommit()

	repo := NewPGXCompaniesRepository(mock)
	company := &entity.Company{
		Name:       "Acme Robotics",
		WebsiteURL: entity.StringPtr("https://acme.example.com"),
		DataSource: entity.SourceWebScraping,
	}
	require.NoError(t, repo.Replace(context.Background(), acmeID, company))

	assert.Equal(t, acmeID, company.ID)
	assert.Equal(t, created, company.CreatedAt)
	assert.Equal(t, []string{"business services"}, company.Specialties)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplace_MissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM companies WHERE id = \$1`).
		WithArgs(acmeID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	repo := NewPGXCompaniesRepository(mock)
	err = repo.Replace(context.Background(), acmeID, &entity.Company{Name: "Acme", DataSource: entity.SourceWebScraping})

	assert.ErrorIs(t, err, ErrCompanyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Error(t, repo.Replace(context.Background(), acmeID, nil))
}

func TestBulkInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO companies`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO companies`).WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectCommit()

	repo := NewPGXCompaniesRepository(mock)
	res, err := repo.BulkInsert(context.Background(), []entity.Company{
		{Name: "Acme", DataSource: entity.SourceManual},
		{Name: "Acme Again", DataSource: entity.SourceManual},
	})

	require.NoError(t, err)
	assert.Equal(t, BulkInsertResult{Inserted: 1, Skipped: 1, Total: 2}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkInsert_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO companies`).WillReturnError(errors.New("check constraint"))
	mock.ExpectRollback()

	repo := NewPGXCompaniesRepository(mock)
	_, err = repo.BulkInsert(context.Background(), []entity.Company{{Name: "Acme", DataSource: entity.SourceManual}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `bulk insert company "Acme"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
