package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/company-discovery/internal/entity"
)

var (
	// ErrCompanyNotFound is returned when no company matches the lookup.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrCompanyDuplicate is returned when a provider record was already stored.
	ErrCompanyDuplicate = errors.New("company already exists")
)

// CompaniesRepository describes persistence operations for companies.
type CompaniesRepository interface {
	Search(ctx context.Context, q CompanyQuery) ([]entity.Company, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	FindByWebsite(ctx context.Context, source entity.DataSource, websiteURL string) (*entity.Company, error)
	Insert(ctx context.Context, company *entity.Company) error
	InsertIfAbsent(ctx context.Context, company *entity.Company) (bool, error)
	Replace(ctx context.Context, id uuid.UUID, company *entity.Company) error
	BulkInsert(ctx context.Context, companies []entity.Company) (BulkInsertResult, error)
}

// TermGroup is a disjunction of predicates. A row matches the group when any
// of its non-empty term lists matches.
type TermGroup struct {
	// Patterns are matched as case-insensitive substrings of name or description.
	Patterns []string
	// Industries are matched by array overlap with the industry column.
	Industries []string
	// Countries and Cities are matched as case-insensitive substrings.
	Countries []string
	Cities    []string
}

func (g TermGroup) empty() bool {
	return len(g.Patterns) == 0 && len(g.Industries) == 0 && len(g.Countries) == 0 && len(g.Cities) == 0
}

// CompanyQuery is a store-level search. Groups are ANDed together; exact
// filters narrow the result further.
type CompanyQuery struct {
	Groups      []TermGroup
	CompanySize entity.CompanySize
	Verified    *bool
	Limit       int
	Offset      int
}

// BulkInsertResult summarises a manual import.
type BulkInsertResult struct {
	Inserted int
	Skipped  int
	Total    int
}

// PGXCompaniesRepository implements CompaniesRepository using pgx.
type PGXCompaniesRepository struct {
	pool pgxPool
}

// NewPGXCompaniesRepository wires a pgx backed repository.
func NewPGXCompaniesRepository(pool pgxPool) *PGXCompaniesRepository {
	return &PGXCompaniesRepository{pool: pool}
}

const companyColumns = `id, name, description, website_url, contact_email, phone, location_country, location_city,
            industry, specialties, company_size, data_source, verified, synthetic, external_id, created_at, updated_at`

const insertColumns = `name, description, website_url, contact_email, phone, location_country, location_city,
            industry, specialties, company_size, data_source, verified, synthetic, external_id`

// Search returns one page of matching companies, verified first then newest,
// together with the total match count.
func (r *PGXCompaniesRepository) Search(ctx context.Context, q CompanyQuery) ([]entity.Company, int, error) {
	where, args := buildWhere(q)

	countQuery := "SELECT COUNT(*) FROM companies" + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}
	if total == 0 || q.Offset >= total {
		return []entity.Company{}, total, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	idx := len(args) + 1
	listQuery := fmt.Sprintf("SELECT %s FROM companies%s ORDER BY verified DESC, created_at DESC LIMIT $%d OFFSET $%d",
		companyColumns, where, idx, idx+1)
	args = append(args, limit, q.Offset)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies, err := scanCompanies(rows)
	if err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

// buildWhere renders the query predicates with positional arguments.
func buildWhere(q CompanyQuery) (string, []any) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	for _, g := range q.Groups {
		if g.empty() {
			continue
		}
		var ors []string
		if len(g.Patterns) > 0 {
			ors = append(ors, fmt.Sprintf("name ILIKE ANY($%d) OR description ILIKE ANY($%d)", idx, idx))
			args = append(args, likePatterns(g.Patterns))
			idx++
		}
		if len(g.Industries) > 0 {
			ors = append(ors, fmt.Sprintf("industry && $%d::text[]", idx))
			args = append(args, lowerAll(g.Industries))
			idx++
		}
		if len(g.Countries) > 0 {
			ors = append(ors, fmt.Sprintf("location_country ILIKE ANY($%d)", idx))
			args = append(args, likePatterns(g.Countries))
			idx++
		}
		if len(g.Cities) > 0 {
			ors = append(ors, fmt.Sprintf("location_city ILIKE ANY($%d)", idx))
			args = append(args, likePatterns(g.Cities))
			idx++
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	if q.CompanySize != "" {
		clauses = append(clauses, fmt.Sprintf("company_size = $%d", idx))
		args = append(args, string(q.CompanySize))
		idx++
	}
	if q.Verified != nil {
		clauses = append(clauses, fmt.Sprintf("verified = $%d", idx))
		args = append(args, *q.Verified)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func likePatterns(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, "%"+escapeLike(t)+"%")
		}
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// GetByID fetches a single company.
func (r *PGXCompaniesRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+companyColumns+" FROM companies WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	defer rows.Close()
	return firstCompany(rows)
}

// FindByWebsite returns the most recent company a source stored under a
// canonical URL. Rows from other sources never match.
func (r *PGXCompaniesRepository) FindByWebsite(ctx context.Context, source entity.DataSource, websiteURL string) (*entity.Company, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+companyColumns+" FROM companies WHERE data_source = $1 AND website_url = $2 ORDER BY created_at DESC LIMIT 1",
		string(source), websiteURL)
	if err != nil {
		return nil, fmt.Errorf("find company by website: %w", err)
	}
	defer rows.Close()
	return firstCompany(rows)
}

func firstCompany(rows pgx.Rows) (*entity.Company, error) {
	companies, err := scanCompanies(rows)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, ErrCompanyNotFound
	}
	return &companies[0], nil
}

// Insert stores a new company and populates its id and timestamps.
func (r *PGXCompaniesRepository) Insert(ctx context.Context, company *entity.Company) error {
	if company == nil {
		return fmt.Errorf("company payload is nil")
	}
	company.EnsureDefaults()

	query := `
        INSERT INTO companies (` + insertColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id, created_at, updated_at
    `
	err := r.pool.QueryRow(ctx, query, insertArgs(company)...).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %v", ErrCompanyDuplicate, pgErr)
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// InsertIfAbsent stores company unless the same source already holds a row
// with the same provider id or the same website. It reports whether a row was written.
func (r *PGXCompaniesRepository) InsertIfAbsent(ctx context.Context, company *entity.Company) (bool, error) {
	if company == nil {
		return false, fmt.Errorf("company payload is nil")
	}
	company.EnsureDefaults()

	query := `
        INSERT INTO companies (` + insertColumns + `)
        SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
        WHERE $3::text IS NULL OR NOT EXISTS (
            SELECT 1 FROM companies WHERE data_source = $11::text AND website_url = $3::text)
        ON CONFLICT (data_source, external_id) WHERE external_id IS NOT NULL DO NOTHING
        RETURNING id, created_at, updated_at
    `
	err := r.pool.QueryRow(ctx, query, insertArgs(company)...).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert company if absent: %w", err)
	}
	return true, nil
}

// Replace deletes the row stored under id and inserts company in its place
// inside one transaction. The id is carried over, so inquiries that reference
// the company keep pointing at it; the foreign key is checked at commit.
func (r *PGXCompaniesRepository) Replace(ctx context.Context, id uuid.UUID, company *entity.Company) error {
	if company == nil {
		return fmt.Errorf("company payload is nil")
	}
	company.EnsureDefaults()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("start replace tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete replaced company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}

	query := `
        INSERT INTO companies (id, ` + insertColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        RETURNING id, created_at, updated_at
    `
	args := append([]any{id}, insertArgs(company)...)
	if err := tx.QueryRow(ctx, query, args...).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt); err != nil {
		return fmt.Errorf("insert replacement company: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	return nil
}

const bulkInsertSQL = `
        INSERT INTO companies (` + insertColumns + `)
        SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
        WHERE $3::text IS NULL OR NOT EXISTS (
            SELECT 1 FROM companies WHERE data_source = $11::text AND website_url = $3::text)
    `

// BulkInsert stores a manual import inside one transaction, skipping rows
// whose website the same source already holds.
func (r *PGXCompaniesRepository) BulkInsert(ctx context.Context, companies []entity.Company) (BulkInsertResult, error) {
	var result BulkInsertResult
	if len(companies) == 0 {
		return result, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("start bulk insert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range companies {
		company := &companies[i]
		company.EnsureDefaults()
		cmd, err := tx.Exec(ctx, bulkInsertSQL, insertArgs(company)...)
		if err != nil {
			return result, fmt.Errorf("bulk insert company %q: %w", company.Name, err)
		}
		if cmd.RowsAffected() > 0 {
			result.Inserted++
		} else {
			result.Skipped++
		}
		result.Total++
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit bulk insert tx: %w", err)
	}
	return result, nil
}

func insertArgs(c *entity.Company) []any {
	return []any{
		c.Name,
		c.Description,
		stringOrNil(c.WebsiteURL),
		stringOrNil(c.ContactEmail),
		stringOrNil(c.Phone),
		stringOrNil(c.LocationCountry),
		stringOrNil(c.LocationCity),
		c.Industry,
		c.Specialties,
		string(c.CompanySize),
		string(c.DataSource),
		c.Verified,
		c.Synthetic,
		stringOrNil(c.ExternalID),
	}
}

func scanCompanies(rows pgx.Rows) ([]entity.Company, error) {
	companies := []entity.Company{}
	for rows.Next() {
		var (
			c      entity.Company
			size   string
			source string
		)
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Description,
			&c.WebsiteURL,
			&c.ContactEmail,
			&c.Phone,
			&c.LocationCountry,
			&c.LocationCity,
			&c.Industry,
			&c.Specialties,
			&size,
			&source,
			&c.Verified,
			&c.Synthetic,
			&c.ExternalID,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		c.CompanySize = entity.CompanySize(size)
		c.DataSource = entity.DataSource(source)
		if c.Specialties == nil {
			c.Specialties = []string{}
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}

func stringOrNil(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}
