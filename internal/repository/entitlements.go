package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/octobees/company-discovery/internal/entity"
)

// EntitlementsRepository answers whether a user may see a company's contacts.
type EntitlementsRepository interface {
	HasContactAccess(ctx context.Context, userID, companyID uuid.UUID) (bool, error)
}

// PGXEntitlementsRepository implements EntitlementsRepository with pgx.
type PGXEntitlementsRepository struct {
	pool pgxPool
}

// NewPGXEntitlementsRepository instantiates an entitlements repository.
func NewPGXEntitlementsRepository(pool pgxPool) *PGXEntitlementsRepository {
	return &PGXEntitlementsRepository{pool: pool}
}

// Paid plans unlock every company; an accepted inquiry unlocks one.
const contactAccessSQL = `
        SELECT
            EXISTS (SELECT 1 FROM users WHERE id = $1 AND role = $3)
            OR EXISTS (
                SELECT 1 FROM subscriptions
                WHERE user_id = $1 AND status = 'active' AND plan IN ('pro', 'enterprise')
                  AND (current_period_end IS NULL OR current_period_end > NOW())
            )
            OR EXISTS (
                SELECT 1 FROM partnership_inquiries
                WHERE user_id = $1 AND company_id = $2 AND status = $4
            )
    `

// HasContactAccess reports whether userID is entitled to companyID's contacts.
func (r *PGXEntitlementsRepository) HasContactAccess(ctx context.Context, userID, companyID uuid.UUID) (bool, error) {
	var allowed bool
	err := r.pool.QueryRow(ctx, contactAccessSQL, userID, companyID, entity.RoleAdmin, entity.InquiryAccepted).Scan(&allowed)
	if err != nil {
		return false, fmt.Errorf("check contact access: %w", err)
	}
	return allowed, nil
}
