package repository

import (
	"context"
	"fmt"

	"github.com/octobees/company-discovery/internal/entity"
)

// InquiriesRepository persists partnership inquiries.
type InquiriesRepository interface {
	Create(ctx context.Context, inquiry *entity.PartnershipInquiry) error
}

// PGXInquiriesRepository implements InquiriesRepository with pgx.
type PGXInquiriesRepository struct {
	pool pgxPool
}

// NewPGXInquiriesRepository instantiates an inquiries repository.
func NewPGXInquiriesRepository(pool pgxPool) *PGXInquiriesRepository {
	return &PGXInquiriesRepository{pool: pool}
}

// Create stores a pending inquiry and populates its id, status and timestamp.
func (r *PGXInquiriesRepository) Create(ctx context.Context, inquiry *entity.PartnershipInquiry) error {
	if inquiry == nil {
		return fmt.Errorf("inquiry payload is nil")
	}
	if inquiry.Status == "" {
		inquiry.Status = entity.InquiryPending
	}

	err := r.pool.QueryRow(ctx, `
        INSERT INTO partnership_inquiries (user_id, company_id, message, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `, inquiry.UserID, inquiry.CompanyID, inquiry.Message, inquiry.Status).Scan(&inquiry.ID, &inquiry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	return nil
}
