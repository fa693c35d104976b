package entity

import (
	"time"

	"github.com/google/uuid"
)

// Inquiry statuses.
const (
	InquiryPending  = "pending"
	InquiryAccepted = "accepted"
	InquiryDeclined = "declined"
)

// PartnershipInquiry links a requesting user to a target company.
type PartnershipInquiry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CompanyID uuid.UUID `json:"company_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
