package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/company-discovery/internal/dto"
	"github.com/octobees/company-discovery/internal/entity"
)

// EntitlementChecker reports whether a user may see a company's contacts.
type EntitlementChecker interface {
	HasContactAccess(ctx context.Context, userID, companyID uuid.UUID) (bool, error)
}

// AccessFilter redacts contact fields the caller is not entitled to.
type AccessFilter struct {
	entitlements EntitlementChecker
}

// NewAccessFilter constructs an AccessFilter.
func NewAccessFilter(entitlements EntitlementChecker) *AccessFilter {
	return &AccessFilter{entitlements: entitlements}
}

// Apply returns response views of companies for the caller. A nil userID is
// an anonymous caller. The input slice is never modified.
func (f *AccessFilter) Apply(ctx context.Context, userID *uuid.UUID, companies []entity.Company) []dto.CompanyView {
	views := make([]dto.CompanyView, 0, len(companies))
	for _, c := range companies {
		views = append(views, f.ApplyOne(ctx, userID, c))
	}
	return views
}

// ApplyOne returns the response view of a single company.
func (f *AccessFilter) ApplyOne(ctx context.Context, userID *uuid.UUID, c entity.Company) dto.CompanyView {
	if userID == nil {
		return dto.CompanyView{Company: redact(c), ContactRestricted: true, UpgradeRequired: true}
	}

	ok, err := f.entitlements.HasContactAccess(ctx, *userID, c.ID)
	switch {
	case err != nil:
		zap.L().Warn("entitlement check failed",
			zap.String("user_id", userID.String()),
			zap.String("company_id", c.ID.String()),
			zap.Error(err),
		)
		return dto.CompanyView{Company: redact(c), ContactRestricted: true, AccessError: true}
	case !ok:
		return dto.CompanyView{Company: redact(c), ContactRestricted: true, UpgradeRequired: true}
	}
	return dto.CompanyView{Company: c}
}

// redact works on the value copy it receives.
func redact(c entity.Company) entity.Company {
	c.ContactEmail = nil
	c.Phone = nil
	return c
}
