package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/company-discovery/internal/entity"
	"github.com/octobees/company-discovery/internal/notify"
	"github.com/octobees/company-discovery/internal/repository"
)

// ErrInvalidInquiry is returned for an empty or oversized inquiry message.
var ErrInvalidInquiry = errors.New("inquiry message must be between 1 and 2000 characters")

const (
	maxInquiryRunes = 2000
	notifyTimeout   = 10 * time.Second
)

// CompanyGetter loads a single company.
type CompanyGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
}

// InquiryService records partnership inquiries and notifies the company side.
type InquiryService struct {
	companies CompanyGetter
	inquiries repository.InquiriesRepository
	notifier  notify.Notifier
	wg        sync.WaitGroup
}

// NewInquiryService constructs an InquiryService. A nil notifier disables
// notifications.
func NewInquiryService(companies CompanyGetter, inquiries repository.InquiriesRepository, notifier notify.Notifier) *InquiryService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &InquiryService{companies: companies, inquiries: inquiries, notifier: notifier}
}

// Create persists an inquiry from userID to companyID. The notification is
// sent in the background and its failure is only logged.
func (s *InquiryService) Create(ctx context.Context, userID, companyID uuid.UUID, message string) (*entity.PartnershipInquiry, error) {
	message = strings.TrimSpace(message)
	if message == "" || utf8.RuneCountInString(message) > maxInquiryRunes {
		return nil, ErrInvalidInquiry
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	inquiry := &entity.PartnershipInquiry{
		UserID:    userID,
		CompanyID: companyID,
		Message:   message,
		Status:    entity.InquiryPending,
	}
	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return nil, err
	}

	event := notify.InquiryEvent{
		InquiryID:   inquiry.ID,
		UserID:      userID,
		CompanyID:   companyID,
		CompanyName: company.Name,
		Message:     message,
		CreatedAt:   inquiry.CreatedAt,
	}
	notifyCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(notifyCtx, notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyInquiry(ctx, event); err != nil {
			zap.L().Warn("inquiry notification failed",
				zap.String("inquiry_id", event.InquiryID.String()),
				zap.Error(err),
			)
		}
	}()

	return inquiry, nil
}

// Wait blocks until in-flight notifications finish.
func (s *InquiryService) Wait() {
	s.wg.Wait()
}
