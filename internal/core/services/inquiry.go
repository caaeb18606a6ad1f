package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

// Ensure InquiryService implements the interface.
var _ driving.InquiryService = (*InquiryService)(nil)

// InquiryService manages customer inquiries.
type InquiryService struct {
	store driven.InquiryStore
	now   func() time.Time
}

// NewInquiryService creates a new inquiry service.
func NewInquiryService(store driven.InquiryStore) *InquiryService {
	return &InquiryService{store: store, now: time.Now}
}

// Create validates and stores a new inquiry.
func (s *InquiryService) Create(ctx context.Context, req driving.CreateInquiryRequest) (*domain.Inquiry, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("question is required: %w", domain.ErrInvalidInput)
	}

	now := s.now()
	inq := &domain.Inquiry{
		ID:              uuid.New().String(),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerContact: strings.TrimSpace(req.CustomerContact),
		Subject:         strings.TrimSpace(req.Subject),
		Question:        question,
		Channel:         domain.ParseChannel(string(req.Channel)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.SaveInquiry(ctx, inq); err != nil {
		return nil, fmt.Errorf("save inquiry: %w", err)
	}
	return inq, nil
}

// Get retrieves an inquiry by ID.
func (s *InquiryService) Get(ctx context.Context, id string) (*domain.Inquiry, error) {
	return s.store.GetInquiry(ctx, id)
}

// List returns recent inquiries, newest first.
func (s *InquiryService) List(ctx context.Context, limit int) ([]domain.Inquiry, error) {
	return s.store.ListInquiries(ctx, limit)
}
