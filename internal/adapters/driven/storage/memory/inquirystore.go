package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

var (
	_ driven.InquiryStore  = (*InquiryStore)(nil)
	_ driven.EvidenceStore = (*EvidenceStore)(nil)
)

// InquiryStore is an in-memory implementation of driven.InquiryStore.
type InquiryStore struct {
	mu        sync.RWMutex
	inquiries map[string]domain.Inquiry
}

// NewInquiryStore creates a new in-memory inquiry store.
func NewInquiryStore() *InquiryStore {
	return &InquiryStore{inquiries: make(map[string]domain.Inquiry)}
}

// SaveInquiry stores or updates an inquiry.
func (s *InquiryStore) SaveInquiry(_ context.Context, inquiry *domain.Inquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inquiries[inquiry.ID] = *inquiry
	return nil
}

// GetInquiry retrieves an inquiry by ID.
func (s *InquiryStore) GetInquiry(_ context.Context, id string) (*domain.Inquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inq, ok := s.inquiries[id]
	if !ok {
		return nil, fmt.Errorf("inquiry %s: %w", id, domain.ErrNotFound)
	}
	return &inq, nil
}

// ListInquiries returns inquiries newest first.
func (s *InquiryStore) ListInquiries(_ context.Context, limit int) ([]domain.Inquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Inquiry, 0, len(s.inquiries))
	for _, inq := range s.inquiries {
		out = append(out, inq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// EvidenceStore is an in-memory append-only retrieval log.
type EvidenceStore struct {
	mu   sync.RWMutex
	rows []domain.RetrievalEvidence
}

// NewEvidenceStore creates a new in-memory evidence store.
func NewEvidenceStore() *EvidenceStore {
	return &EvidenceStore{}
}

// AppendEvidence appends rows.
func (s *EvidenceStore) AppendEvidence(_ context.Context, rows []domain.RetrievalEvidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

// ListEvidence returns rows for an inquiry in insertion order.
func (s *EvidenceStore) ListEvidence(_ context.Context, inquiryID string) ([]domain.RetrievalEvidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.RetrievalEvidence
	for _, r := range s.rows {
		if r.InquiryID == inquiryID {
			out = append(out, r)
		}
	}
	return slices.Clip(out), nil
}
