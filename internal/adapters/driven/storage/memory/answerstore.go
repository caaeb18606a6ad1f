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
	_ driven.AnswerStore      = (*AnswerStore)(nil)
	_ driven.ReviewStore      = (*ReviewStore)(nil)
	_ driven.SendAttemptStore = (*SendAttemptStore)(nil)
)

// AnswerStore is an in-memory implementation of driven.AnswerStore.
type AnswerStore struct {
	mu       sync.RWMutex
	answers  map[string]domain.AnswerDraft
	versions map[string]int
}

// NewAnswerStore creates a new in-memory answer store.
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{
		answers:  make(map[string]domain.AnswerDraft),
		versions: make(map[string]int),
	}
}

// SaveAnswer inserts or updates a draft.
func (s *AnswerStore) SaveAnswer(_ context.Context, answer *domain.AnswerDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[answer.ID] = cloneAnswer(*answer)
	if answer.Version > s.versions[answer.InquiryID] {
		s.versions[answer.InquiryID] = answer.Version
	}
	return nil
}

// MarkAnswerSent saves a SENT draft if the stored one is still APPROVED.
func (s *AnswerStore) MarkAnswerSent(_ context.Context, answer *domain.AnswerDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.answers[answer.ID]
	if !ok {
		return fmt.Errorf("answer %s: %w", answer.ID, domain.ErrNotFound)
	}
	if cur.Status != domain.AnswerApproved {
		return fmt.Errorf("answer %s is %s: %w", answer.ID, cur.Status, domain.ErrNotApproved)
	}
	s.answers[answer.ID] = cloneAnswer(*answer)
	return nil
}

// GetAnswer retrieves a draft by ID.
func (s *AnswerStore) GetAnswer(_ context.Context, id string) (*domain.AnswerDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.answers[id]
	if !ok {
		return nil, fmt.Errorf("answer %s: %w", id, domain.ErrNotFound)
	}
	a = cloneAnswer(a)
	return &a, nil
}

// ListAnswers returns every version for an inquiry, newest first.
func (s *AnswerStore) ListAnswers(_ context.Context, inquiryID string) ([]domain.AnswerDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.AnswerDraft
	for _, a := range s.answers {
		if a.InquiryID == inquiryID {
			out = append(out, cloneAnswer(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

// ListAnswersByStatus returns drafts in any of the statuses, oldest first.
func (s *AnswerStore) ListAnswersByStatus(_ context.Context, statuses ...domain.AnswerStatus) ([]domain.AnswerDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.AnswerDraft
	for _, a := range s.answers {
		if slices.Contains(statuses, a.Status) {
			out = append(out, cloneAnswer(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// NextVersion reserves the next version number for an inquiry.
func (s *AnswerStore) NextVersion(_ context.Context, inquiryID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[inquiryID]++
	return s.versions[inquiryID], nil
}

func cloneAnswer(a domain.AnswerDraft) domain.AnswerDraft {
	a.Citations = slices.Clone(a.Citations)
	a.RiskFlags = slices.Clone(a.RiskFlags)
	return a
}

// ReviewStore is an in-memory append-only review history.
type ReviewStore struct {
	mu      sync.RWMutex
	reviews []domain.AIReviewResult
}

// NewReviewStore creates a new in-memory review store.
func NewReviewStore() *ReviewStore {
	return &ReviewStore{}
}

// AppendReview appends a review.
func (s *ReviewStore) AppendReview(_ context.Context, review *domain.AIReviewResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *review
	r.Issues = slices.Clone(r.Issues)
	s.reviews = append(s.reviews, r)
	return nil
}

// ListReviews returns reviews for an answer, oldest first.
func (s *ReviewStore) ListReviews(_ context.Context, answerID string) ([]domain.AIReviewResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.AIReviewResult
	for _, r := range s.reviews {
		if r.AnswerID == answerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// LatestReview returns the most recent review of an answer.
func (s *ReviewStore) LatestReview(_ context.Context, answerID string) (*domain.AIReviewResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.reviews) - 1; i >= 0; i-- {
		if s.reviews[i].AnswerID == answerID {
			r := s.reviews[i]
			return &r, nil
		}
	}
	return nil, fmt.Errorf("review for answer %s: %w", answerID, domain.ErrNotFound)
}

// SendAttemptStore is an in-memory append-only dispatch log.
type SendAttemptStore struct {
	mu       sync.RWMutex
	attempts []domain.SendAttempt
}

// NewSendAttemptStore creates a new in-memory send attempt store.
func NewSendAttemptStore() *SendAttemptStore {
	return &SendAttemptStore{}
}

// AppendSendAttempt appends an attempt. A second SENT row for the same
// (answer, send-request id) is refused with domain.ErrConflict.
func (s *SendAttemptStore) AppendSendAttempt(_ context.Context, attempt *domain.SendAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt.Outcome == domain.SendSent {
		for _, a := range s.attempts {
			if a.Outcome == domain.SendSent && a.AnswerID == attempt.AnswerID && a.SendRequestID == attempt.SendRequestID {
				return fmt.Errorf("send %s/%s: %w", attempt.AnswerID, attempt.SendRequestID, domain.ErrConflict)
			}
		}
	}
	s.attempts = append(s.attempts, *attempt)
	return nil
}

// FindSent returns the SENT attempt for (answerID, sendRequestID).
func (s *SendAttemptStore) FindSent(_ context.Context, answerID, sendRequestID string) (*domain.SendAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.attempts {
		if a.Outcome == domain.SendSent && a.AnswerID == answerID && a.SendRequestID == sendRequestID {
			found := a
			return &found, nil
		}
	}
	return nil, fmt.Errorf("send %s/%s: %w", answerID, sendRequestID, domain.ErrNotFound)
}

// ListSendAttempts returns attempts for an answer, oldest first.
func (s *SendAttemptStore) ListSendAttempts(_ context.Context, answerID string) ([]domain.SendAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.SendAttempt
	for _, a := range s.attempts {
		if a.AnswerID == answerID {
			out = append(out, a)
		}
	}
	return out, nil
}
