package tui

import (
	"context"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

// MockAnswerService is a test double for driving.AnswerService.
type MockAnswerService struct {
	queue    []domain.AnswerDraft
	draft    *domain.AnswerDraft
	decision *domain.ApprovalDecision
	err      error

	approvedBy string
	rejectedBy string
	comment    string
}

func (m *MockAnswerService) Compose(_ context.Context, _ driving.ComposeRequest) (*domain.AnswerDraft, error) {
	return m.draft, m.err
}

func (m *MockAnswerService) Get(_ context.Context, id string) (*domain.AnswerDraft, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.draft != nil {
		return m.draft, nil
	}
	return &domain.AnswerDraft{ID: id, Status: domain.AnswerReviewed}, nil
}

func (m *MockAnswerService) List(_ context.Context, _ string) ([]domain.AnswerDraft, error) {
	return m.queue, m.err
}

func (m *MockAnswerService) Queue(_ context.Context) ([]domain.AnswerDraft, error) {
	return m.queue, m.err
}

func (m *MockAnswerService) Review(_ context.Context, _ string) (*domain.AIReviewResult, error) {
	return &domain.AIReviewResult{Decision: domain.ReviewPass}, m.err
}

func (m *MockAnswerService) MarkReviewed(_ context.Context, _ string, _ driving.HumanReview) (*domain.AnswerDraft, error) {
	return m.draft, m.err
}

func (m *MockAnswerService) Reviews(_ context.Context, _ string) ([]domain.AIReviewResult, error) {
	return nil, m.err
}

func (m *MockAnswerService) Approve(_ context.Context, id, approver, comment string) (*domain.AnswerDraft, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.approvedBy = approver
	m.comment = comment
	return &domain.AnswerDraft{ID: id, Version: 2, Status: domain.AnswerApproved}, nil
}

func (m *MockAnswerService) Reject(_ context.Context, id, approver, comment string) (*domain.AnswerDraft, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.rejectedBy = approver
	m.comment = comment
	return &domain.AnswerDraft{ID: id, Status: domain.AnswerDraftStatus}, nil
}

func (m *MockAnswerService) AutoApprove(_ context.Context, _ string) (*domain.ApprovalDecision, error) {
	return m.decision, m.err
}

func (m *MockAnswerService) Revise(_ context.Context, _ string) (*domain.AnswerDraft, error) {
	return m.draft, m.err
}

// MockDispatchService is a test double for driving.DispatchService.
type MockDispatchService struct {
	result  *domain.SendResult
	err     error
	request driving.SendRequest
}

func (m *MockDispatchService) Send(_ context.Context, req driving.SendRequest) (*domain.SendResult, error) {
	m.request = req
	return m.result, m.err
}

func (m *MockDispatchService) Attempts(_ context.Context, _ string) ([]domain.SendAttempt, error) {
	return nil, m.err
}
