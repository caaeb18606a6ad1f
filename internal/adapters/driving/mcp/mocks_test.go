package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents  []domain.Document
	document   *domain.Document
	filter     domain.DocumentFilter
	uploaded   driving.UploadRequest
	uploadBody string
	err        error
}

func (m *mockDocumentService) Upload(_ context.Context, req driving.UploadRequest) (*domain.Document, error) {
	m.uploaded = req
	data, _ := io.ReadAll(req.Content)
	m.uploadBody = string(data)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Document{ID: "doc-new", FileName: req.FileName, Status: domain.DocumentUploaded}, nil
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	m.filter = filter
	return m.documents, m.err
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	ingested string
	err      error
}

func (m *mockIngestionService) Ingest(_ context.Context, id string) (*domain.Document, error) {
	m.ingested = id
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Document{ID: id, Status: domain.DocumentIndexed, ChunkCount: 3}, nil
}

func (m *mockIngestionService) ForceIngest(ctx context.Context, id string) (*domain.Document, error) {
	return m.Ingest(ctx, id)
}

// mockVerificationService is a mock implementation of driving.VerificationService.
type mockVerificationService struct {
	result *domain.VerificationResult
	err    error
}

func (m *mockVerificationService) RetrieveAndVerify(
	_ context.Context, _, _ string, _ int,
) (*domain.VerificationResult, error) {
	return m.result, m.err
}

func (m *mockVerificationService) Evidence(_ context.Context, _ string) ([]domain.RetrievalEvidence, error) {
	return nil, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer   *domain.AnswerDraft
	answers  []domain.AnswerDraft
	review   *domain.AIReviewResult
	reviews  []domain.AIReviewResult
	decision *domain.ApprovalDecision
	compose  driving.ComposeRequest
	approver string
	err      error
}

func (m *mockAnswerService) Compose(_ context.Context, req driving.ComposeRequest) (*domain.AnswerDraft, error) {
	m.compose = req
	return m.answer, m.err
}

func (m *mockAnswerService) Get(_ context.Context, _ string) (*domain.AnswerDraft, error) {
	return m.answer, m.err
}

func (m *mockAnswerService) List(_ context.Context, _ string) ([]domain.AnswerDraft, error) {
	return m.answers, m.err
}

func (m *mockAnswerService) Queue(_ context.Context) ([]domain.AnswerDraft, error) {
	return m.answers, m.err
}

func (m *mockAnswerService) Review(_ context.Context, _ string) (*domain.AIReviewResult, error) {
	return m.review, m.err
}

func (m *mockAnswerService) MarkReviewed(
	_ context.Context, _ string, _ driving.HumanReview,
) (*domain.AnswerDraft, error) {
	return m.answer, m.err
}

func (m *mockAnswerService) Reviews(_ context.Context, _ string) ([]domain.AIReviewResult, error) {
	return m.reviews, m.err
}

func (m *mockAnswerService) Approve(_ context.Context, _, approver, _ string) (*domain.AnswerDraft, error) {
	m.approver = approver
	return m.answer, m.err
}

func (m *mockAnswerService) Reject(_ context.Context, _, _, _ string) (*domain.AnswerDraft, error) {
	return m.answer, m.err
}

func (m *mockAnswerService) AutoApprove(_ context.Context, _ string) (*domain.ApprovalDecision, error) {
	return m.decision, m.err
}

func (m *mockAnswerService) Revise(_ context.Context, _ string) (*domain.AnswerDraft, error) {
	return m.answer, m.err
}

// mockDispatchService is a mock implementation of driving.DispatchService.
type mockDispatchService struct {
	request driving.SendRequest
	result  *domain.SendResult
	err     error
}

func (m *mockDispatchService) Send(_ context.Context, req driving.SendRequest) (*domain.SendResult, error) {
	m.request = req
	return m.result, m.err
}

func (m *mockDispatchService) Attempts(_ context.Context, _ string) ([]domain.SendAttempt, error) {
	return nil, m.err
}

// mockInquiryService is a mock implementation of driving.InquiryService.
type mockInquiryService struct {
	inquiries []domain.Inquiry
	err       error
}

func (m *mockInquiryService) Create(_ context.Context, _ driving.CreateInquiryRequest) (*domain.Inquiry, error) {
	return nil, m.err
}

func (m *mockInquiryService) Get(_ context.Context, _ string) (*domain.Inquiry, error) {
	return nil, m.err
}

func (m *mockInquiryService) List(_ context.Context, _ int) ([]domain.Inquiry, error) {
	return m.inquiries, m.err
}

func requiredPorts() *Ports {
	return &Ports{
		Document:     &mockDocumentService{},
		Verification: &mockVerificationService{},
		Answer:       &mockAnswerService{},
	}
}
