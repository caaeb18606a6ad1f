package cli

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

var testTime = time.Date(2026, 4, 2, 15, 30, 0, 0, time.UTC)

// MockInquiryService implements driving.InquiryService for testing.
type MockInquiryService struct {
	created driving.CreateInquiryRequest
	err     error
}

func (m *MockInquiryService) Create(_ context.Context, req driving.CreateInquiryRequest) (*domain.Inquiry, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = req
	return &domain.Inquiry{ID: "inq-new", Question: req.Question, Channel: req.Channel}, nil
}

func (m *MockInquiryService) Get(_ context.Context, id string) (*domain.Inquiry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Inquiry{
		ID: id, CustomerName: "Ana", CustomerContact: "ana@example.com", Subject: "Adapter",
		Question: "Does it work with USB-C?", Channel: domain.ChannelEmail, CreatedAt: testTime,
	}, nil
}

func (m *MockInquiryService) List(_ context.Context, _ int) ([]domain.Inquiry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Inquiry{
		{ID: "inq-1", Subject: "Adapter", Channel: domain.ChannelEmail, CreatedAt: testTime},
		{ID: "inq-2", Question: "Is there a warranty?", Channel: domain.ChannelMessenger, CreatedAt: testTime},
	}, nil
}

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	uploaded   driving.UploadRequest
	uploadBody string
	filter     domain.DocumentFilter
	deleted    string
	docs       []domain.Document
	err        error
}

func (m *MockDocumentService) Upload(_ context.Context, req driving.UploadRequest) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, req.Content)
	m.uploaded = req
	m.uploadBody = buf.String()
	return &domain.Document{ID: "doc-new", FileName: req.FileName, Status: domain.DocumentUploaded}, nil
}

func (m *MockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	conf := 0.87
	return &domain.Document{
		ID: id, InquiryID: "inq-1", SourceType: domain.SourceInquiry, FileName: "scan.pdf",
		MIMEType: "application/pdf", Size: 2048, Status: domain.DocumentIndexed, ChunkCount: 4,
		VectorCount: 4, OCRConfidence: &conf, CreatedAt: testTime, UpdatedAt: testTime,
	}, nil
}

func (m *MockDocumentService) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	m.filter = filter
	return m.docs, m.err
}

func (m *MockDocumentService) Chunks(_ context.Context, id string) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Chunk{
		{ID: "c1", DocumentID: id, Index: 0, StartOffset: 0, EndOffset: 11, Content: "First chunk",
			ContextPrefix: "Manual > Power", Level: domain.ChunkFlat},
	}, nil
}

func (m *MockDocumentService) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}

// MockIngestionService implements driving.IngestionService for testing.
type MockIngestionService struct {
	ingested string
	forced   bool
	failed   bool
	err      error
}

func (m *MockIngestionService) Ingest(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.ingested = id
	if m.failed {
		return &domain.Document{ID: id, Status: domain.DocumentFailed, LastError: "no text"}, nil
	}
	return &domain.Document{ID: id, Status: domain.DocumentIndexed, ChunkCount: 3}, nil
}

func (m *MockIngestionService) ForceIngest(ctx context.Context, id string) (*domain.Document, error) {
	m.forced = true
	return m.Ingest(ctx, id)
}

// MockVerificationService implements driving.VerificationService for testing.
type MockVerificationService struct {
	topK int
	res  *domain.VerificationResult
	err  error
}

func (m *MockVerificationService) RetrieveAndVerify(
	_ context.Context, inquiryID, question string, topK int,
) (*domain.VerificationResult, error) {
	m.topK = topK
	if m.err != nil {
		return nil, m.err
	}
	if m.res != nil {
		return m.res, nil
	}
	return &domain.VerificationResult{
		InquiryID: inquiryID, Question: question, Verdict: domain.VerdictSupported, Confidence: 0.91,
		Reason: "top evidence agrees",
		Evidence: []domain.EvidenceItem{
			{ChunkID: "c1", DocumentID: "doc-1", Score: 0.91, Excerpt: "Works with USB-C", SourceType: domain.SourceKnowledgeBase},
		},
	}, nil
}

func (m *MockVerificationService) Evidence(_ context.Context, _ string) ([]domain.RetrievalEvidence, error) {
	return nil, m.err
}

// MockAnswerService implements driving.AnswerService for testing.
type MockAnswerService struct {
	compose     driving.ComposeRequest
	human       driving.HumanReview
	approver    string
	comment     string
	answers     []domain.AnswerDraft
	reviews     []domain.AIReviewResult
	decision    *domain.ApprovalDecision
	reviewCalls int
	err         error
}

func (m *MockAnswerService) draft(id string) *domain.AnswerDraft {
	score := 88
	return &domain.AnswerDraft{
		ID: id, InquiryID: "inq-1", Version: 1, Verdict: domain.VerdictSupported, Confidence: 0.91,
		Tone: domain.ToneProfessional, Channel: domain.ChannelEmail, Status: domain.AnswerReviewed,
		Text: "Yes, it works with USB-C.", ReviewScore: &score, ReviewDecision: domain.ReviewPass,
	}
}

func (m *MockAnswerService) Compose(_ context.Context, req driving.ComposeRequest) (*domain.AnswerDraft, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.compose = req
	d := m.draft("ans-new")
	d.Status = domain.AnswerDraftStatus
	d.ReviewScore = nil
	return d, nil
}

func (m *MockAnswerService) Get(_ context.Context, id string) (*domain.AnswerDraft, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.draft(id), nil
}

func (m *MockAnswerService) List(_ context.Context, _ string) ([]domain.AnswerDraft, error) {
	return m.answers, m.err
}

func (m *MockAnswerService) Queue(_ context.Context) ([]domain.AnswerDraft, error) {
	return m.answers, m.err
}

func (m *MockAnswerService) Review(_ context.Context, id string) (*domain.AIReviewResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.reviewCalls++
	return &domain.AIReviewResult{
		AnswerID: id, Reviewer: "llm", Decision: domain.ReviewRevise, Score: 61,
		Summary: "Add the adapter caveat", CreatedAt: testTime,
		Issues: []domain.ReviewIssue{{Severity: domain.SeverityHigh, Message: "overclaims"}},
	}, nil
}

func (m *MockAnswerService) MarkReviewed(_ context.Context, id string, r driving.HumanReview) (*domain.AnswerDraft, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.human = r
	return m.draft(id), nil
}

func (m *MockAnswerService) Reviews(_ context.Context, _ string) ([]domain.AIReviewResult, error) {
	return m.reviews, m.err
}

func (m *MockAnswerService) Approve(_ context.Context, id, approver, comment string) (*domain.AnswerDraft, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.approver, m.comment = approver, comment
	d := m.draft(id)
	d.Status = domain.AnswerApproved
	d.ApprovalDecision = domain.ApprovalHumanApproved
	return d, nil
}

func (m *MockAnswerService) Reject(_ context.Context, id, approver, comment string) (*domain.AnswerDraft, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.approver, m.comment = approver, comment
	d := m.draft(id)
	d.Status = domain.AnswerDraftStatus
	return d, nil
}

func (m *MockAnswerService) AutoApprove(_ context.Context, _ string) (*domain.ApprovalDecision, error) {
	return m.decision, m.err
}

func (m *MockAnswerService) Revise(_ context.Context, id string) (*domain.AnswerDraft, error) {
	if m.err != nil {
		return nil, m.err
	}
	d := m.draft(id + "-v2")
	d.Version = 2
	d.Status = domain.AnswerDraftStatus
	return d, nil
}

// MockDispatchService implements driving.DispatchService for testing.
type MockDispatchService struct {
	request  driving.SendRequest
	result   *domain.SendResult
	attempts []domain.SendAttempt
	err      error
}

func (m *MockDispatchService) Send(_ context.Context, req driving.SendRequest) (*domain.SendResult, error) {
	m.request = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *MockDispatchService) Attempts(_ context.Context, _ string) ([]domain.SendAttempt, error) {
	return m.attempts, m.err
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	inquiry      *MockInquiryService
	document     *MockDocumentService
	ingestion    *MockIngestionService
	verification *MockVerificationService
	answer       *MockAnswerService
	dispatch     *MockDispatchService
}

// setupTestServices installs fresh mocks and returns them with a cleanup
// that restores the previous services and resets flag state.
func setupTestServices() (*testServices, func()) {
	origInquiry := inquiryService
	origDocument := documentService
	origIngestion := ingestionService
	origVerification := verificationService
	origAnswer := answerService
	origDispatch := dispatchService
	origWatch := watchInbox

	ts := &testServices{
		inquiry:      &MockInquiryService{},
		document:     &MockDocumentService{},
		ingestion:    &MockIngestionService{},
		verification: &MockVerificationService{},
		answer:       &MockAnswerService{},
		dispatch: &MockDispatchService{result: &domain.SendResult{
			AnswerID: "ans-1", SendRequestID: "req-1", Outcome: domain.SendSent,
			Provider: "console", MessageID: "msg-1",
		}},
	}
	SetServices(&Services{
		Inquiry:      ts.inquiry,
		Document:     ts.document,
		Ingestion:    ts.ingestion,
		Verification: ts.verification,
		Answer:       ts.answer,
		Dispatch:     ts.dispatch,
	})

	return ts, func() {
		inquiryService = origInquiry
		documentService = origDocument
		ingestionService = origIngestion
		verificationService = origVerification
		answerService = origAnswer
		dispatchService = origDispatch
		watchInbox = origWatch
		resetFlags()
	}
}

// resetFlags restores flag variables, which cobra keeps between executions.
func resetFlags() {
	documentInquiry, documentNoIngest, documentStatus, documentLimit = "", false, "", 50
	documentForce = false
	inquiryCustomer, inquiryContact, inquirySubject, inquiryChannel, inquiryLimit = "", "", "", "email", 20
	askTopK = 0
	answerQuestion, answerTone, answerChannel, answerTopK = "", "professional", "", 0
	answerReviewer, answerScore, answerComment, answerApprover, answerRequestID = "", 0, "", "", ""
	queueApprover = ""
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
