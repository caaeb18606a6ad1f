package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService composes drafts and moves them through review and approval.
type AnswerService struct {
	inquiries driven.InquiryStore
	answers   driven.AnswerStore
	reviews   driven.ReviewStore
	verifier  driving.VerificationService
	composer  *AnswerComposer
	reviewer  *ReviewGate
	approval  *ApprovalGate
	notifier  driven.Notifier
	now       func() time.Time
}

// AnswerOption configures an AnswerService.
type AnswerOption func(*AnswerService)

// WithReviewGate sets the review gate. The default uses MockReviewer only.
func WithReviewGate(g *ReviewGate) AnswerOption {
	return func(s *AnswerService) {
		if g != nil {
			s.reviewer = g
		}
	}
}

// WithApprovalGate sets the approval gate.
func WithApprovalGate(g *ApprovalGate) AnswerOption {
	return func(s *AnswerService) {
		if g != nil {
			s.approval = g
		}
	}
}

// WithAnswerNotifier sets the event notifier.
func WithAnswerNotifier(n driven.Notifier) AnswerOption {
	return func(s *AnswerService) {
		s.notifier = n
	}
}

// NewAnswerService creates an answer service.
func NewAnswerService(
	inquiries driven.InquiryStore,
	answers driven.AnswerStore,
	reviews driven.ReviewStore,
	verifier driving.VerificationService,
	opts ...AnswerOption,
) *AnswerService {
	s := &AnswerService{
		inquiries: inquiries,
		answers:   answers,
		reviews:   reviews,
		verifier:  verifier,
		composer:  NewAnswerComposer(),
		reviewer:  NewReviewGate(),
		approval:  NewApprovalGate(domain.DefaultApprovalPolicy()),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compose verifies the question and creates a new DRAFT version.
func (s *AnswerService) Compose(ctx context.Context, req driving.ComposeRequest) (*domain.AnswerDraft, error) {
	logger.Section("Compose Answer")

	if strings.TrimSpace(req.InquiryID) == "" {
		return nil, fmt.Errorf("inquiry id is required: %w", domain.ErrInvalidInput)
	}
	inquiry, err := s.inquiries.GetInquiry(ctx, req.InquiryID)
	if err != nil {
		return nil, fmt.Errorf("get inquiry %s: %w", req.InquiryID, err)
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		question = strings.TrimSpace(inquiry.Question)
	}
	if question == "" {
		return nil, fmt.Errorf("question is required: %w", domain.ErrInvalidInput)
	}

	tone := domain.ParseTone(string(req.Tone))
	channel := req.Channel
	if channel == "" {
		channel = domain.ParseChannel(string(inquiry.Channel))
	}

	result, err := s.verifier.RetrieveAndVerify(ctx, inquiry.ID, question, req.TopK)
	if err != nil {
		return nil, err
	}

	comp := s.composer.Compose(ComposeInput{
		Verdict:      result.Verdict,
		Confidence:   result.Confidence,
		RiskFlags:    result.RiskFlags,
		Tone:         tone,
		Channel:      channel,
		Evidence:     result.Evidence,
		CustomerName: inquiry.CustomerName,
	})

	version, err := s.answers.NextVersion(ctx, inquiry.ID)
	if err != nil {
		return nil, fmt.Errorf("reserve version: %w", err)
	}

	now := s.now()
	draft := &domain.AnswerDraft{
		ID:         uuid.New().String(),
		InquiryID:  inquiry.ID,
		Version:    version,
		Question:   question,
		Verdict:    result.Verdict,
		Confidence: result.Confidence,
		Reason:     result.Reason,
		Tone:       tone,
		Channel:    channel,
		Status:     domain.AnswerDraftStatus,
		Text:       comp.Text,
		Citations:  comp.Citations,
		RiskFlags:  result.RiskFlags,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.answers.SaveAnswer(ctx, draft); err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}
	logger.Debug("Draft %s v%d verdict=%s", draft.ID, draft.Version, draft.Verdict)

	s.event(ctx, domain.EventAnswerCreated, draft, map[string]string{
		"version": strconv.Itoa(draft.Version),
		"verdict": string(draft.Verdict),
	})
	return draft, nil
}

// Get retrieves a draft by ID.
func (s *AnswerService) Get(ctx context.Context, answerID string) (*domain.AnswerDraft, error) {
	return s.answers.GetAnswer(ctx, answerID)
}

// List returns every version for an inquiry, newest first.
func (s *AnswerService) List(ctx context.Context, inquiryID string) ([]domain.AnswerDraft, error) {
	return s.answers.ListAnswers(ctx, inquiryID)
}

// Queue returns drafts awaiting a human decision or dispatch.
func (s *AnswerService) Queue(ctx context.Context) ([]domain.AnswerDraft, error) {
	return s.answers.ListAnswersByStatus(ctx, domain.AnswerReviewed, domain.AnswerApproved)
}

// Reviews returns the review history of a draft.
func (s *AnswerService) Reviews(ctx context.Context, answerID string) ([]domain.AIReviewResult, error) {
	return s.reviews.ListReviews(ctx, answerID)
}

// Review runs the automated reviewer. The review row is appended and the
// draft moves to REVIEWED even when the mock fallback produced it.
func (s *AnswerService) Review(ctx context.Context, answerID string) (*domain.AIReviewResult, error) {
	logger.Section("Review Answer")

	draft, err := s.answers.GetAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if !draft.Status.CanTransitionTo(domain.AnswerReviewed) {
		return nil, fmt.Errorf("review answer %s in status %s: %w", draft.ID, draft.Status, domain.ErrIllegalTransition)
	}

	res := s.reviewer.Review(ctx, draft)
	if err := s.recordReview(ctx, draft, res, res.Summary); err != nil {
		return nil, err
	}
	logger.Debug("Review by %s: %s score=%d issues=%d", res.Reviewer, res.Decision, res.Score, len(res.Issues))
	return res, nil
}

// MarkReviewed records a human review.
func (s *AnswerService) MarkReviewed(
	ctx context.Context, answerID string, review driving.HumanReview,
) (*domain.AnswerDraft, error) {
	if review.Score < 0 || review.Score > 100 {
		return nil, fmt.Errorf("review score %d outside 0-100: %w", review.Score, domain.ErrInvalidInput)
	}
	draft, err := s.answers.GetAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if !draft.Status.CanTransitionTo(domain.AnswerReviewed) {
		return nil, fmt.Errorf("review answer %s in status %s: %w", draft.ID, draft.Status, domain.ErrIllegalTransition)
	}

	reviewer := strings.TrimSpace(review.Reviewer)
	if reviewer == "" {
		reviewer = domain.HumanReviewerName
	}
	res := &domain.AIReviewResult{
		ID:        uuid.New().String(),
		AnswerID:  draft.ID,
		InquiryID: draft.InquiryID,
		Reviewer:  reviewer,
		Decision:  domain.ReviewPass,
		Score:     review.Score,
		Summary:   review.Comment,
		CreatedAt: s.now(),
	}
	if err := s.recordReview(ctx, draft, res, review.Comment); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *AnswerService) recordReview(
	ctx context.Context, draft *domain.AnswerDraft, res *domain.AIReviewResult, comment string,
) error {
	if err := s.reviews.AppendReview(ctx, res); err != nil {
		return fmt.Errorf("append review: %w", err)
	}

	at := res.CreatedAt
	score := res.Score
	draft.ReviewScore = &score
	draft.ReviewDecision = res.Decision
	draft.ReviewedBy = res.Reviewer
	draft.ReviewComment = comment
	draft.ReviewedAt = &at
	if err := draft.Transition(domain.AnswerReviewed, at); err != nil {
		return err
	}
	if err := s.answers.SaveAnswer(ctx, draft); err != nil {
		return fmt.Errorf("save answer: %w", err)
	}

	s.event(ctx, domain.EventAnswerReviewed, draft, map[string]string{
		"reviewer": res.Reviewer,
		"decision": string(res.Decision),
		"score":    strconv.Itoa(res.Score),
	})
	return nil
}

// Approve records a human approval: REVIEWED -> APPROVED.
func (s *AnswerService) Approve(ctx context.Context, answerID, approver, comment string) (*domain.AnswerDraft, error) {
	draft, err := s.answers.GetAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if draft.Status != domain.AnswerReviewed {
		return nil, fmt.Errorf("approve answer %s in status %s: %w", draft.ID, draft.Status, domain.ErrIllegalTransition)
	}
	if err := s.applyApproval(ctx, draft, domain.ApprovalHumanApproved, approverOrDefault(approver), comment, domain.AnswerApproved); err != nil {
		return nil, err
	}
	return draft, nil
}

// Reject records a human rejection: REVIEWED or APPROVED -> DRAFT.
func (s *AnswerService) Reject(ctx context.Context, answerID, approver, comment string) (*domain.AnswerDraft, error) {
	draft, err := s.answers.GetAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if draft.Status == domain.AnswerDraftStatus || !draft.Status.CanTransitionTo(domain.AnswerDraftStatus) {
		return nil, fmt.Errorf("reject answer %s in status %s: %w", draft.ID, draft.Status, domain.ErrIllegalTransition)
	}
	if err := s.applyApproval(ctx, draft, domain.ApprovalHumanRejected, approverOrDefault(approver), comment, domain.AnswerDraftStatus); err != nil {
		return nil, err
	}
	return draft, nil
}

// AutoApprove evaluates the approval gates against the latest review and
// applies the outcome. ESCALATED leaves the status unchanged.
func (s *AnswerService) AutoApprove(ctx context.Context, answerID string) (*domain.ApprovalDecision, error) {
	logger.Section("Auto Approve")

	draft, err := s.answers.GetAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if draft.Status != domain.AnswerReviewed {
		return nil, fmt.Errorf("auto-approve answer %s in status %s: %w", draft.ID, draft.Status, domain.ErrIllegalTransition)
	}
	review, err := s.reviews.LatestReview(ctx, draft.ID)
	if err != nil {
		return nil, fmt.Errorf("latest review: %w", err)
	}

	decision := s.approval.Evaluate(draft, review)
	logger.Debug("Approval: %s (%s)", decision.Outcome, decision.Reason)

	var next domain.AnswerStatus
	switch decision.Outcome {
	case domain.ApprovalAutoApproved:
		next = domain.AnswerApproved
	case domain.ApprovalRejected:
		next = domain.AnswerDraftStatus
	default:
		next = draft.Status
	}
	if err := s.applyApproval(ctx, draft, decision.Outcome, domain.AIApproverName, decision.Reason, next); err != nil {
		return nil, err
	}
	return &decision, nil
}

func (s *AnswerService) applyApproval(
	ctx context.Context,
	draft *domain.AnswerDraft,
	outcome domain.ApprovalOutcome,
	approver, comment string,
	next domain.AnswerStatus,
) error {
	at := s.now()
	if next != draft.Status {
		if err := draft.Transition(next, at); err != nil {
			return err
		}
	}
	draft.ApprovalDecision = outcome
	draft.ApprovedBy = approver
	draft.ApprovalComment = comment
	draft.ApprovedAt = &at
	draft.UpdatedAt = at
	if err := s.answers.SaveAnswer(ctx, draft); err != nil {
		return fmt.Errorf("save answer: %w", err)
	}

	s.event(ctx, domain.EventAnswerApproval, draft, map[string]string{
		"outcome":  string(outcome),
		"approver": approver,
		"status":   string(draft.Status),
	})
	return nil
}

// Revise creates a new DRAFT version from the latest review's revised text.
// The previous version is kept unchanged.
func (s *AnswerService) Revise(ctx context.Context, answerID string) (*domain.AnswerDraft, error) {
	draft, err := s.answers.GetAnswer(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if draft.Status == domain.AnswerSent {
		return nil, fmt.Errorf("revise answer %s: already sent: %w", draft.ID, domain.ErrIllegalTransition)
	}
	review, err := s.reviews.LatestReview(ctx, draft.ID)
	if err != nil {
		return nil, fmt.Errorf("latest review: %w", err)
	}
	if review.Decision != domain.ReviewRevise || review.RevisedDraft == "" {
		return nil, fmt.Errorf("latest review of %s suggests no revision: %w", draft.ID, domain.ErrConflict)
	}

	version, err := s.answers.NextVersion(ctx, draft.InquiryID)
	if err != nil {
		return nil, fmt.Errorf("reserve version: %w", err)
	}
	now := s.now()
	revised := &domain.AnswerDraft{
		ID:         uuid.New().String(),
		InquiryID:  draft.InquiryID,
		Version:    version,
		Question:   draft.Question,
		Verdict:    draft.Verdict,
		Confidence: draft.Confidence,
		Reason:     draft.Reason,
		Tone:       draft.Tone,
		Channel:    draft.Channel,
		Status:     domain.AnswerDraftStatus,
		Text:       review.RevisedDraft,
		Citations:  append([]string(nil), draft.Citations...),
		RiskFlags:  append([]domain.RiskFlag(nil), draft.RiskFlags...),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.answers.SaveAnswer(ctx, revised); err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}

	s.event(ctx, domain.EventAnswerCreated, revised, map[string]string{
		"version":    strconv.Itoa(revised.Version),
		"revisionOf": draft.ID,
	})
	return revised, nil
}

func (s *AnswerService) event(ctx context.Context, typ domain.EventType, draft *domain.AnswerDraft, data map[string]string) {
	emit(ctx, s.notifier, domain.Event{
		Type:      typ,
		InquiryID: draft.InquiryID,
		SubjectID: draft.ID,
		Data:      data,
		At:        s.now(),
	})
}

func approverOrDefault(approver string) string {
	if a := strings.TrimSpace(approver); a != "" {
		return a
	}
	return domain.HumanReviewerName
}
