package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// ==================== Answer Store ====================

// answerStore implements driven.AnswerStore.
type answerStore struct {
	store *Store
}

var _ driven.AnswerStore = (*answerStore)(nil)

const answerColumns = `id, inquiry_id, version, question, verdict, confidence, reason, tone, channel,
	status, text, citations, risk_flags, review_score, review_decision, reviewed_by, review_comment,
	reviewed_at, approval_decision, approved_by, approval_comment, approved_at, sent_by, sent_channel,
	message_id, send_request_id, sent_at, created_at, updated_at`

// SaveAnswer inserts or updates a draft and keeps the version counter
// at or above its version.
func (s *answerStore) SaveAnswer(ctx context.Context, a *domain.AnswerDraft) error {
	citations, err := marshalJSON(nonNil(a.Citations))
	if err != nil {
		return fmt.Errorf("saving answer: %w", err)
	}
	flags, err := marshalJSON(nonNil(a.RiskFlags))
	if err != nil {
		return fmt.Errorf("saving answer: %w", err)
	}
	var score sql.NullInt64
	if a.ReviewScore != nil {
		score = sql.NullInt64{Int64: int64(*a.ReviewScore), Valid: true}
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO answers (`+answerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			question = excluded.question,
			verdict = excluded.verdict,
			confidence = excluded.confidence,
			reason = excluded.reason,
			tone = excluded.tone,
			channel = excluded.channel,
			status = excluded.status,
			text = excluded.text,
			citations = excluded.citations,
			risk_flags = excluded.risk_flags,
			review_score = excluded.review_score,
			review_decision = excluded.review_decision,
			reviewed_by = excluded.reviewed_by,
			review_comment = excluded.review_comment,
			reviewed_at = excluded.reviewed_at,
			approval_decision = excluded.approval_decision,
			approved_by = excluded.approved_by,
			approval_comment = excluded.approval_comment,
			approved_at = excluded.approved_at,
			sent_by = excluded.sent_by,
			sent_channel = excluded.sent_channel,
			message_id = excluded.message_id,
			send_request_id = excluded.send_request_id,
			sent_at = excluded.sent_at,
			updated_at = excluded.updated_at
	`, a.ID, a.InquiryID, a.Version, a.Question, string(a.Verdict), a.Confidence, a.Reason,
		string(a.Tone), string(a.Channel), string(a.Status), a.Text, citations, flags, score,
		string(a.ReviewDecision), a.ReviewedBy, a.ReviewComment, nullTime(a.ReviewedAt),
		string(a.ApprovalDecision), a.ApprovedBy, a.ApprovalComment, nullTime(a.ApprovedAt),
		a.SentBy, string(a.SentChannel), a.MessageID, a.SendRequestID, nullTime(a.SentAt),
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("answer %s version %d: %w", a.InquiryID, a.Version, domain.ErrConflict)
		}
		return fmt.Errorf("saving answer: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO answer_versions (inquiry_id, last_version) VALUES (?, ?)
		ON CONFLICT(inquiry_id) DO UPDATE SET
			last_version = MAX(last_version, excluded.last_version)
	`, a.InquiryID, a.Version)
	if err != nil {
		return fmt.Errorf("bumping answer version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// MarkAnswerSent moves a stored APPROVED draft to SENT in one guarded
// update. Zero affected rows means it is missing or no longer APPROVED.
func (s *answerStore) MarkAnswerSent(ctx context.Context, a *domain.AnswerDraft) error {
	res, err := sq.Update("answers").
		SetMap(map[string]any{
			"status":          string(a.Status),
			"sent_by":         a.SentBy,
			"sent_channel":    string(a.SentChannel),
			"message_id":      a.MessageID,
			"send_request_id": a.SendRequestID,
			"sent_at":         nullTime(a.SentAt),
			"updated_at":      a.UpdatedAt,
		}).
		Where(sq.Eq{"id": a.ID, "status": string(domain.AnswerApproved)}).
		RunWith(s.store.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("marking answer sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking answer sent: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := s.GetAnswer(ctx, a.ID); err != nil {
		return err
	}
	return fmt.Errorf("answer %s: %w", a.ID, domain.ErrNotApproved)
}

// GetAnswer retrieves a draft by ID.
func (s *answerStore) GetAnswer(ctx context.Context, id string) (*domain.AnswerDraft, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+answerColumns+` FROM answers WHERE id = ?`, id)
	a, err := scanAnswer(row)
	if err != nil {
		return nil, notFound(err, "answer", id)
	}
	return a, nil
}

// ListAnswers returns every version for an inquiry, newest first.
func (s *answerStore) ListAnswers(ctx context.Context, inquiryID string) ([]domain.AnswerDraft, error) {
	b := sq.Select(answerColumns).From("answers").
		Where(sq.Eq{"inquiry_id": inquiryID}).
		OrderBy("version DESC")
	return s.list(ctx, b)
}

// ListAnswersByStatus returns drafts in any of the statuses, oldest first.
func (s *answerStore) ListAnswersByStatus(ctx context.Context, statuses ...domain.AnswerStatus) ([]domain.AnswerDraft, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	values := make([]string, len(statuses))
	for i, st := range statuses {
		values[i] = string(st)
	}
	b := sq.Select(answerColumns).From("answers").
		Where(sq.Eq{"status": values}).
		OrderBy("created_at", "id")
	return s.list(ctx, b)
}

// NextVersion reserves the next version number for an inquiry.
func (s *answerStore) NextVersion(ctx context.Context, inquiryID string) (int, error) {
	var v int
	err := s.store.db.QueryRowContext(ctx, `
		INSERT INTO answer_versions (inquiry_id, last_version) VALUES (?, 1)
		ON CONFLICT(inquiry_id) DO UPDATE SET last_version = last_version + 1
		RETURNING last_version
	`, inquiryID).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("reserving answer version: %w", err)
	}
	return v, nil
}

func (s *answerStore) list(ctx context.Context, b sq.SelectBuilder) ([]domain.AnswerDraft, error) {
	rows, err := s.store.queryRows(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("listing answers: %w", err)
	}
	defer rows.Close()

	var out []domain.AnswerDraft //nolint:prealloc // size unknown from query
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning answer: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating answers: %w", err)
	}
	return out, nil
}

func scanAnswer(row scanner) (*domain.AnswerDraft, error) {
	var a domain.AnswerDraft
	var verdict, tone, channel, status, reviewDecision, approvalDecision, sentChannel string
	var citations, flags string
	var score sql.NullInt64
	var reviewedAt, approvedAt, sentAt sql.NullTime

	if err := row.Scan(&a.ID, &a.InquiryID, &a.Version, &a.Question, &verdict, &a.Confidence,
		&a.Reason, &tone, &channel, &status, &a.Text, &citations, &flags, &score, &reviewDecision,
		&a.ReviewedBy, &a.ReviewComment, &reviewedAt, &approvalDecision, &a.ApprovedBy,
		&a.ApprovalComment, &approvedAt, &a.SentBy, &sentChannel, &a.MessageID, &a.SendRequestID,
		&sentAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}

	a.Verdict = domain.Verdict(verdict)
	a.Tone = domain.Tone(tone)
	a.Channel = domain.Channel(channel)
	a.Status = domain.AnswerStatus(status)
	a.ReviewDecision = domain.ReviewDecision(reviewDecision)
	a.ApprovalDecision = domain.ApprovalOutcome(approvalDecision)
	a.SentChannel = domain.Channel(sentChannel)
	a.ReviewedAt = timePtr(reviewedAt)
	a.ApprovedAt = timePtr(approvedAt)
	a.SentAt = timePtr(sentAt)
	if score.Valid {
		v := int(score.Int64)
		a.ReviewScore = &v
	}
	if err := unmarshalJSON(citations, &a.Citations); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(flags, &a.RiskFlags); err != nil {
		return nil, err
	}
	return &a, nil
}

// ==================== Review Store ====================

// reviewStore implements driven.ReviewStore.
type reviewStore struct {
	store *Store
}

var _ driven.ReviewStore = (*reviewStore)(nil)

const reviewColumns = `id, answer_id, inquiry_id, reviewer, decision, score, summary, revised_draft, issues, created_at`

// AppendReview appends a review.
func (s *reviewStore) AppendReview(ctx context.Context, r *domain.AIReviewResult) error {
	issues, err := marshalJSON(nonNil(r.Issues))
	if err != nil {
		return fmt.Errorf("saving review: %w", err)
	}
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.AnswerID, r.InquiryID, r.Reviewer, string(r.Decision), r.Score, r.Summary,
		r.RevisedDraft, issues, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving review: %w", err)
	}
	return nil
}

// ListReviews returns reviews for an answer, oldest first.
func (s *reviewStore) ListReviews(ctx context.Context, answerID string) ([]domain.AIReviewResult, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE answer_id = ? ORDER BY seq`, answerID)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	var out []domain.AIReviewResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reviews: %w", err)
	}
	return out, nil
}

// LatestReview returns the most recent review of an answer.
func (s *reviewStore) LatestReview(ctx context.Context, answerID string) (*domain.AIReviewResult, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE answer_id = ? ORDER BY seq DESC LIMIT 1`, answerID)
	r, err := scanReview(row)
	if err != nil {
		return nil, notFound(err, "review for answer", answerID)
	}
	return r, nil
}

func scanReview(row scanner) (*domain.AIReviewResult, error) {
	var r domain.AIReviewResult
	var decision, issues string
	if err := row.Scan(&r.ID, &r.AnswerID, &r.InquiryID, &r.Reviewer, &decision, &r.Score,
		&r.Summary, &r.RevisedDraft, &issues, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Decision = domain.ReviewDecision(decision)
	if err := unmarshalJSON(issues, &r.Issues); err != nil {
		return nil, err
	}
	return &r, nil
}

// ==================== Send Attempt Store ====================

// sendAttemptStore implements driven.SendAttemptStore.
type sendAttemptStore struct {
	store *Store
}

var _ driven.SendAttemptStore = (*sendAttemptStore)(nil)

const sendAttemptColumns = `id, inquiry_id, answer_id, send_request_id, outcome, channel, provider, message_id, detail, created_at`

// AppendSendAttempt appends an attempt. A second SENT row for the same
// (answer, send-request id) violates the partial unique index and is
// reported as domain.ErrConflict.
func (s *sendAttemptStore) AppendSendAttempt(ctx context.Context, a *domain.SendAttempt) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO send_attempts (`+sendAttemptColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.InquiryID, a.AnswerID, a.SendRequestID, string(a.Outcome), string(a.Channel),
		a.Provider, a.MessageID, a.Detail, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("send %s/%s: %w", a.AnswerID, a.SendRequestID, domain.ErrConflict)
		}
		return fmt.Errorf("saving send attempt: %w", err)
	}
	return nil
}

// FindSent returns the SENT attempt for (answerID, sendRequestID).
func (s *sendAttemptStore) FindSent(ctx context.Context, answerID, sendRequestID string) (*domain.SendAttempt, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+sendAttemptColumns+` FROM send_attempts
		WHERE answer_id = ? AND send_request_id = ? AND outcome = ?
	`, answerID, sendRequestID, string(domain.SendSent))
	a, err := scanSendAttempt(row)
	if err != nil {
		return nil, notFound(err, "send", answerID+"/"+sendRequestID)
	}
	return a, nil
}

// ListSendAttempts returns attempts for an answer, oldest first.
func (s *sendAttemptStore) ListSendAttempts(ctx context.Context, answerID string) ([]domain.SendAttempt, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+sendAttemptColumns+` FROM send_attempts WHERE answer_id = ? ORDER BY seq`, answerID)
	if err != nil {
		return nil, fmt.Errorf("querying send attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.SendAttempt //nolint:prealloc // size unknown from query
	for rows.Next() {
		a, err := scanSendAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning send attempt: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating send attempts: %w", err)
	}
	return out, nil
}

func scanSendAttempt(row scanner) (*domain.SendAttempt, error) {
	var a domain.SendAttempt
	var outcome, channel string
	if err := row.Scan(&a.ID, &a.InquiryID, &a.AnswerID, &a.SendRequestID, &outcome, &channel,
		&a.Provider, &a.MessageID, &a.Detail, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Outcome = domain.SendOutcome(outcome)
	a.Channel = domain.Channel(channel)
	return &a, nil
}

// nonNil keeps empty slices encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
