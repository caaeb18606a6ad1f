package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

var (
	_ driven.InquiryStore     = (*inquiryStore)(nil)
	_ driven.EvidenceStore    = (*evidenceStore)(nil)
	_ driven.DocumentStore    = (*documentStore)(nil)
	_ driven.AnswerStore      = (*answerStore)(nil)
	_ driven.ReviewStore      = (*reviewStore)(nil)
	_ driven.SendAttemptStore = (*sendAttemptStore)(nil)
)

// ==================== Inquiry Store ====================

type inquiryStore struct {
	db *bun.DB
}

func (s *inquiryStore) SaveInquiry(ctx context.Context, inq *domain.Inquiry) error {
	_, err := s.db.NewInsert().
		Model(inquiryFromDomain(inq)).
		On("CONFLICT (id) DO UPDATE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("saving inquiry: %w", err)
	}
	return nil
}

func (s *inquiryStore) GetInquiry(ctx context.Context, id string) (*domain.Inquiry, error) {
	m := new(inquiryModel)
	if err := s.db.NewSelect().Model(m).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "inquiry", id)
	}
	inq := m.toDomain()
	return &inq, nil
}

func (s *inquiryStore) ListInquiries(ctx context.Context, limit int) ([]domain.Inquiry, error) {
	var rows []inquiryModel
	q := s.db.NewSelect().Model(&rows).OrderExpr("created_at DESC, id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}
	out := make([]domain.Inquiry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// ==================== Evidence Store ====================

type evidenceStore struct {
	db *bun.DB
}

func (s *evidenceStore) AppendEvidence(ctx context.Context, rows []domain.RetrievalEvidence) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]evidenceModel, 0, len(rows))
	for _, r := range rows {
		models = append(models, evidenceModel{
			ID:        r.ID,
			InquiryID: r.InquiryID,
			ChunkID:   r.ChunkID,
			Score:     r.Score,
			Rank:      r.Rank,
			Question:  r.Question,
			CreatedAt: r.CreatedAt,
		})
	}
	if _, err := s.db.NewInsert().Model(&models).Exec(ctx); err != nil {
		return fmt.Errorf("saving evidence: %w", err)
	}
	return nil
}

func (s *evidenceStore) ListEvidence(ctx context.Context, inquiryID string) ([]domain.RetrievalEvidence, error) {
	var rows []evidenceModel
	err := s.db.NewSelect().Model(&rows).Where("inquiry_id = ?", inquiryID).Order("seq").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing evidence: %w", err)
	}
	out := make([]domain.RetrievalEvidence, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.RetrievalEvidence{
			ID:        r.ID,
			InquiryID: r.InquiryID,
			ChunkID:   r.ChunkID,
			Score:     r.Score,
			Rank:      r.Rank,
			Question:  r.Question,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// ==================== Document Store ====================

type documentStore struct {
	db *bun.DB
}

func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.db.NewInsert().
		Model(documentFromDomain(doc)).
		On("CONFLICT (id) DO UPDATE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	m := new(documentModel)
	if err := s.db.NewSelect().Model(m).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "document", id)
	}
	doc := m.toDomain()
	return &doc, nil
}

func (s *documentStore) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	var rows []documentModel
	q := s.db.NewSelect().Model(&rows).OrderExpr("created_at DESC, id")
	if filter.InquiryID != "" {
		q = q.Where("inquiry_id = ?", filter.InquiryID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	out := make([]domain.Document, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.db.NewDelete().Model((*documentModel)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

func (s *documentStore) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*chunkModel)(nil)).Where("document_id = ?", documentID).Exec(ctx); err != nil {
			return fmt.Errorf("clearing chunks: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}
		models := make([]*chunkModel, 0, len(chunks))
		for i := range chunks {
			models = append(models, chunkFromDomain(documentID, &chunks[i]))
		}
		if _, err := tx.NewInsert().Model(&models).Exec(ctx); err != nil {
			return fmt.Errorf("saving chunks: %w", err)
		}
		return nil
	})
}

func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	var rows []chunkModel
	err := s.db.NewSelect().Model(&rows).Where("document_id = ?", documentID).Order("position").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	out := make([]domain.Chunk, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	m := new(chunkModel)
	if err := s.db.NewSelect().Model(m).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "chunk", id)
	}
	c := m.toDomain()
	return &c, nil
}

// ==================== Answer Store ====================

type answerStore struct {
	db *bun.DB
}

func (s *answerStore) SaveAnswer(ctx context.Context, a *domain.AnswerDraft) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(answerFromDomain(a)).On("CONFLICT (id) DO UPDATE").Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().
			Model(&answerVersionModel{InquiryID: a.InquiryID, LastVersion: a.Version}).
			On("CONFLICT (inquiry_id) DO UPDATE").
			Set("last_version = GREATEST(answer_versions.last_version, EXCLUDED.last_version)").
			Exec(ctx)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("answer %s version %d: %w", a.InquiryID, a.Version, domain.ErrConflict)
		}
		return fmt.Errorf("saving answer: %w", err)
	}
	return nil
}

// MarkAnswerSent updates the SENT columns only while the row is APPROVED.
func (s *answerStore) MarkAnswerSent(ctx context.Context, a *domain.AnswerDraft) error {
	res, err := s.db.NewUpdate().
		Model(answerFromDomain(a)).
		Column("status", "sent_by", "sent_channel", "message_id", "send_request_id", "sent_at", "updated_at").
		WherePK().
		Where("status = ?", string(domain.AnswerApproved)).
		Exec(ctx)
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

func (s *answerStore) GetAnswer(ctx context.Context, id string) (*domain.AnswerDraft, error) {
	m := new(answerModel)
	if err := s.db.NewSelect().Model(m).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "answer", id)
	}
	a := m.toDomain()
	return &a, nil
}

func (s *answerStore) ListAnswers(ctx context.Context, inquiryID string) ([]domain.AnswerDraft, error) {
	var rows []answerModel
	err := s.db.NewSelect().Model(&rows).Where("inquiry_id = ?", inquiryID).Order("version DESC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing answers: %w", err)
	}
	return answersToDomain(rows), nil
}

func (s *answerStore) ListAnswersByStatus(ctx context.Context, statuses ...domain.AnswerStatus) ([]domain.AnswerDraft, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	values := make([]string, len(statuses))
	for i, st := range statuses {
		values[i] = string(st)
	}
	var rows []answerModel
	err := s.db.NewSelect().Model(&rows).Where("status IN (?)", bun.In(values)).OrderExpr("created_at, id").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing answers: %w", err)
	}
	return answersToDomain(rows), nil
}

func (s *answerStore) NextVersion(ctx context.Context, inquiryID string) (int, error) {
	var v int
	err := s.db.NewRaw(`
		INSERT INTO answer_versions (inquiry_id, last_version) VALUES (?, 1)
		ON CONFLICT (inquiry_id) DO UPDATE SET last_version = answer_versions.last_version + 1
		RETURNING last_version
	`, inquiryID).Scan(ctx, &v)
	if err != nil {
		return 0, fmt.Errorf("reserving answer version: %w", err)
	}
	return v, nil
}

func answersToDomain(rows []answerModel) []domain.AnswerDraft {
	out := make([]domain.AnswerDraft, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}

// ==================== Review Store ====================

type reviewStore struct {
	db *bun.DB
}

func (s *reviewStore) AppendReview(ctx context.Context, r *domain.AIReviewResult) error {
	if _, err := s.db.NewInsert().Model(reviewFromDomain(r)).Exec(ctx); err != nil {
		return fmt.Errorf("saving review: %w", err)
	}
	return nil
}

func (s *reviewStore) ListReviews(ctx context.Context, answerID string) ([]domain.AIReviewResult, error) {
	var rows []reviewModel
	if err := s.db.NewSelect().Model(&rows).Where("answer_id = ?", answerID).Order("seq").Scan(ctx); err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	out := make([]domain.AIReviewResult, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *reviewStore) LatestReview(ctx context.Context, answerID string) (*domain.AIReviewResult, error) {
	m := new(reviewModel)
	err := s.db.NewSelect().Model(m).Where("answer_id = ?", answerID).OrderExpr("seq DESC").Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err, "review for answer", answerID)
	}
	r := m.toDomain()
	return &r, nil
}

// ==================== Send Attempt Store ====================

type sendAttemptStore struct {
	db *bun.DB
}

func (s *sendAttemptStore) AppendSendAttempt(ctx context.Context, a *domain.SendAttempt) error {
	if _, err := s.db.NewInsert().Model(sendAttemptFromDomain(a)).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("send %s/%s: %w", a.AnswerID, a.SendRequestID, domain.ErrConflict)
		}
		return fmt.Errorf("saving send attempt: %w", err)
	}
	return nil
}

func (s *sendAttemptStore) FindSent(ctx context.Context, answerID, sendRequestID string) (*domain.SendAttempt, error) {
	m := new(sendAttemptModel)
	err := s.db.NewSelect().Model(m).
		Where("answer_id = ?", answerID).
		Where("send_request_id = ?", sendRequestID).
		Where("outcome = ?", string(domain.SendSent)).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "send", answerID+"/"+sendRequestID)
	}
	a := m.toDomain()
	return &a, nil
}

func (s *sendAttemptStore) ListSendAttempts(ctx context.Context, answerID string) ([]domain.SendAttempt, error) {
	var rows []sendAttemptModel
	if err := s.db.NewSelect().Model(&rows).Where("answer_id = ?", answerID).Order("seq").Scan(ctx); err != nil {
		return nil, fmt.Errorf("listing send attempts: %w", err)
	}
	out := make([]domain.SendAttempt, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}
