package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// ==================== Inquiry Store ====================

// inquiryStore implements driven.InquiryStore.
type inquiryStore struct {
	store *Store
}

var _ driven.InquiryStore = (*inquiryStore)(nil)

const inquiryColumns = `id, customer_name, customer_contact, subject, question, channel, created_at, updated_at`

// SaveInquiry stores or updates an inquiry.
func (s *inquiryStore) SaveInquiry(ctx context.Context, inq *domain.Inquiry) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO inquiries (`+inquiryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer_name = excluded.customer_name,
			customer_contact = excluded.customer_contact,
			subject = excluded.subject,
			question = excluded.question,
			channel = excluded.channel,
			updated_at = excluded.updated_at
	`, inq.ID, inq.CustomerName, inq.CustomerContact, inq.Subject, inq.Question,
		string(inq.Channel), inq.CreatedAt, inq.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving inquiry: %w", err)
	}
	return nil
}

// GetInquiry retrieves an inquiry by ID.
func (s *inquiryStore) GetInquiry(ctx context.Context, id string) (*domain.Inquiry, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = ?`, id)
	inq, err := scanInquiry(row)
	if err != nil {
		return nil, notFound(err, "inquiry", id)
	}
	return inq, nil
}

// ListInquiries returns inquiries newest first.
func (s *inquiryStore) ListInquiries(ctx context.Context, limit int) ([]domain.Inquiry, error) {
	b := sq.Select(inquiryColumns).From("inquiries").OrderBy("created_at DESC", "id")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	rows, err := s.store.queryRows(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}
	defer rows.Close()

	var out []domain.Inquiry //nolint:prealloc // size unknown from query
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inquiry: %w", err)
		}
		out = append(out, *inq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inquiries: %w", err)
	}
	return out, nil
}

func scanInquiry(row scanner) (*domain.Inquiry, error) {
	var inq domain.Inquiry
	var channel string
	if err := row.Scan(&inq.ID, &inq.CustomerName, &inq.CustomerContact, &inq.Subject,
		&inq.Question, &channel, &inq.CreatedAt, &inq.UpdatedAt); err != nil {
		return nil, err
	}
	inq.Channel = domain.Channel(channel)
	return &inq, nil
}

// ==================== Evidence Store ====================

// evidenceStore implements driven.EvidenceStore.
type evidenceStore struct {
	store *Store
}

var _ driven.EvidenceStore = (*evidenceStore)(nil)

// AppendEvidence inserts retrieval rows in one transaction.
func (s *evidenceStore) AppendEvidence(ctx context.Context, rows []domain.RetrievalEvidence) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO retrieval_evidence (id, inquiry_id, chunk_id, score, rank, question, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.ID, r.InquiryID, r.ChunkID, r.Score, r.Rank,
			r.Question, r.CreatedAt); err != nil {
			return fmt.Errorf("saving evidence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListEvidence returns rows for an inquiry in insertion order.
func (s *evidenceStore) ListEvidence(ctx context.Context, inquiryID string) ([]domain.RetrievalEvidence, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, inquiry_id, chunk_id, score, rank, question, created_at
		FROM retrieval_evidence WHERE inquiry_id = ? ORDER BY seq
	`, inquiryID)
	if err != nil {
		return nil, fmt.Errorf("querying evidence: %w", err)
	}
	defer rows.Close()

	var out []domain.RetrievalEvidence //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.RetrievalEvidence
		if err := rows.Scan(&r.ID, &r.InquiryID, &r.ChunkID, &r.Score, &r.Rank,
			&r.Question, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning evidence: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating evidence: %w", err)
	}
	return out, nil
}
