// Package postgres provides a Postgres implementation of the storage ports
// built on bun. The same *bun.DB also backs the pgvector index.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// Store owns the bun database and hands out per-port wrappers.
type Store struct {
	db *bun.DB
}

// Open connects to dsn, verifies the connection and creates missing tables.
// Queries are logged through bundebug when the logger is verbose.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open postgres: empty dsn: %w", domain.ErrInvalidInput)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if logger.IsVerbose() {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.WithWriter(logger.Writer()),
		))
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DB exposes the bun database for the pgvector index.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InquiryStore returns an InquiryStore backed by this store.
func (s *Store) InquiryStore() driven.InquiryStore {
	return &inquiryStore{db: s.db}
}

// EvidenceStore returns an EvidenceStore backed by this store.
func (s *Store) EvidenceStore() driven.EvidenceStore {
	return &evidenceStore{db: s.db}
}

// DocumentStore returns a DocumentStore backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{db: s.db}
}

// AnswerStore returns an AnswerStore backed by this store.
func (s *Store) AnswerStore() driven.AnswerStore {
	return &answerStore{db: s.db}
}

// ReviewStore returns a ReviewStore backed by this store.
func (s *Store) ReviewStore() driven.ReviewStore {
	return &reviewStore{db: s.db}
}

// SendAttemptStore returns a SendAttemptStore backed by this store.
func (s *Store) SendAttemptStore() driven.SendAttemptStore {
	return &sendAttemptStore{db: s.db}
}

func (s *Store) createSchema(ctx context.Context) error {
	models := []any{
		(*inquiryModel)(nil),
		(*documentModel)(nil),
		(*evidenceModel)(nil),
		(*answerModel)(nil),
		(*answerVersionModel)(nil),
		(*reviewModel)(nil),
		(*sendAttemptModel)(nil),
	}
	for _, m := range models {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	_, err := s.db.NewCreateTable().
		Model((*chunkModel)(nil)).
		IfNotExists().
		ForeignKey(`("document_id") REFERENCES "documents" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create table chunks: %w", err)
	}

	indexes := []*bun.CreateIndexQuery{
		s.db.NewCreateIndex().Model((*documentModel)(nil)).Index("idx_documents_inquiry").Column("inquiry_id"),
		s.db.NewCreateIndex().Model((*chunkModel)(nil)).Index("idx_chunks_document").Column("document_id", "position"),
		s.db.NewCreateIndex().Model((*evidenceModel)(nil)).Index("idx_evidence_inquiry").Column("inquiry_id"),
		s.db.NewCreateIndex().Model((*answerModel)(nil)).Index("idx_answers_status").Column("status"),
		s.db.NewCreateIndex().Model((*reviewModel)(nil)).Index("idx_reviews_answer").Column("answer_id"),
		s.db.NewCreateIndex().Model((*sendAttemptModel)(nil)).Index("idx_send_attempts_answer").Column("answer_id"),
		// At most one successful send per (answer, send request).
		s.db.NewCreateIndex().Model((*sendAttemptModel)(nil)).Unique().
			Index("idx_send_attempts_sent").Column("answer_id", "send_request_id").
			Where("outcome = ?", string(domain.SendSent)),
	}
	for _, q := range indexes {
		if _, err := q.IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}

func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", what, err)
}
