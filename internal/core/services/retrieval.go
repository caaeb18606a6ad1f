package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// Ensure VerificationService implements the interface.
var _ driving.VerificationService = (*VerificationService)(nil)

// VerificationService retrieves evidence for a question and judges it.
// Without an embedding service or vector index every question yields no
// evidence and therefore a CONDITIONAL verdict.
type VerificationService struct {
	inquiries   driven.InquiryStore
	evidence    driven.EvidenceStore
	embedding   driven.EmbeddingService
	vectorIndex driven.VectorIndex
	engine      *VerdictEngine
	now         func() time.Time
}

// NewVerificationService creates a verification service.
// embedding and vectorIndex may be nil.
func NewVerificationService(
	inquiries driven.InquiryStore,
	evidence driven.EvidenceStore,
	embedding driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
	engine *VerdictEngine,
) *VerificationService {
	if engine == nil {
		engine = NewVerdictEngine(domain.DefaultVerdictPolicy())
	}
	return &VerificationService{
		inquiries:   inquiries,
		evidence:    evidence,
		embedding:   embedding,
		vectorIndex: vectorIndex,
		engine:      engine,
		now:         time.Now,
	}
}

// RetrieveAndVerify retrieves the top-K chunks and judges them.
func (s *VerificationService) RetrieveAndVerify(
	ctx context.Context, inquiryID, question string, topK int,
) (*domain.VerificationResult, error) {
	logger.Section("Retrieve and Verify")

	items, err := s.Retrieve(ctx, inquiryID, question, topK)
	if err != nil {
		return nil, err
	}

	j := s.engine.Judge(question, items)
	logger.Debug("Verdict: %s confidence=%.3f flags=%v", j.Verdict, j.Confidence, j.RiskFlags)

	return &domain.VerificationResult{
		InquiryID:  inquiryID,
		Question:   strings.TrimSpace(question),
		Verdict:    j.Verdict,
		Confidence: j.Confidence,
		Reason:     j.Reason,
		RiskFlags:  j.RiskFlags,
		Evidence:   items,
	}, nil
}

// Retrieve embeds the question, searches the index and appends one
// evidence row per hit, ranked from 1.
func (s *VerificationService) Retrieve(
	ctx context.Context, inquiryID, question string, topK int,
) ([]domain.EvidenceItem, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(inquiryID) == "" {
		return nil, fmt.Errorf("inquiry id is required: %w", domain.ErrInvalidInput)
	}
	if s.inquiries != nil {
		if _, err := s.inquiries.GetInquiry(ctx, inquiryID); err != nil {
			return nil, fmt.Errorf("get inquiry %s: %w", inquiryID, err)
		}
	}

	switch {
	case topK <= 0:
		topK = domain.DefaultRetrievalTopK
	case topK > domain.MaxRetrievalTopK:
		topK = domain.MaxRetrievalTopK
	}
	logger.Debug("Question: %q topK=%d", question, topK)

	if s.embedding == nil || s.vectorIndex == nil {
		logger.Warn("retrieval skipped: embedding or vector index not configured")
		return []domain.EvidenceItem{}, nil
	}

	vec, err := s.embedding.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w: %w", domain.ErrExternalService, err)
	}

	hits, err := s.vectorIndex.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w: %w", domain.ErrExternalService, err)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	logger.Debug("Vector hits: %d", len(hits))

	now := s.now()
	items := make([]domain.EvidenceItem, 0, len(hits))
	rows := make([]domain.RetrievalEvidence, 0, len(hits))
	for i, h := range hits {
		items = append(items, domain.EvidenceItem{
			ChunkID:    h.ChunkID,
			DocumentID: h.DocumentID,
			Score:      h.Score,
			Excerpt:    Excerpt(h.Content),
			SourceType: h.SourceType,
		})
		rows = append(rows, domain.RetrievalEvidence{
			ID:        uuid.New().String(),
			InquiryID: inquiryID,
			ChunkID:   h.ChunkID,
			Score:     h.Score,
			Rank:      i + 1,
			Question:  question,
			CreatedAt: now,
		})
	}

	if len(rows) > 0 && s.evidence != nil {
		if err := s.evidence.AppendEvidence(ctx, rows); err != nil {
			return nil, fmt.Errorf("append evidence: %w", err)
		}
	}
	return items, nil
}

// Evidence returns the retrieval audit trail of an inquiry.
func (s *VerificationService) Evidence(ctx context.Context, inquiryID string) ([]domain.RetrievalEvidence, error) {
	if s.evidence == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.evidence.ListEvidence(ctx, inquiryID)
}

// Excerpt collapses whitespace and truncates to ExcerptLength characters.
func Excerpt(content string) string {
	normalised := strings.Join(strings.Fields(content), " ")
	r := []rune(normalised)
	if len(r) <= domain.ExcerptLength {
		return normalised
	}
	return string(r[:domain.ExcerptLength])
}
