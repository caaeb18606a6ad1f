package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionConfig tunes the ingestion pipeline.
type IngestionConfig struct {
	// OCRMinChars is the extracted-text length at or below which OCR is tried.
	OCRMinChars int
	// EmbedConcurrency bounds parallel embedding calls per document.
	EmbedConcurrency int
	// InFlightLease is the age after which a stored in-flight status
	// no longer blocks a new run.
	InFlightLease time.Duration
}

// IngestionService runs extraction, OCR fallback, chunking, enrichment and
// vectorisation for a document, persisting every status change.
type IngestionService struct {
	docStore    driven.DocumentStore
	content     driven.ContentStore
	extractors  driven.ExtractorRegistry
	pipeline    driven.PostProcessorPipeline
	embedding   driven.EmbeddingService
	vectorIndex driven.VectorIndex
	ocr         driven.OCRService
	notifier    driven.Notifier
	cfg         IngestionConfig
	now         func() time.Time

	mu      sync.Mutex
	running map[string]struct{}
}

// IngestionDeps groups the collaborators of IngestionService.
// OCR, Embedding, VectorIndex and Notifier may be nil.
type IngestionDeps struct {
	Documents   driven.DocumentStore
	Content     driven.ContentStore
	Extractors  driven.ExtractorRegistry
	Pipeline    driven.PostProcessorPipeline
	Embedding   driven.EmbeddingService
	VectorIndex driven.VectorIndex
	OCR         driven.OCRService
	Notifier    driven.Notifier
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(deps IngestionDeps, cfg IngestionConfig) *IngestionService {
	if cfg.OCRMinChars <= 0 {
		cfg.OCRMinChars = domain.DefaultOCRMinChars
	}
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = domain.DefaultEmbedConcurrency
	}
	if cfg.InFlightLease <= 0 {
		cfg.InFlightLease = domain.DefaultInFlightLease
	}
	return &IngestionService{
		docStore:    deps.Documents,
		content:     deps.Content,
		extractors:  deps.Extractors,
		pipeline:    deps.Pipeline,
		embedding:   deps.Embedding,
		vectorIndex: deps.VectorIndex,
		ocr:         deps.OCR,
		notifier:    deps.Notifier,
		cfg:         cfg,
		now:         time.Now,
		running:     make(map[string]struct{}),
	}
}

// InProgress reports whether this process is currently ingesting id.
func (s *IngestionService) InProgress(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[id]
	return ok
}

// Ingest runs the pipeline to INDEXED or FAILED. Pipeline failures are
// recorded on the returned document, not returned as errors. A document
// another run left in flight less than InFlightLease ago is refused with
// domain.ErrIndexingInProgress.
func (s *IngestionService) Ingest(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.ingest(ctx, documentID, false)
}

// ForceIngest is Ingest without the in-flight lease check. The in-process
// guard still applies.
func (s *IngestionService) ForceIngest(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.ingest(ctx, documentID, true)
}

func (s *IngestionService) ingest(ctx context.Context, documentID string, force bool) (*domain.Document, error) {
	logger.Section("Ingest Document")

	if !s.claim(documentID) {
		return nil, fmt.Errorf("ingest document %s: %w", documentID, domain.ErrIndexingInProgress)
	}
	defer s.release(documentID)

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if doc.Status.IsInFlight() {
		age := s.now().Sub(doc.UpdatedAt)
		if !force && age < s.cfg.InFlightLease {
			return nil, fmt.Errorf("ingest document %s: %s for %s: %w",
				doc.ID, doc.Status, age.Round(time.Second), domain.ErrIndexingInProgress)
		}
		logger.Warn("document %s stuck in %s for %s, restarting", doc.ID, doc.Status, age.Round(time.Second))
		doc.Fail("interrupted during "+doc.Status.String(), s.now())
	}

	// Work runs to completion once started.
	ctx = context.WithoutCancel(ctx)

	if err := s.run(ctx, doc); err != nil {
		logger.Warn("ingestion of %s failed: %v", doc.ID, err)
		doc.Fail(err.Error(), s.now())
		if saveErr := s.persist(ctx, doc); saveErr != nil {
			return doc, fmt.Errorf("record failure: %w", saveErr)
		}
	}
	return doc, nil
}

func (s *IngestionService) run(ctx context.Context, doc *domain.Document) error {
	if err := s.advance(ctx, doc, domain.DocumentParsing); err != nil {
		return err
	}

	text, ocrConfidence, err := s.extract(ctx, doc)
	if err != nil {
		return err
	}
	doc.Text = text
	next := domain.DocumentParsed
	doc.OCRConfidence = nil
	if ocrConfidence != nil {
		next = domain.DocumentParsedOCR
		doc.OCRConfidence = ocrConfidence
	}
	if err := s.advance(ctx, doc, next); err != nil {
		return err
	}

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return fmt.Errorf("chunk document: %w", err)
	}
	if err := s.docStore.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	doc.ChunkCount = len(chunks)
	doc.VectorCount = 0
	if err := s.advance(ctx, doc, domain.DocumentChunked); err != nil {
		return err
	}
	logger.Debug("Chunks: %d", len(chunks))

	vectors, err := s.vectorise(ctx, doc, chunks)
	if err != nil {
		return err
	}
	doc.VectorCount = vectors
	doc.LastError = ""
	return s.advance(ctx, doc, domain.DocumentIndexed)
}

// extract returns the document text. A non-nil confidence means OCR produced it.
func (s *IngestionService) extract(ctx context.Context, doc *domain.Document) (string, *float64, error) {
	data, err := s.content.Get(ctx, doc.ContentRef)
	if err != nil {
		return "", nil, fmt.Errorf("read content: %w", err)
	}
	raw := &domain.RawFile{FileName: doc.FileName, MIMEType: doc.MIMEType, Content: data}

	text, err := s.extractors.Extract(ctx, raw)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUnsupportedFormat) && s.ocr != nil:
		logger.Debug("No extractor for %s, relying on OCR", doc.MIMEType)
	default:
		return "", nil, fmt.Errorf("extract text: %w", err)
	}
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) > s.cfg.OCRMinChars {
		return text, nil, nil
	}
	if s.ocr == nil {
		logger.Debug("Extracted %d chars and OCR is not configured", utf8.RuneCountInString(text))
		return text, nil, nil
	}

	logger.Debug("Extracted %d chars, trying OCR", utf8.RuneCountInString(text))
	res, err := s.ocr.Extract(ctx, raw)
	if err != nil {
		return "", nil, fmt.Errorf("ocr: %w", err)
	}
	ocrText := strings.TrimSpace(res.Text)
	if ocrText == "" {
		return text, nil, nil
	}
	confidence := res.Confidence
	return ocrText, &confidence, nil
}

// vectorise embeds searchable chunks in parallel and upserts them.
func (s *IngestionService) vectorise(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) (int, error) {
	if s.embedding == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}
	if s.vectorIndex == nil {
		return 0, domain.ErrVectorIndexUnavailable
	}

	if err := s.vectorIndex.DeleteByDocumentID(ctx, doc.ID); err != nil {
		logger.Warn("failed to purge old vectors for %s: %v", doc.ID, err)
	}

	var count atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EmbedConcurrency)
	for i := range chunks {
		c := chunks[i]
		if !c.Searchable() {
			continue
		}
		g.Go(func() error {
			vec, err := s.embedding.Embed(gctx, c.EmbeddingText())
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", c.Index, err)
			}
			if err := s.vectorIndex.Upsert(gctx, driven.VectorRecord{
				ChunkID:    c.ID,
				DocumentID: c.DocumentID,
				Embedding:  vec,
				Content:    c.EmbeddingText(),
				SourceType: c.SourceType,
			}); err != nil {
				return fmt.Errorf("upsert chunk %d: %w", c.Index, err)
			}
			count.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	logger.Debug("Vectors: %d", count.Load())
	return int(count.Load()), nil
}

// advance transitions doc, persists it and emits a status event.
func (s *IngestionService) advance(ctx context.Context, doc *domain.Document, next domain.DocumentStatus) error {
	if err := doc.Transition(next, s.now()); err != nil {
		return err
	}
	return s.persist(ctx, doc)
}

func (s *IngestionService) persist(ctx context.Context, doc *domain.Document) error {
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	data := map[string]string{
		"status":      string(doc.Status),
		"chunkCount":  strconv.Itoa(doc.ChunkCount),
		"vectorCount": strconv.Itoa(doc.VectorCount),
	}
	if doc.LastError != "" && doc.Status == domain.DocumentFailed {
		data["error"] = doc.LastError
	}
	emit(ctx, s.notifier, domain.Event{
		Type:      domain.EventDocumentStatus,
		InquiryID: doc.InquiryID,
		SubjectID: doc.ID,
		Data:      data,
		At:        doc.UpdatedAt,
	})
	return nil
}

func (s *IngestionService) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.running[id]; busy {
		return false
	}
	s.running[id] = struct{}{}
	return true
}

func (s *IngestionService) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, id)
}
