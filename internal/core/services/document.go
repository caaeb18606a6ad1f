package services

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService registers uploaded files and removes documents.
type DocumentService struct {
	docStore    driven.DocumentStore
	content     driven.ContentStore
	inquiries   driven.InquiryStore
	vectorIndex driven.VectorIndex
	notifier    driven.Notifier
	ingestion   *IngestionService
	now         func() time.Time
}

// NewDocumentService creates a new document service.
// inquiries, vectorIndex and notifier may be nil.
func NewDocumentService(
	docStore driven.DocumentStore,
	content driven.ContentStore,
	inquiries driven.InquiryStore,
	vectorIndex driven.VectorIndex,
	notifier driven.Notifier,
) *DocumentService {
	return &DocumentService{
		docStore:    docStore,
		content:     content,
		inquiries:   inquiries,
		vectorIndex: vectorIndex,
		notifier:    notifier,
		now:         time.Now,
	}
}

// TrackIngestion makes Delete consult the live ingestion runs instead of
// the stored status, so documents left in flight by a crash can be removed.
func (s *DocumentService) TrackIngestion(ing *IngestionService) {
	s.ingestion = ing
}

// Upload stores the raw bytes and creates an UPLOADED document.
func (s *DocumentService) Upload(ctx context.Context, req driving.UploadRequest) (*domain.Document, error) {
	name := filepath.Base(strings.TrimSpace(req.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("file name is required: %w", domain.ErrInvalidInput)
	}
	if req.Content == nil {
		return nil, fmt.Errorf("file content is required: %w", domain.ErrInvalidInput)
	}
	if req.InquiryID != "" && s.inquiries != nil {
		if _, err := s.inquiries.GetInquiry(ctx, req.InquiryID); err != nil {
			return nil, fmt.Errorf("get inquiry %s: %w", req.InquiryID, err)
		}
	}

	ref, size, err := s.content.Put(ctx, name, req.Content)
	if err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	now := s.now()
	doc := &domain.Document{
		ID:         uuid.New().String(),
		InquiryID:  req.InquiryID,
		SourceType: domain.SourceKnowledgeBase,
		FileName:   name,
		MIMEType:   detectMIMEType(name, req.MIMEType),
		ContentRef: ref,
		Size:       size,
		Status:     domain.DocumentUploaded,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.InquiryID != "" {
		doc.SourceType = domain.SourceInquiry
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		_ = s.content.Delete(ctx, ref)
		return nil, fmt.Errorf("save document: %w", err)
	}
	logger.Debug("Uploaded %s as %s (%d bytes, %s)", name, doc.ID, size, doc.MIMEType)

	emit(ctx, s.notifier, domain.Event{
		Type:      domain.EventDocumentStatus,
		InquiryID: doc.InquiryID,
		SubjectID: doc.ID,
		Data:      map[string]string{"status": string(doc.Status), "fileName": doc.FileName},
		At:        now,
	})
	return doc, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, id)
}

// List returns documents matching the filter.
func (s *DocumentService) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx, filter)
}

// Chunks returns a document's chunks ordered by index.
func (s *DocumentService) Chunks(ctx context.Context, id string) ([]domain.Chunk, error) {
	if _, err := s.docStore.GetDocument(ctx, id); err != nil {
		return nil, err
	}
	return s.docStore.GetChunks(ctx, id)
}

// Delete removes a document with its chunks. Vector and content removal
// are best-effort.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	busy := doc.Status.IsInFlight()
	if s.ingestion != nil {
		busy = s.ingestion.InProgress(id)
	}
	if busy {
		return fmt.Errorf("delete document %s: %w", id, domain.ErrIndexingInProgress)
	}

	if s.vectorIndex != nil {
		if err := s.vectorIndex.DeleteByDocumentID(ctx, id); err != nil {
			logger.Warn("failed to purge vectors for %s: %v", id, err)
		}
	}
	if err := s.docStore.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if doc.ContentRef != "" {
		if err := s.content.Delete(ctx, doc.ContentRef); err != nil {
			logger.Warn("failed to remove content for %s: %v", id, err)
		}
	}
	return nil
}

// detectMIMEType prefers the declared type and falls back to the extension.
func detectMIMEType(name, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return byExt
	}
	if declared != "" {
		return declared
	}
	return "application/octet-stream"
}
