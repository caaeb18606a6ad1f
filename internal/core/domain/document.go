package domain

import (
	"fmt"
	"time"
)

// DocumentStatus is the ingestion lifecycle state of a document.
type DocumentStatus string

// Document lifecycle states.
const (
	DocumentUploaded  DocumentStatus = "UPLOADED"
	DocumentParsing   DocumentStatus = "PARSING"
	DocumentParsed    DocumentStatus = "PARSED"
	DocumentParsedOCR DocumentStatus = "PARSED_OCR"
	DocumentChunked   DocumentStatus = "CHUNKED"
	DocumentIndexed   DocumentStatus = "INDEXED"
	DocumentFailed    DocumentStatus = "FAILED"
)

// documentTransitions lists the legal next states for each state.
// UPLOADED, INDEXED and FAILED may (re-)enter PARSING.
var documentTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentUploaded:  {DocumentParsing, DocumentFailed},
	DocumentParsing:   {DocumentParsed, DocumentParsedOCR, DocumentFailed},
	DocumentParsed:    {DocumentChunked, DocumentFailed},
	DocumentParsedOCR: {DocumentChunked, DocumentFailed},
	DocumentChunked:   {DocumentIndexed, DocumentFailed},
	DocumentIndexed:   {DocumentParsing},
	DocumentFailed:    {DocumentParsing},
}

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	_, ok := documentTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	for _, allowed := range documentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DefaultInFlightLease is how long a persisted PARSING..CHUNKED status
// blocks a new run before it is treated as abandoned.
const DefaultInFlightLease = 15 * time.Minute

// IsInFlight returns true while an ingestion run owns the document.
func (s DocumentStatus) IsInFlight() bool {
	switch s {
	case DocumentParsing, DocumentParsed, DocumentParsedOCR, DocumentChunked:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// SourceType says whether material came with an inquiry or from the knowledge base.
type SourceType string

// Source types.
const (
	SourceInquiry       SourceType = "INQUIRY"
	SourceKnowledgeBase SourceType = "KNOWLEDGE_BASE"
)

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	return t == SourceInquiry || t == SourceKnowledgeBase
}

// ChunkLevel is the position of a chunk in the chunk hierarchy.
type ChunkLevel string

// Chunk hierarchy levels.
const (
	ChunkFlat   ChunkLevel = "FLAT"
	ChunkParent ChunkLevel = "PARENT"
	ChunkChild  ChunkLevel = "CHILD"
)

// Document is an uploaded file and its ingestion state.
// Only the ingestion pipeline mutates Status and the counts.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// InquiryID links the document to an inquiry. Empty for knowledge-base material.
	InquiryID string

	// SourceType is derived from InquiryID at upload.
	SourceType SourceType

	// FileName is the original file name, used as a hint for extraction and enrichment.
	FileName string

	// MIMEType is the declared content type.
	MIMEType string

	// ContentRef locates the raw bytes in the content store.
	ContentRef string

	// Size is the raw content length in bytes.
	Size int64

	// Text is the extracted text once parsing succeeded.
	Text string

	// Status is the ingestion lifecycle state.
	Status DocumentStatus

	// OCRConfidence is set when text came from OCR.
	OCRConfidence *float64

	// ChunkCount is the number of chunks written by the last run.
	ChunkCount int

	// VectorCount is the number of vectors written by the last run.
	VectorCount int

	// LastError holds the failure message when Status is FAILED.
	LastError string

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the document last changed state.
	UpdatedAt time.Time
}

// Transition moves the document to next, or returns ErrIllegalTransition.
func (d *Document) Transition(next DocumentStatus, at time.Time) error {
	if !d.Status.CanTransitionTo(next) {
		return fmt.Errorf("document %s %s -> %s: %w", d.ID, d.Status, next, ErrIllegalTransition)
	}
	d.Status = next
	d.UpdatedAt = at
	return nil
}

// Fail moves the document to FAILED, recording msg and clearing the counts.
func (d *Document) Fail(msg string, at time.Time) {
	if msg == "" {
		msg = "unknown"
	}
	d.Status = DocumentFailed
	d.LastError = msg
	d.ChunkCount = 0
	d.VectorCount = 0
	d.UpdatedAt = at
}

// Chunk is a window of a document's text.
// Chunks are replaced wholesale when a document is re-chunked.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Index is the sequence number within the document, from 0.
	Index int

	// StartOffset and EndOffset bound the chunk in the source text (in runes, end exclusive).
	StartOffset int
	EndOffset   int

	// Content is the raw chunk text.
	Content string

	// ContextPrefix is the generated or inherited context summary.
	ContextPrefix string

	// EnrichedContent is ContextPrefix + "\n" + Content, or Content when there is no prefix.
	EnrichedContent string

	// Level is the hierarchy level.
	Level ChunkLevel

	// ParentChunkID is set for CHILD chunks only.
	ParentChunkID string

	// SourceType is copied from the owning document.
	SourceType SourceType
}

// EmbeddingText returns the text that should be vectorised for the chunk.
func (c *Chunk) EmbeddingText() string {
	if c.EnrichedContent != "" {
		return c.EnrichedContent
	}
	return c.Content
}

// Searchable reports whether the chunk gets a vector. PARENT chunks only carry context.
func (c *Chunk) Searchable() bool {
	return c.Level != ChunkParent
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	InquiryID string
	Status    DocumentStatus
	Limit     int
}
