// Package chunker provides the sliding-window ChunkSplitter.
package chunker

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of characters shared by consecutive chunks.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultParentSize is the default parent window size in hierarchical mode.
const DefaultParentSize = domain.DefaultParentChunkSize

// Span is a [Start, End) window over a text in runes.
type Span struct {
	Start int
	End   int
}

// Processor splits document text into overlapping fixed-size windows.
// In hierarchical mode it first cuts PARENT windows, then CHILD windows inside each parent.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize    int
	overlap      int
	hierarchical bool
	parentSize   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithHierarchy enables parent/child chunking with the given parent window size.
func WithHierarchy(parentSize int) Option {
	return func(p *Processor) {
		p.hierarchical = true
		if parentSize > 0 {
			p.parentSize = parentSize
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		parentSize: DefaultParentSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must leave the window room to advance.
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}
	if p.parentSize < p.chunkSize {
		p.parentSize = p.chunkSize
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits doc.Text into chunks. Input chunks are ignored.
// Empty text produces no chunks.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	text := []rune(doc.Text)
	if len(text) == 0 {
		return nil, nil
	}

	if !p.hierarchical {
		spans := Split(len(text), p.chunkSize, p.overlap)
		chunks := make([]domain.Chunk, 0, len(spans))
		for i, s := range spans {
			chunks = append(chunks, newChunk(doc, i, s, text, domain.ChunkFlat, ""))
		}
		return chunks, nil
	}

	var chunks []domain.Chunk
	for _, ps := range Split(len(text), p.parentSize, 0) {
		parent := newChunk(doc, len(chunks), ps, text, domain.ChunkParent, "")
		chunks = append(chunks, parent)
		for _, cs := range Split(ps.End-ps.Start, p.chunkSize, p.overlap) {
			abs := Span{Start: ps.Start + cs.Start, End: ps.Start + cs.End}
			chunks = append(chunks, newChunk(doc, len(chunks), abs, text, domain.ChunkChild, parent.ID))
		}
	}
	return chunks, nil
}

// Split returns the sliding windows over a text of length n.
// Window i+1 starts at max(0, end_i - overlap); the last window ends at n.
func Split(n, size, overlap int) []Span {
	if n <= 0 || size <= 0 {
		return nil
	}
	if overlap >= size {
		overlap = 0
	}

	spans := make([]Span, 0, n/(size-overlap)+1)
	start := 0
	for {
		end := start + size
		if end > n {
			end = n
		}
		spans = append(spans, Span{Start: start, End: end})
		if end == n {
			return spans
		}
		start = max(0, end-overlap)
	}
}

func newChunk(doc *domain.Document, index int, s Span, text []rune, level domain.ChunkLevel, parentID string) domain.Chunk {
	return domain.Chunk{
		ID:            uuid.New().String(),
		DocumentID:    doc.ID,
		Index:         index,
		StartOffset:   s.Start,
		EndOffset:     s.End,
		Content:       string(text[s.Start:s.End]),
		Level:         level,
		ParentChunkID: parentID,
		SourceType:    doc.SourceType,
	}
}
