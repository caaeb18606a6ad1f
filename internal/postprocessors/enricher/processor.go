// Package enricher provides the ContextEnricher post-processor.
//
// Each chunk gets a short generated summary that situates it in its
// document. With a parent/child chunk set only parents are sent to the
// LLM and children inherit their parent's prefix. Enrichment never fails:
// without an LLM, or when a call errors, the chunk keeps its raw content.
package enricher

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// MaxDocumentChars is how much of the document is sent with each request.
const MaxDocumentChars = 6000

// DefaultPrompt is used when no PromptStore is set or it fails.
// Placeholders: file name, document, chunk.
const DefaultPrompt = `<document name="%s">
%s
</document>
Here is the chunk we want to situate within the whole document:
<chunk>
%s
</chunk>
Write 1-2 sentences that name the file, the section and the topic of this chunk,
to improve search retrieval of the chunk. Answer only with the context and nothing else.`

// Processor enriches chunks with a context prefix.
// It implements the PostProcessor interface.
type Processor struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// New creates an enricher. llm may be nil.
func New(llm driven.LLMService, prompts driven.PromptStore) *Processor {
	return &Processor{llm: llm, prompts: prompts}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "enricher"
}

// Process enriches chunks in place and returns them. It never returns an error.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	document := truncate(doc.Text, MaxDocumentChars)
	hierarchical := false
	for i := range chunks {
		if chunks[i].Level == domain.ChunkParent {
			hierarchical = true
			break
		}
	}

	if !hierarchical {
		for i := range chunks {
			apply(&chunks[i], p.generate(ctx, doc.FileName, document, chunks[i].Content))
		}
		return chunks, nil
	}

	prefixes := make(map[string]string)
	for i := range chunks {
		if chunks[i].Level != domain.ChunkParent {
			continue
		}
		prefix := p.generate(ctx, doc.FileName, document, chunks[i].Content)
		prefixes[chunks[i].ID] = prefix
		apply(&chunks[i], prefix)
	}
	for i := range chunks {
		if chunks[i].Level == domain.ChunkParent {
			continue
		}
		apply(&chunks[i], prefixes[chunks[i].ParentChunkID])
	}
	return chunks, nil
}

// generate returns the context prefix for chunk, or "" on any failure.
func (p *Processor) generate(ctx context.Context, fileName, document, chunk string) string {
	if p.llm == nil {
		return ""
	}

	prompt := fmt.Sprintf(p.template(), fileName, document, chunk)
	out, err := p.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 150, Temperature: 0.1})
	if err != nil {
		logger.Warn("context enrichment failed for %s: %v", fileName, err)
		return ""
	}
	return strings.TrimSpace(out)
}

// template returns the stored prompt if it takes exactly the three %s
// arguments and no other verb, and DefaultPrompt otherwise.
func (p *Processor) template() string {
	if p.prompts == nil {
		return DefaultPrompt
	}
	tmpl, err := p.prompts.Load(driven.PromptContextEnrichment)
	if err != nil {
		return DefaultPrompt
	}
	if n, err := domain.PromptVerbs(tmpl); err != nil || n != 3 {
		logger.Warn("context enrichment prompt rejected, using default: %d placeholders, %v", n, err)
		return DefaultPrompt
	}
	return tmpl
}

// apply sets prefix and enriched content. An empty prefix is identity.
func apply(c *domain.Chunk, prefix string) {
	c.ContextPrefix = prefix
	if prefix == "" {
		c.EnrichedContent = c.Content
		return
	}
	c.EnrichedContent = prefix + "\n" + c.Content
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
