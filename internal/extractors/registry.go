package extractors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/extractors/docx"
	"github.com/custodia-labs/answerdesk/internal/extractors/eml"
	"github.com/custodia-labs/answerdesk/internal/extractors/html"
	"github.com/custodia-labs/answerdesk/internal/extractors/markdown"
	"github.com/custodia-labs/answerdesk/internal/extractors/pdf"
	"github.com/custodia-labs/answerdesk/internal/extractors/plaintext"
	"github.com/custodia-labs/answerdesk/internal/extractors/xlsx"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// fallbackPriority is the ceiling for extractors used when nothing else matches.
const fallbackPriority = 10

// Registry holds extractors ordered by priority.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.TextExtractor
}

// NewRegistry creates a registry with the given extractors.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	r := &Registry{}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// NewDefaultRegistry creates a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
		pdf.New(),
		xlsx.New(),
		eml.New(),
	)
}

// Register adds an extractor.
func (r *Registry) Register(extractor driven.TextExtractor) {
	if extractor == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, extractor)
	sort.SliceStable(r.extractors, func(i, j int) bool {
		return r.extractors[i].Priority() > r.extractors[j].Priority()
	})
}

// Extract runs the best matching extractor for file.
func (r *Registry) Extract(ctx context.Context, file *domain.RawFile) (string, error) {
	if file == nil {
		return "", domain.ErrInvalidInput
	}

	extractor := r.selectFor(file)
	if extractor == nil {
		return "", fmt.Errorf("extract %s: %w", file.FileName, domain.ErrUnsupportedFormat)
	}

	logger.Debug("extracting %s (%s) with %s", file.FileName, file.BaseMIMEType(), extractor.Name())
	text, err := extractor.Extract(ctx, file)
	if err != nil {
		return "", fmt.Errorf("extract %s with %s: %w", file.FileName, extractor.Name(), err)
	}
	return text, nil
}

// SupportedMIMETypes returns all MIME types that can be extracted, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var types []string
	for _, e := range r.extractors {
		for _, mt := range e.SupportedMIMETypes() {
			if !seen[mt] {
				seen[mt] = true
				types = append(types, mt)
			}
		}
	}
	sort.Strings(types)
	return types
}

// selectFor picks by MIME type, then extension, then fallback.
func (r *Registry) selectFor(file *domain.RawFile) driven.TextExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if mt := file.BaseMIMEType(); mt != "" {
		for _, e := range r.extractors {
			if contains(e.SupportedMIMETypes(), mt) {
				return e
			}
		}
	}
	if ext := file.Extension(); ext != "" {
		for _, e := range r.extractors {
			if contains(e.SupportedExtensions(), ext) {
				return e
			}
		}
	}
	for _, e := range r.extractors {
		if e.Priority() < fallbackPriority {
			return e
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
