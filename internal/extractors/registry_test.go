package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

type stubExtractor struct {
	name       string
	mimeTypes  []string
	extensions []string
	priority   int
	err        error
}

func (s *stubExtractor) Name() string                  { return s.name }
func (s *stubExtractor) SupportedMIMETypes() []string  { return s.mimeTypes }
func (s *stubExtractor) SupportedExtensions() []string { return s.extensions }
func (s *stubExtractor) Priority() int                 { return s.priority }

func (s *stubExtractor) Extract(_ context.Context, _ *domain.RawFile) (string, error) {
	return s.name, s.err
}

func TestRegistry_SelectsByMIMEThenExtensionThenFallback(t *testing.T) {
	r := NewRegistry(
		&stubExtractor{name: "fallback", mimeTypes: []string{"text/plain"}, priority: 5},
		&stubExtractor{name: "pdf", mimeTypes: []string{"application/pdf"}, extensions: []string{".pdf"}, priority: 50},
		&stubExtractor{name: "special-pdf", mimeTypes: []string{"application/pdf"}, priority: 80},
	)
	ctx := context.Background()

	tests := []struct {
		name string
		file domain.RawFile
		want string
	}{
		{"mime with highest priority", domain.RawFile{FileName: "a.bin", MIMEType: "application/pdf; charset=binary"}, "special-pdf"},
		{"extension when mime unknown", domain.RawFile{FileName: "Manual.PDF", MIMEType: "application/octet-stream"}, "pdf"},
		{"extension when mime empty", domain.RawFile{FileName: "manual.pdf"}, "pdf"},
		{"fallback", domain.RawFile{FileName: "notes.weird", MIMEType: "application/x-weird"}, "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Extract(ctx, &tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_NoFallback(t *testing.T) {
	r := NewRegistry(&stubExtractor{name: "pdf", mimeTypes: []string{"application/pdf"}, priority: 50})

	_, err := r.Extract(context.Background(), &domain.RawFile{FileName: "scan.png", MIMEType: "image/png"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = r.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_WrapsExtractorError(t *testing.T) {
	r := NewRegistry(&stubExtractor{name: "broken", mimeTypes: []string{"text/plain"}, priority: 5, err: domain.ErrUnsupportedFormat})

	_, err := r.Extract(context.Background(), &domain.RawFile{FileName: "x.txt", MIMEType: "text/plain"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "broken")
}

func TestRegistry_RegisterIgnoresNil(t *testing.T) {
	r := NewRegistry(nil)
	assert.Empty(t, r.SupportedMIMETypes())
}

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	types := r.SupportedMIMETypes()

	for _, mt := range []string{"text/plain", "text/markdown", "text/html", "application/pdf", "message/rfc822"} {
		assert.Contains(t, types, mt)
	}
	assert.IsIncreasing(t, types)

	ctx := context.Background()

	out, err := r.Extract(ctx, &domain.RawFile{FileName: "faq.md", Content: []byte("# FAQ\n\nUse **gloves**.")})
	require.NoError(t, err)
	assert.Equal(t, "FAQ\nUse gloves.", out)

	out, err = r.Extract(ctx, &domain.RawFile{FileName: "readme", Content: []byte("plain words")})
	require.NoError(t, err)
	assert.Equal(t, "plain words", out)

	_, err = r.Extract(ctx, &domain.RawFile{FileName: "scan.png", MIMEType: "image/png", Content: []byte{0x89, 'P', 'N', 'G', 0x00}})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
