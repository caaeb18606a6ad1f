package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func TestExtractor_Metadata(t *testing.T) {
	e := New()
	assert.Equal(t, "pdf", e.Name())
	assert.Equal(t, 50, e.Priority())
	assert.Contains(t, e.SupportedMIMETypes(), "application/pdf")
	assert.Equal(t, []string{".pdf"}, e.SupportedExtensions())
}

func TestExtract_InvalidPDF(t *testing.T) {
	_, err := New().Extract(context.Background(), &domain.RawFile{
		FileName: "broken.pdf",
		Content:  []byte("%PDF-1.4 this is not really a pdf"),
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestExtract_Empty(t *testing.T) {
	_, err := New().Extract(context.Background(), &domain.RawFile{FileName: "empty.pdf"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestExtract_Nil(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
