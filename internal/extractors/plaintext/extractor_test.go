package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func TestExtractor_Metadata(t *testing.T) {
	e := New()
	assert.Equal(t, "plaintext", e.Name())
	assert.Equal(t, 5, e.Priority())
	assert.Contains(t, e.SupportedMIMETypes(), "text/plain")
	assert.Contains(t, e.SupportedExtensions(), ".txt")
}

func TestExtract_ReturnsContent(t *testing.T) {
	text, err := New().Extract(context.Background(), &domain.RawFile{
		FileName: "notes.txt",
		Content:  []byte("Torque the M8 bolts to 25 Nm."),
	})
	require.NoError(t, err)
	assert.Equal(t, "Torque the M8 bolts to 25 Nm.", text)
}

func TestExtract_StripsBOM(t *testing.T) {
	text, err := New().Extract(context.Background(), &domain.RawFile{
		Content: append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestExtract_Errors(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Extract(context.Background(), &domain.RawFile{Content: []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestLooksLikeText(t *testing.T) {
	assert.True(t, LooksLikeText([]byte("plain ascii")))
	assert.True(t, LooksLikeText([]byte("Grüße")))
	assert.True(t, LooksLikeText(nil))
	assert.False(t, LooksLikeText([]byte{'a', 0x00, 'b'}))
	assert.False(t, LooksLikeText([]byte{0xff, 0xfe, 0xfd}))
}
