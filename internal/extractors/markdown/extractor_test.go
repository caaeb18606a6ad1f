package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func extract(t *testing.T, src string) string {
	t.Helper()
	out, err := New().Extract(context.Background(), &domain.RawFile{FileName: "guide.md", Content: []byte(src)})
	require.NoError(t, err)
	return out
}

func TestExtractor_Metadata(t *testing.T) {
	e := New()
	assert.Equal(t, "markdown", e.Name())
	assert.Equal(t, 50, e.Priority())
	assert.Contains(t, e.SupportedMIMETypes(), "text/markdown")
	assert.Contains(t, e.SupportedExtensions(), ".md")
}

func TestExtract_StripsFormatting(t *testing.T) {
	out := extract(t, "# Pump Manual\n\nSome **bold** and _italic_ text with a [link](https://example.com).\n")

	assert.Contains(t, out, "Pump Manual")
	assert.Contains(t, out, "Some bold and italic text with a link.")
	assert.NotContains(t, out, "#")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "https://example.com")
}

func TestExtract_KeepsCodeBlocks(t *testing.T) {
	out := extract(t, "Run:\n\n```sh\npumpctl reset --force\n```\n")
	assert.Contains(t, out, "pumpctl reset --force")
	assert.NotContains(t, out, "```")
}

func TestExtract_ListsAndImages(t *testing.T) {
	out := extract(t, "- first step\n- second step\n\n![diagram](d.png)\n")
	assert.Contains(t, out, "first step\nsecond step")
	assert.NotContains(t, out, "diagram")
}

func TestExtract_Table(t *testing.T) {
	out := extract(t, "| Model | Max PSI |\n|---|---|\n| P-100 | 120 |\n")
	assert.Contains(t, out, "P-100")
	assert.Contains(t, out, "120")
}

func TestExtract_EmptyAndNil(t *testing.T) {
	assert.Equal(t, "", extract(t, ""))

	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
