package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func TestContentStore_PutGetDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewContentStore(filepath.Join(dir, "content"))
	require.NoError(t, err)
	ctx := context.Background()

	ref, size, err := store.Put(ctx, "Manual.PDF", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)
	assert.True(t, strings.HasSuffix(ref, ".pdf"))

	data, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "content"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.Get(ctx, ref)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, ref), "deleting twice is fine")
}

func TestContentStore_RejectsEscapingRefs(t *testing.T) {
	store, err := NewContentStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, ref := range []string{"", "../config.toml", "a/b", ".upload-123"} {
		_, err := store.Get(ctx, ref)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, ref)
		assert.ErrorIs(t, store.Delete(ctx, ref), domain.ErrInvalidInput, ref)
	}
}

func TestNewContentStore_MkdirError(t *testing.T) {
	_, err := NewContentStore("/dev/null/content")
	assert.Error(t, err)
}
