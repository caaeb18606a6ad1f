package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		assert.Equal(t, 1000, p.chunkSize)
		assert.Equal(t, 150, p.overlap)
		assert.False(t, p.hierarchical)
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		assert.Less(t, p.overlap, p.chunkSize)
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		assert.Equal(t, DefaultChunkSize, p.chunkSize)
		assert.Equal(t, DefaultChunkOverlap, p.overlap)
	})

	t.Run("parent smaller than chunk is widened", func(t *testing.T) {
		p := New(WithChunkSize(500), WithHierarchy(100))
		assert.True(t, p.hierarchical)
		assert.Equal(t, 500, p.parentSize)
	})
}

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "chunker", New().Name())
}

func TestSplit_ChunkCounts(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 1},
		{999, 1},
		{1000, 1},
		{1001, 2},
		{1850, 2},
		{1851, 3},
		{2700, 3},
		{10000, 12},
	}
	for _, tt := range tests {
		spans := Split(tt.n, 1000, 150)
		assert.Len(t, spans, tt.want, "n=%d", tt.n)
	}
}

func TestSplit_CoverageAndOverlap(t *testing.T) {
	for _, n := range []int{1, 500, 1000, 1001, 2345, 7777} {
		spans := Split(n, 1000, 150)
		require.NotEmpty(t, spans)

		assert.Equal(t, 0, spans[0].Start, "n=%d", n)
		assert.Equal(t, n, spans[len(spans)-1].End, "n=%d", n)
		for i := 1; i < len(spans); i++ {
			assert.Equal(t, 150, spans[i-1].End-spans[i].Start, "n=%d i=%d", n, i)
			assert.Equal(t, 1000, spans[i-1].End-spans[i-1].Start, "n=%d i=%d", n, i)
		}
	}
}

func TestProcess_EmptyText(t *testing.T) {
	chunks, err := New().Process(context.Background(), &domain.Document{ID: "d"}, nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestProcess_Flat(t *testing.T) {
	text := strings.Repeat("abcdefghij", 200)
	doc := &domain.Document{ID: "doc-1", Text: text, SourceType: domain.SourceKnowledgeBase}

	chunks, err := New().Process(context.Background(), doc, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "doc-1", c.DocumentID)
		assert.Equal(t, domain.ChunkFlat, c.Level)
		assert.Equal(t, domain.SourceKnowledgeBase, c.SourceType)
		assert.Empty(t, c.ParentChunkID)
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, text[c.StartOffset:c.EndOffset], c.Content)
	}
	assert.Equal(t, 850, chunks[1].StartOffset)
	assert.Equal(t, 2000, chunks[2].EndOffset)
}

func TestProcess_MultibyteOffsetsAreRunes(t *testing.T) {
	text := strings.Repeat("é", 1200)
	chunks, err := New().Process(context.Background(), &domain.Document{Text: text}, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1000, len([]rune(chunks[0].Content)))
	assert.Equal(t, 350, len([]rune(chunks[1].Content)))
}

func TestProcess_Hierarchical(t *testing.T) {
	text := strings.Repeat("x", 2500)
	p := New(WithHierarchy(2000))

	chunks, err := p.Process(context.Background(), &domain.Document{ID: "d", Text: text}, nil)
	require.NoError(t, err)

	var parents, children []domain.Chunk
	for _, c := range chunks {
		switch c.Level {
		case domain.ChunkParent:
			parents = append(parents, c)
		case domain.ChunkChild:
			children = append(children, c)
		}
	}
	require.Len(t, parents, 2)
	assert.Equal(t, 0, parents[0].StartOffset)
	assert.Equal(t, 2000, parents[0].EndOffset)
	assert.Equal(t, 2500, parents[1].EndOffset)

	// 2000 chars -> 3 children, 500 chars -> 1 child
	require.Len(t, children, 4)
	for _, c := range children[:3] {
		assert.Equal(t, parents[0].ID, c.ParentChunkID)
	}
	assert.Equal(t, parents[1].ID, children[3].ParentChunkID)
	assert.Equal(t, 2000, children[3].StartOffset)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestProcess_UniqueIDsAcrossRuns(t *testing.T) {
	doc := &domain.Document{ID: "d", Text: "hello world"}
	first, err := New().Process(context.Background(), doc, nil)
	require.NoError(t, err)
	second, err := New().Process(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first[0].ID, second[0].ID)
}
