package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to DocumentStatus
		want     bool
	}{
		{DocumentUploaded, DocumentParsing, true},
		{DocumentParsing, DocumentParsed, true},
		{DocumentParsing, DocumentParsedOCR, true},
		{DocumentParsed, DocumentChunked, true},
		{DocumentParsedOCR, DocumentChunked, true},
		{DocumentChunked, DocumentIndexed, true},
		{DocumentIndexed, DocumentParsing, true},
		{DocumentFailed, DocumentParsing, true},
		{DocumentChunked, DocumentFailed, true},
		{DocumentUploaded, DocumentIndexed, false},
		{DocumentParsed, DocumentIndexed, false},
		{DocumentIndexed, DocumentFailed, false},
		{DocumentIndexed, DocumentChunked, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestDocumentStatus_IsInFlight(t *testing.T) {
	assert.True(t, DocumentParsing.IsInFlight())
	assert.True(t, DocumentChunked.IsInFlight())
	assert.False(t, DocumentUploaded.IsInFlight())
	assert.False(t, DocumentIndexed.IsInFlight())
	assert.False(t, DocumentFailed.IsInFlight())
}

func TestDocument_Transition(t *testing.T) {
	doc := &Document{ID: "doc-1", Status: DocumentUploaded}
	now := time.Now()

	require.NoError(t, doc.Transition(DocumentParsing, now))
	assert.Equal(t, DocumentParsing, doc.Status)
	assert.Equal(t, now, doc.UpdatedAt)

	err := doc.Transition(DocumentIndexed, now)
	assert.True(t, errors.Is(err, ErrIllegalTransition))
	assert.Equal(t, DocumentParsing, doc.Status)
}

func TestDocument_Fail(t *testing.T) {
	doc := &Document{ID: "doc-1", Status: DocumentChunked, ChunkCount: 4, VectorCount: 2}

	doc.Fail("", time.Now())

	assert.Equal(t, DocumentFailed, doc.Status)
	assert.Equal(t, "unknown", doc.LastError)
	assert.Zero(t, doc.ChunkCount)
	assert.Zero(t, doc.VectorCount)

	doc.Fail("embedding timeout", time.Now())
	assert.Equal(t, "embedding timeout", doc.LastError)
}

func TestChunk_EmbeddingText(t *testing.T) {
	c := Chunk{Content: "raw"}
	assert.Equal(t, "raw", c.EmbeddingText())

	c.EnrichedContent = "ctx\nraw"
	assert.Equal(t, "ctx\nraw", c.EmbeddingText())
}

func TestChunk_Searchable(t *testing.T) {
	assert.True(t, (&Chunk{Level: ChunkFlat}).Searchable())
	assert.True(t, (&Chunk{Level: ChunkChild}).Searchable())
	assert.False(t, (&Chunk{Level: ChunkParent}).Searchable())
}
