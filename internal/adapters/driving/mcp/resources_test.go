package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func readReq(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestTrimURI(t *testing.T) {
	assert.Equal(t, "d1", trimURI("answerdesk://documents/d1", "documents/", ""))
	assert.Equal(t, "i1", trimURI("answerdesk://inquiries/i1/answers", "inquiries/", "/answers"))
	assert.Empty(t, trimURI("answerdesk://inquiries/i1", "inquiries/", "/answers"))
	assert.Empty(t, trimURI("other://documents/d1", "documents/", ""))
	assert.Empty(t, trimURI("answerdesk://documents/", "documents/", ""))
}

func TestServer_handleInquiriesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("empty without inquiry service", func(t *testing.T) {
		server := newTestServer(t, requiredPorts())
		res, err := server.handleInquiriesResource(ctx, readReq("answerdesk://inquiries"))
		require.NoError(t, err)
		assert.Equal(t, "[]", res.Contents[0].Text)
	})

	t.Run("lists inquiries", func(t *testing.T) {
		p := requiredPorts()
		p.Inquiry = &mockInquiryService{inquiries: []domain.Inquiry{
			{ID: "i1", CustomerName: "Ana", Subject: "pump", Channel: domain.ChannelEmail, CreatedAt: time.Now()},
		}}
		server := newTestServer(t, p)

		res, err := server.handleInquiriesResource(ctx, readReq("answerdesk://inquiries"))
		require.NoError(t, err)
		assert.Contains(t, res.Contents[0].Text, `"customer": "Ana"`)
	})
}

func TestServer_handleDocumentTextResource(t *testing.T) {
	p := requiredPorts()
	p.Document = &mockDocumentService{document: &domain.Document{ID: "d1", Text: "extracted text"}}
	server := newTestServer(t, p)

	res, err := server.handleDocumentTextResource(context.Background(), readReq("answerdesk://documents/d1"))
	require.NoError(t, err)
	assert.Equal(t, "extracted text", res.Contents[0].Text)

	_, err = server.handleDocumentTextResource(context.Background(), readReq("answerdesk://documents/"))
	assert.Error(t, err)
}

func TestServer_handleInquiryAnswersResource(t *testing.T) {
	p := requiredPorts()
	p.Answer = &mockAnswerService{answers: []domain.AnswerDraft{
		{ID: "a2", Version: 2}, {ID: "a1", Version: 1},
	}}
	server := newTestServer(t, p)

	res, err := server.handleInquiryAnswersResource(context.Background(), readReq("answerdesk://inquiries/i1/answers"))
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"id": "a2"`)
}
