package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func TestClient_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		raw, err := base64.StdEncoding.DecodeString(req.Content)
		require.NoError(t, err)
		assert.Equal(t, "scan.pdf", req.FileName)
		assert.Equal(t, "application/pdf", req.MIMEType)
		assert.Equal(t, "%PDF", string(raw))
		_, _ = w.Write([]byte(`{"text":"recognised","confidence":1.7}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	out, err := c.Extract(context.Background(), &domain.RawFile{
		FileName: "scan.pdf", MIMEType: "application/pdf; charset=binary", Content: []byte("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, "recognised", out.Text)
	assert.Equal(t, 1.0, out.Confidence)
}

func TestClient_Extract_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model offline", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Extract(context.Background(), &domain.RawFile{Content: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrExternalService)
	assert.Contains(t, err.Error(), "model offline")
}

func TestClient_Extract_EmptyFile(t *testing.T) {
	_, err := NewClient("http://unused", 0).Extract(context.Background(), &domain.RawFile{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
