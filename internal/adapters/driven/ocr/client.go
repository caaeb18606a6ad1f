// Package ocr calls an external OCR service over HTTP.
//
// The service accepts POST {endpoint} with
//
//	{"fileName": "...", "mimeType": "...", "content": "<base64>"}
//
// and answers {"text": "...", "confidence": 0.0-1.0}.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// DefaultTimeout bounds one OCR call.
const DefaultTimeout = time.Duration(domain.DefaultOCRTimeout) * time.Second

var _ driven.OCRService = (*Client)(nil)

// Client talks to the OCR endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for endpoint. A non-positive timeout uses DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type request struct {
	FileName string `json:"fileName"`
	MIMEType string `json:"mimeType"`
	Content  string `json:"content"`
}

type response struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence"`
}

// Extract sends the file and returns the recognised text.
// A missing confidence is reported as 0.
func (c *Client) Extract(ctx context.Context, file *domain.RawFile) (driven.OCRResult, error) {
	if file == nil || len(file.Content) == 0 {
		return driven.OCRResult{}, fmt.Errorf("ocr: empty file: %w", domain.ErrInvalidInput)
	}

	body, err := json.Marshal(request{
		FileName: file.FileName,
		MIMEType: file.BaseMIMEType(),
		Content:  base64.StdEncoding.EncodeToString(file.Content),
	})
	if err != nil {
		return driven.OCRResult{}, fmt.Errorf("ocr: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return driven.OCRResult{}, fmt.Errorf("ocr: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return driven.OCRResult{}, fmt.Errorf("ocr: do request: %w: %w", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return driven.OCRResult{}, fmt.Errorf("ocr: unexpected status %s: %s: %w",
			resp.Status, bytes.TrimSpace(msg), domain.ErrExternalService)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return driven.OCRResult{}, fmt.Errorf("ocr: decode response: %w: %w", domain.ErrExternalService, err)
	}

	result := driven.OCRResult{Text: out.Text}
	if out.Confidence != nil {
		result.Confidence = min(max(*out.Confidence, 0), 1)
	}
	return result, nil
}
