// Package mcp provides an MCP (Model Context Protocol) server adapter for answerdesk.
// It lets AI assistants ingest documents, verify questions against the
// knowledge base and drive answer drafts through review, approval and dispatch.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// Errors returned when required ports are missing.
var (
	ErrMissingDocumentService     = errors.New("mcp: document service is required")
	ErrMissingVerificationService = errors.New("mcp: verification service is required")
	ErrMissingAnswerService       = errors.New("mcp: answer service is required")
	errDispatchDisabled           = errors.New("dispatch is not configured")
	errIngestionDisabled          = errors.New("ingestion is not configured")
)

// toolError prefixes err with its kind so callers can branch on it.
func toolError(op string, err error) error {
	return fmt.Errorf("%s: %s: %w", domain.KindOf(err), op, err)
}
