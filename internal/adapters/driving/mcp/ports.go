package mcp

import (
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	Document     driving.DocumentService
	Verification driving.VerificationService
	Answer       driving.AnswerService

	// Optional. Without them the matching tools report an error.
	Ingestion driving.IngestionService
	Dispatch  driving.DispatchService
	Inquiry   driving.InquiryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Document == nil:
		return ErrMissingDocumentService
	case p.Verification == nil:
		return ErrMissingVerificationService
	case p.Answer == nil:
		return ErrMissingAnswerService
	}
	return nil
}
