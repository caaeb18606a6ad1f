package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates the request collides with the current state of an entity.
	ErrConflict = errors.New("conflict")

	// ErrIndexingInProgress indicates a document is already mid-ingestion.
	ErrIndexingInProgress = errors.New("indexing in progress")

	// ErrIllegalTransition indicates a status change the state machine forbids.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrNotApproved indicates dispatch was requested for a draft that is not APPROVED.
	ErrNotApproved = errors.New("answer not approved")

	// ErrNotImplemented indicates functionality is not available in this configuration.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedFormat indicates no extractor handles a document's format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrUnsupportedChannel indicates no sender is registered for a channel.
	ErrUnsupportedChannel = errors.New("unsupported channel")

	// ErrExternalService indicates a collaborator (embedding, vector index,
	// reviewer, OCR, mail transport) failed.
	ErrExternalService = errors.New("external service failure")

	// ErrDeliveryFailed indicates dispatch failed after all retries.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)

// ErrorKind classifies an error for callers.
type ErrorKind string

// Error kinds reported to CLI and MCP callers.
const (
	KindInvalidInput    ErrorKind = "invalid_input"
	KindNotFound        ErrorKind = "not_found"
	KindConflict        ErrorKind = "conflict"
	KindExternalService ErrorKind = "external_service"
	KindInternal        ErrorKind = "internal"
)

// KindOf maps err onto the error taxonomy. A nil error has no kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrUnsupportedChannel):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrIndexingInProgress),
		errors.Is(err, ErrIllegalTransition),
		errors.Is(err, ErrNotApproved):
		return KindConflict
	case errors.Is(err, ErrExternalService),
		errors.Is(err, ErrDeliveryFailed),
		errors.Is(err, ErrLLMUnavailable),
		errors.Is(err, ErrEmbeddingUnavailable),
		errors.Is(err, ErrVectorIndexUnavailable):
		return KindExternalService
	default:
		return KindInternal
	}
}
