// Package domain defines the core business entities for answerdesk.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document / Chunk: uploaded material and its searchable windows
//   - Inquiry: a customer question awaiting an answer
//   - RetrievalEvidence / VerificationResult: what retrieval found and what it means
//   - AnswerDraft: a versioned reply moving through review, approval and dispatch
//   - AIReviewResult / ApprovalDecision / SendAttempt: append-only audit rows
//
// Status enums carry their own transition tables so legality is decided
// here and nowhere else.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
