// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The answer lifecycle runs Compose, Review, Approve and Send across
// AnswerService, ReviewGate, ApprovalGate and DispatchService. Status
// changes go through domain transition tables only.
package services
