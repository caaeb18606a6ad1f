package domain

import "time"

// EventType names a notification emitted by the core.
type EventType string

// Event types.
const (
	EventDocumentStatus  EventType = "document.status"
	EventAnswerCreated   EventType = "answer.created"
	EventAnswerReviewed  EventType = "answer.reviewed"
	EventAnswerApproval  EventType = "answer.approval"
	EventAnswerSent      EventType = "answer.sent"
	EventAnswerSendError EventType = "answer.send_failed"
)

// Event is a fire-and-forget notification about an inquiry.
type Event struct {
	Type      EventType         `json:"type"`
	InquiryID string            `json:"inquiryId,omitempty"`
	SubjectID string            `json:"subjectId"`
	Data      map[string]string `json:"data,omitempty"`
	At        time.Time         `json:"at"`
}
