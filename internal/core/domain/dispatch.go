package domain

import "time"

// SendOutcome is the recorded result of one dispatch call.
type SendOutcome string

// Send outcomes.
const (
	SendSent             SendOutcome = "SENT"
	SendDuplicateBlocked SendOutcome = "DUPLICATE_BLOCKED"
	SendFailed           SendOutcome = "FAILED"
)

// SendAttempt is one append-only row per dispatch call.
type SendAttempt struct {
	ID            string
	InquiryID     string
	AnswerID      string
	SendRequestID string
	Outcome       SendOutcome
	Channel       Channel

	// Provider names the sender that handled the attempt.
	Provider  string
	MessageID string
	Detail    string
	CreatedAt time.Time
}

// SendCommand is what a sender needs to deliver a draft.
type SendCommand struct {
	AnswerID      string
	InquiryID     string
	SendRequestID string
	Channel       Channel
	Recipient     string
	RecipientName string
	Subject       string
	Body          string
}

// SendReceipt is what a sender reports after delivery.
type SendReceipt struct {
	Provider  string
	MessageID string
}

// SendResult is returned to dispatch callers.
type SendResult struct {
	AnswerID      string
	SendRequestID string
	Outcome       SendOutcome
	Provider      string
	MessageID     string
	Duplicate     bool
}
