package domain

import (
	"fmt"
	"time"
)

// AnswerStatus is the lifecycle state of an answer draft.
type AnswerStatus string

// Answer lifecycle states.
const (
	AnswerDraftStatus AnswerStatus = "DRAFT"
	AnswerReviewed    AnswerStatus = "REVIEWED"
	AnswerApproved    AnswerStatus = "APPROVED"
	AnswerSent        AnswerStatus = "SENT"
)

// answerTransitions lists the legal next states for each state.
// REVIEWED -> REVIEWED covers a repeated review; -> DRAFT is a rejection.
var answerTransitions = map[AnswerStatus][]AnswerStatus{
	AnswerDraftStatus: {AnswerReviewed},
	AnswerReviewed:    {AnswerReviewed, AnswerApproved, AnswerDraftStatus},
	AnswerApproved:    {AnswerSent, AnswerDraftStatus},
	AnswerSent:        nil,
}

// IsValid returns true if the status is recognised.
func (s AnswerStatus) IsValid() bool {
	_, ok := answerTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s AnswerStatus) CanTransitionTo(next AnswerStatus) bool {
	for _, allowed := range answerTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (s AnswerStatus) String() string {
	return string(s)
}

// Tone selects the wording of a draft.
type Tone string

// Tones.
const (
	ToneBrief        Tone = "brief"
	ToneTechnical    Tone = "technical"
	ToneProfessional Tone = "professional"
)

// ParseTone returns the tone named s, defaulting to professional.
func ParseTone(s string) Tone {
	switch Tone(s) {
	case ToneBrief, ToneTechnical:
		return Tone(s)
	default:
		return ToneProfessional
	}
}

// Channel is the delivery channel of a reply.
type Channel string

// Channels.
const (
	ChannelEmail     Channel = "email"
	ChannelMessenger Channel = "messenger"
)

// ParseChannel returns the channel named s, defaulting to email.
// Unknown non-empty names are kept so a registered sender can claim them.
func ParseChannel(s string) Channel {
	if s == "" {
		return ChannelEmail
	}
	return Channel(s)
}

// String returns the string representation.
func (c Channel) String() string {
	return string(c)
}

// AnswerDraft is one version of a reply to an inquiry.
// Old versions are kept when a new one supersedes them.
type AnswerDraft struct {
	ID        string
	InquiryID string

	// Version increases by one per inquiry, starting at 1.
	Version int

	Question   string
	Verdict    Verdict
	Confidence float64
	Reason     string
	Tone       Tone
	Channel    Channel
	Status     AnswerStatus
	Text       string
	Citations  []string
	RiskFlags  []RiskFlag

	// Review fields reflect the most recent review.
	ReviewScore    *int
	ReviewDecision ReviewDecision
	ReviewedBy     string
	ReviewComment  string
	ReviewedAt     *time.Time

	// Approval fields reflect the most recent approval decision.
	ApprovalDecision ApprovalOutcome
	ApprovedBy       string
	ApprovalComment  string
	ApprovedAt       *time.Time

	// Send fields are set once the draft is SENT.
	SentBy        string
	SentChannel   Channel
	MessageID     string
	SendRequestID string
	SentAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transition moves the draft to next, or returns ErrIllegalTransition.
func (a *AnswerDraft) Transition(next AnswerStatus, at time.Time) error {
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("answer %s %s -> %s: %w", a.ID, a.Status, next, ErrIllegalTransition)
	}
	a.Status = next
	a.UpdatedAt = at
	return nil
}

// HasRiskFlag reports whether flag is set on the draft.
func (a *AnswerDraft) HasRiskFlag(flag RiskFlag) bool {
	for _, f := range a.RiskFlags {
		if f == flag {
			return true
		}
	}
	return false
}
