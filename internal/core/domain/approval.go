package domain

import (
	"strings"
	"time"
)

// ApprovalOutcome is the result of an approval decision.
type ApprovalOutcome string

// Approval outcomes. HUMAN_APPROVED and HUMAN_REJECTED record manual decisions.
const (
	ApprovalAutoApproved  ApprovalOutcome = "AUTO_APPROVED"
	ApprovalEscalated     ApprovalOutcome = "ESCALATED"
	ApprovalRejected      ApprovalOutcome = "REJECTED"
	ApprovalHumanApproved ApprovalOutcome = "HUMAN_APPROVED"
	ApprovalHumanRejected ApprovalOutcome = "HUMAN_REJECTED"
)

// Gate names.
const (
	GateConfidence       = "confidence"
	GateReviewScore      = "reviewScore"
	GateNoCriticalIssues = "noCriticalIssues"
	GateNoHighRiskFlags  = "noHighRiskFlags"
)

// AIApproverName is the approver recorded for automated approvals.
const AIApproverName = "ai-approval-agent"

// Default approval thresholds.
const (
	DefaultMinConfidence  = 0.7
	DefaultMinReviewScore = 80
)

// ApprovalPolicy holds the thresholds the approval gates use.
type ApprovalPolicy struct {
	MinConfidence  float64
	MinReviewScore int
}

// DefaultApprovalPolicy returns the built-in approval thresholds.
func DefaultApprovalPolicy() ApprovalPolicy {
	return ApprovalPolicy{
		MinConfidence:  DefaultMinConfidence,
		MinReviewScore: DefaultMinReviewScore,
	}
}

// GateResult is the outcome of one named gate.
type GateResult struct {
	Name   string
	Passed bool
}

// ApprovalDecision is the evaluation of every gate against a draft and its review.
type ApprovalDecision struct {
	AnswerID  string
	Outcome   ApprovalOutcome
	Gates     []GateResult
	Reason    string
	DecidedAt time.Time
}

// FailedGates returns the names of gates that did not pass.
func (d *ApprovalDecision) FailedGates() []string {
	var failed []string
	for _, g := range d.Gates {
		if !g.Passed {
			failed = append(failed, g.Name)
		}
	}
	return failed
}

// FailedGatesString joins the failed gate names with commas.
func (d *ApprovalDecision) FailedGatesString() string {
	return strings.Join(d.FailedGates(), ", ")
}
