package services

import (
	"time"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// ApprovalGate evaluates the fixed quality gates against a draft and its
// latest review. Evaluation is pure; applying the outcome is the answer
// service's job.
type ApprovalGate struct {
	policy domain.ApprovalPolicy
	now    func() time.Time
}

// NewApprovalGate creates a gate with the given thresholds.
func NewApprovalGate(policy domain.ApprovalPolicy) *ApprovalGate {
	if policy.MinConfidence <= 0 {
		policy.MinConfidence = domain.DefaultMinConfidence
	}
	if policy.MinReviewScore <= 0 {
		policy.MinReviewScore = domain.DefaultMinReviewScore
	}
	return &ApprovalGate{policy: policy, now: time.Now}
}

// Evaluate decides AUTO_APPROVED, ESCALATED or REJECTED.
// A CRITICAL issue rejects regardless of every other gate.
func (g *ApprovalGate) Evaluate(draft *domain.AnswerDraft, review *domain.AIReviewResult) domain.ApprovalDecision {
	critical := review.HasCritical()

	highRisk := false
	for _, flag := range domain.HighRiskFlags() {
		if draft.HasRiskFlag(flag) {
			highRisk = true
			break
		}
	}

	d := domain.ApprovalDecision{
		AnswerID: draft.ID,
		Gates: []domain.GateResult{
			{Name: domain.GateConfidence, Passed: draft.Confidence >= g.policy.MinConfidence},
			{Name: domain.GateReviewScore, Passed: review.Score >= g.policy.MinReviewScore},
			{Name: domain.GateNoCriticalIssues, Passed: !critical},
			{Name: domain.GateNoHighRiskFlags, Passed: !highRisk},
		},
		DecidedAt: g.now(),
	}

	switch failed := d.FailedGates(); {
	case critical:
		d.Outcome = domain.ApprovalRejected
		d.Reason = "review reported a critical issue"
	case len(failed) == 0:
		d.Outcome = domain.ApprovalAutoApproved
		d.Reason = "all gates passed"
	default:
		d.Outcome = domain.ApprovalEscalated
		d.Reason = "failed gates: " + d.FailedGatesString()
	}
	return d
}
