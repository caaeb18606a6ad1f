package services

import (
	"math"
	"strings"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// Canned verdict reasons.
const (
	reasonNoEvidence        = "No supporting evidence was retrieved for this question."
	reasonPriorConditional  = "The question describes a conditional scenario; the answer depends on the customer's setup."
	reasonPriorNegative     = "The question references prohibited or contradicting usage."
	reasonPriorPositive     = "The question references supported or recommended usage."
	reasonStrongEvidence    = "Retrieved evidence strongly matches the question."
	reasonModerateEvidence  = "Retrieved evidence partially matches the question."
	reasonWeakEvidence      = "Retrieved evidence does not match the question closely enough."
	reasonConflictingSignal = "Retrieved evidence is inconsistent; manual verification is recommended."
)

// VerdictEngine fuses evidence scores and keyword polarity into a verdict.
// It is pure and safe for concurrent use.
type VerdictEngine struct {
	policy domain.VerdictPolicy
}

// NewVerdictEngine creates an engine with the given policy.
func NewVerdictEngine(policy domain.VerdictPolicy) *VerdictEngine {
	return &VerdictEngine{policy: normalisePolicy(policy)}
}

// Judgement is the verdict part of a verification.
type Judgement struct {
	Verdict    domain.Verdict
	Confidence float64
	Reason     string
	RiskFlags  []domain.RiskFlag
}

// Judge returns the verdict for question given its evidence.
func (e *VerdictEngine) Judge(question string, evidence []domain.EvidenceItem) Judgement {
	if len(evidence) == 0 {
		return Judgement{
			Verdict:    domain.VerdictConditional,
			Confidence: 0,
			Reason:     reasonNoEvidence,
			RiskFlags:  []domain.RiskFlag{domain.RiskInsufficientEvidence},
		}
	}

	var sum float64
	top, bottom := evidence[0].Score, evidence[0].Score
	for _, ev := range evidence {
		sum += ev.Score
		top = math.Max(top, ev.Score)
		bottom = math.Min(bottom, ev.Score)
	}
	avg := sum / float64(len(evidence))

	j := Judgement{Confidence: math.Round(avg*1000) / 1000}

	q := strings.ToLower(question)
	switch {
	case containsAny(q, e.policy.ConditionalHints):
		j.Verdict, j.Reason = domain.VerdictConditional, reasonPriorConditional
	case containsAny(q, e.policy.NegativeHints):
		j.Verdict, j.Reason = domain.VerdictRefuted, reasonPriorNegative
	case containsAny(q, e.policy.PositiveHints):
		j.Verdict, j.Reason = domain.VerdictSupported, reasonPriorPositive
	case avg >= e.policy.SupportedThreshold:
		j.Verdict, j.Reason = domain.VerdictSupported, reasonStrongEvidence
	case avg >= e.policy.ConditionalThreshold:
		j.Verdict, j.Reason = domain.VerdictConditional, reasonModerateEvidence
		j.RiskFlags = domain.AddRiskFlag(j.RiskFlags, domain.RiskLowConfidence)
	default:
		j.Verdict, j.Reason = domain.VerdictRefuted, reasonWeakEvidence
		j.RiskFlags = domain.AddRiskFlag(j.RiskFlags, domain.RiskWeakEvidenceMatch)
	}

	if top-bottom > e.policy.MaxScoreSpread || e.polarityConflict(q, evidence) {
		j.Verdict = domain.VerdictConditional
		j.Reason = reasonConflictingSignal
		j.RiskFlags = domain.AddRiskFlag(j.RiskFlags, domain.RiskConflictingEvidence)
	}

	return j
}

// polarityConflict reports whether the question's polarity disagrees with
// the evidence, or the evidence disagrees with itself.
func (e *VerdictEngine) polarityConflict(question string, evidence []domain.EvidenceItem) bool {
	qPos, qNeg := e.polarity(question)

	var evPos, evNeg int
	for _, ev := range evidence {
		p, n := e.polarity(strings.ToLower(ev.Excerpt))
		evPos += p
		evNeg += n
	}

	if evPos > 0 && evNeg > 0 {
		return true
	}
	qSign, evSign := sign(qPos-qNeg), sign(evPos-evNeg)
	return qSign != 0 && evSign != 0 && qSign != evSign
}

// polarity counts positive and negative terms in lower-cased text.
// Negative phrases are removed before counting positives so that
// "not supported" is not also counted as "supported".
func (e *VerdictEngine) polarity(text string) (pos, neg int) {
	for _, hint := range e.policy.NegativeHints {
		if n := strings.Count(text, hint); n > 0 {
			neg += n
			text = strings.ReplaceAll(text, hint, " ")
		}
	}
	for _, hint := range e.policy.PositiveHints {
		pos += strings.Count(text, hint)
	}
	return pos, neg
}

func containsAny(text string, hints []string) bool {
	for _, h := range hints {
		if h != "" && strings.Contains(text, h) {
			return true
		}
	}
	return false
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// normalisePolicy lower-cases hints and fills zero thresholds with defaults.
func normalisePolicy(p domain.VerdictPolicy) domain.VerdictPolicy {
	def := domain.DefaultVerdictPolicy()
	if p.SupportedThreshold <= 0 {
		p.SupportedThreshold = def.SupportedThreshold
	}
	if p.ConditionalThreshold <= 0 {
		p.ConditionalThreshold = def.ConditionalThreshold
	}
	if p.MaxScoreSpread <= 0 {
		p.MaxScoreSpread = def.MaxScoreSpread
	}
	if p.ConditionalHints == nil {
		p.ConditionalHints = def.ConditionalHints
	}
	if p.NegativeHints == nil {
		p.NegativeHints = def.NegativeHints
	}
	if p.PositiveHints == nil {
		p.PositiveHints = def.PositiveHints
	}
	p.ConditionalHints = lowerAll(p.ConditionalHints)
	p.NegativeHints = lowerAll(p.NegativeHints)
	p.PositiveHints = lowerAll(p.PositiveHints)
	return p
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
