package domain

import "time"

// Verdict is the judgment of whether evidence supports a question's claim.
type Verdict string

// Verdicts.
const (
	VerdictSupported   Verdict = "SUPPORTED"
	VerdictConditional Verdict = "CONDITIONAL"
	VerdictRefuted     Verdict = "REFUTED"
)

// IsValid returns true if the verdict is recognised.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictSupported, VerdictConditional, VerdictRefuted:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (v Verdict) String() string {
	return string(v)
}

// RiskFlag marks a reason to be careful with a verdict or draft.
type RiskFlag string

// Risk flags.
const (
	RiskInsufficientEvidence RiskFlag = "INSUFFICIENT_EVIDENCE"
	RiskLowConfidence        RiskFlag = "LOW_CONFIDENCE"
	RiskWeakEvidenceMatch    RiskFlag = "WEAK_EVIDENCE_MATCH"
	RiskConflictingEvidence  RiskFlag = "CONFLICTING_EVIDENCE"
	RiskSafetyConcern        RiskFlag = "SAFETY_CONCERN"
	RiskRegulatoryRisk       RiskFlag = "REGULATORY_RISK"
)

// HighRiskFlags block automated approval.
func HighRiskFlags() []RiskFlag {
	return []RiskFlag{RiskSafetyConcern, RiskRegulatoryRisk, RiskConflictingEvidence}
}

// AddRiskFlag appends flag unless it is already present.
func AddRiskFlag(flags []RiskFlag, flag RiskFlag) []RiskFlag {
	for _, f := range flags {
		if f == flag {
			return flags
		}
	}
	return append(flags, flag)
}

// EvidenceItem is a retrieved chunk with its similarity score.
type EvidenceItem struct {
	ChunkID    string
	DocumentID string
	Score      float64

	// Excerpt is whitespace-normalised and at most 160 characters.
	Excerpt string

	SourceType SourceType
}

// RetrievalEvidence is one append-only audit row per retrieved hit.
type RetrievalEvidence struct {
	ID        string
	InquiryID string
	ChunkID   string
	Score     float64

	// Rank is 1-based; 1 is the best hit.
	Rank int

	Question  string
	CreatedAt time.Time
}

// VerificationResult is the outcome of retrieve-and-verify.
type VerificationResult struct {
	InquiryID  string
	Question   string
	Verdict    Verdict
	Confidence float64
	Reason     string
	RiskFlags  []RiskFlag
	Evidence   []EvidenceItem
}

// Default verdict thresholds.
const (
	DefaultSupportedThreshold   = 0.82
	DefaultConditionalThreshold = 0.64
	DefaultMaxScoreSpread       = 0.25
	DefaultRetrievalTopK        = 5
	MaxRetrievalTopK            = 50
	ExcerptLength               = 160
)

// VerdictPolicy holds the thresholds and keyword families used to judge evidence.
type VerdictPolicy struct {
	SupportedThreshold   float64
	ConditionalThreshold float64
	MaxScoreSpread       float64
	ConditionalHints     []string
	NegativeHints        []string
	PositiveHints        []string
}

// DefaultVerdictPolicy returns the built-in thresholds and keyword families.
func DefaultVerdictPolicy() VerdictPolicy {
	return VerdictPolicy{
		SupportedThreshold:   DefaultSupportedThreshold,
		ConditionalThreshold: DefaultConditionalThreshold,
		MaxScoreSpread:       DefaultMaxScoreSpread,
		ConditionalHints: []string{
			"depends", "depending", "however", "uncertain", "unclear",
			"conditional", "only if", "unless", "may vary",
		},
		NegativeHints: []string{
			"contradict", "prohibited", "avoid", "not recommended",
			"not supported", "incompatible", "forbidden", "must not",
		},
		PositiveHints: []string{
			"supported", "recommended", "compatible", "approved",
			"allowed", "safe to",
		},
	}
}
