package domain

import "time"

// ReviewDecision is a reviewer's verdict on a draft.
type ReviewDecision string

// Review decisions.
const (
	ReviewPass   ReviewDecision = "PASS"
	ReviewRevise ReviewDecision = "REVISE"
	ReviewReject ReviewDecision = "REJECT"
)

// ParseReviewDecision normalises s, defaulting to PASS.
func ParseReviewDecision(s string) ReviewDecision {
	switch ReviewDecision(s) {
	case ReviewPass, ReviewRevise, ReviewReject:
		return ReviewDecision(s)
	default:
		return ReviewPass
	}
}

// IssueSeverity grades a review issue.
type IssueSeverity string

// Issue severities.
const (
	SeverityLow      IssueSeverity = "LOW"
	SeverityMedium   IssueSeverity = "MEDIUM"
	SeverityHigh     IssueSeverity = "HIGH"
	SeverityCritical IssueSeverity = "CRITICAL"
)

// Review defaults used when a reviewer omits or garbles a field.
const (
	DefaultReviewScore = 85
	MockReviewerName   = "mock-reviewer"
	HumanReviewerName  = "human"
)

// ReviewIssue is one structured finding from a review.
type ReviewIssue struct {
	Severity   IssueSeverity `json:"severity"`
	Category   string        `json:"category"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// AIReviewResult is one append-only row per review invocation.
type AIReviewResult struct {
	ID        string
	AnswerID  string
	InquiryID string

	// Reviewer names the reviewer implementation that produced the result.
	Reviewer string

	Decision     ReviewDecision
	Score        int
	Summary      string
	RevisedDraft string
	Issues       []ReviewIssue
	CreatedAt    time.Time
}

// HasCritical reports whether any issue is CRITICAL.
func (r *AIReviewResult) HasCritical() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// ClampScore bounds a review score to [0, 100].
func ClampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
