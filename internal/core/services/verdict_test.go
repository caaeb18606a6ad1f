package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

const neutralQuestion = "Can the X200 router run firmware 3.0?"

func ev(scores ...float64) []domain.EvidenceItem {
	items := make([]domain.EvidenceItem, len(scores))
	for i, s := range scores {
		items[i] = domain.EvidenceItem{ChunkID: "c", Score: s, Excerpt: "The X200 ships with firmware 3.0."}
	}
	return items
}

func TestVerdict_NoEvidence(t *testing.T) {
	j := NewVerdictEngine(domain.DefaultVerdictPolicy()).Judge(neutralQuestion, nil)

	assert.Equal(t, domain.VerdictConditional, j.Verdict)
	assert.Equal(t, 0.0, j.Confidence)
	assert.Equal(t, []domain.RiskFlag{domain.RiskInsufficientEvidence}, j.RiskFlags)
}

func TestVerdict_ScoreMonotonicity(t *testing.T) {
	e := NewVerdictEngine(domain.DefaultVerdictPolicy())

	tests := []struct {
		score float64
		want  domain.Verdict
		flag  domain.RiskFlag
	}{
		{0.60, domain.VerdictRefuted, domain.RiskWeakEvidenceMatch},
		{0.64, domain.VerdictConditional, domain.RiskLowConfidence},
		{0.70, domain.VerdictConditional, domain.RiskLowConfidence},
		{0.82, domain.VerdictSupported, ""},
		{0.85, domain.VerdictSupported, ""},
	}
	for _, tt := range tests {
		j := e.Judge(neutralQuestion, ev(tt.score, tt.score))
		assert.Equal(t, tt.want, j.Verdict, "score %.2f", tt.score)
		if tt.flag == "" {
			assert.Empty(t, j.RiskFlags, "score %.2f", tt.score)
		} else {
			assert.Equal(t, []domain.RiskFlag{tt.flag}, j.RiskFlags, "score %.2f", tt.score)
		}
	}
}

func TestVerdict_PriorsOverrideScore(t *testing.T) {
	e := NewVerdictEngine(domain.DefaultVerdictPolicy())

	tests := []struct {
		name     string
		question string
		score    float64
		want     domain.Verdict
	}{
		{"positive prior beats weak score", "Is firmware 3.0 supported on the X200?", 0.30, domain.VerdictSupported},
		{"negative prior beats strong score", "Should I avoid firmware 3.0 on the X200?", 0.95, domain.VerdictRefuted},
		{"conditional prior beats strong score", "Does it depend? It depends on the region.", 0.95, domain.VerdictConditional},
		{"conditional beats negative", "However, is it prohibited?", 0.95, domain.VerdictConditional},
		{"negative beats positive", "Is it not supported?", 0.95, domain.VerdictRefuted},
		{"case insensitive", "IS IT RECOMMENDED?", 0.10, domain.VerdictSupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := e.Judge(tt.question, ev(tt.score))
			assert.Equal(t, tt.want, j.Verdict)
			assert.Equal(t, tt.score, j.Confidence)
		})
	}
}

func TestVerdict_SpreadForcesConflict(t *testing.T) {
	j := NewVerdictEngine(domain.DefaultVerdictPolicy()).Judge(neutralQuestion, ev(0.95, 0.60))

	assert.Equal(t, domain.VerdictConditional, j.Verdict)
	assert.Contains(t, j.RiskFlags, domain.RiskConflictingEvidence)
	assert.Equal(t, reasonConflictingSignal, j.Reason)
	assert.Equal(t, 0.775, j.Confidence)
}

func TestVerdict_SpreadAtThresholdIsNotConflict(t *testing.T) {
	j := NewVerdictEngine(domain.DefaultVerdictPolicy()).Judge(neutralQuestion, ev(0.95, 0.75))
	assert.NotContains(t, j.RiskFlags, domain.RiskConflictingEvidence)
}

func TestVerdict_ConflictOverridesPrior(t *testing.T) {
	j := NewVerdictEngine(domain.DefaultVerdictPolicy()).Judge("Is this supported?", ev(0.95, 0.50))
	assert.Equal(t, domain.VerdictConditional, j.Verdict)
	assert.Equal(t, []domain.RiskFlag{domain.RiskConflictingEvidence}, j.RiskFlags)
}

func TestVerdict_PolarityConflicts(t *testing.T) {
	e := NewVerdictEngine(domain.DefaultVerdictPolicy())

	t.Run("question disagrees with evidence", func(t *testing.T) {
		items := []domain.EvidenceItem{{Score: 0.9, Excerpt: "Firmware 3.0 is prohibited on the X200."}}
		j := e.Judge("Is firmware 3.0 recommended?", items)
		assert.Equal(t, domain.VerdictConditional, j.Verdict)
		assert.Contains(t, j.RiskFlags, domain.RiskConflictingEvidence)
	})

	t.Run("evidence disagrees with itself", func(t *testing.T) {
		items := []domain.EvidenceItem{
			{Score: 0.9, Excerpt: "Firmware 3.0 is recommended."},
			{Score: 0.9, Excerpt: "Avoid firmware 3.0 on older units."},
		}
		j := e.Judge(neutralQuestion, items)
		assert.Equal(t, domain.VerdictConditional, j.Verdict)
		assert.Contains(t, j.RiskFlags, domain.RiskConflictingEvidence)
	})

	t.Run("negated phrase is not positive", func(t *testing.T) {
		items := []domain.EvidenceItem{{Score: 0.9, Excerpt: "Firmware 3.0 is not supported on the X200."}}
		j := e.Judge("Is firmware 3.0 not supported on the X200?", items)
		assert.Equal(t, domain.VerdictRefuted, j.Verdict)
		assert.NotContains(t, j.RiskFlags, domain.RiskConflictingEvidence)
	})

	t.Run("agreeing polarity is fine", func(t *testing.T) {
		items := []domain.EvidenceItem{{Score: 0.9, Excerpt: "Firmware 3.0 is recommended."}}
		j := e.Judge("Is firmware 3.0 recommended?", items)
		assert.Equal(t, domain.VerdictSupported, j.Verdict)
		assert.Empty(t, j.RiskFlags)
	})
}

func TestVerdict_ConfidenceRounded(t *testing.T) {
	j := NewVerdictEngine(domain.DefaultVerdictPolicy()).Judge(neutralQuestion, ev(0.8333, 0.8334, 0.8335))
	assert.Equal(t, 0.833, j.Confidence)
}

func TestVerdict_CustomPolicy(t *testing.T) {
	e := NewVerdictEngine(domain.VerdictPolicy{
		SupportedThreshold: 0.5,
		PositiveHints:      []string{"GREEN LIGHT"},
	})
	assert.Equal(t, domain.VerdictSupported, e.Judge(neutralQuestion, ev(0.55)).Verdict)
	assert.Equal(t, domain.VerdictSupported, e.Judge("green light?", ev(0.1)).Verdict)
	assert.Equal(t, domain.VerdictRefuted, e.Judge("should I avoid it", ev(0.9)).Verdict)
}
