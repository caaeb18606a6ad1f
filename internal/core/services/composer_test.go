package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func TestComposer_ToneTemplates(t *testing.T) {
	c := NewAnswerComposer()

	for tone, templates := range toneTemplates {
		for verdict, want := range templates {
			out := c.Compose(ComposeInput{Verdict: verdict, Confidence: 0.9, Tone: tone, Channel: domain.ChannelEmail})
			assert.Contains(t, out.Text, want, "%s/%s", tone, verdict)
		}
	}
}

func TestComposer_DefaultsToProfessionalConditional(t *testing.T) {
	out := NewAnswerComposer().Compose(ComposeInput{Verdict: "UNKNOWN", Confidence: 0.9, Tone: "pirate"})
	assert.Contains(t, out.Text, toneTemplates[domain.ToneProfessional][domain.VerdictConditional])
}

func TestComposer_Guardrails(t *testing.T) {
	c := NewAnswerComposer()
	body := toneTemplates[domain.ToneBrief][domain.VerdictSupported]

	t.Run("none", func(t *testing.T) {
		out := c.Compose(ComposeInput{Verdict: domain.VerdictSupported, Confidence: 0.75, Tone: domain.ToneBrief, Channel: domain.ChannelMessenger})
		assert.Equal(t, "[SUPPORTED] "+body, out.Text)
	})

	t.Run("low confidence only", func(t *testing.T) {
		out := c.Compose(ComposeInput{Verdict: domain.VerdictSupported, Confidence: 0.74, Tone: domain.ToneBrief, Channel: domain.ChannelMessenger})
		assert.Equal(t, "[SUPPORTED] "+lowConfidenceNotice+" "+body, out.Text)
	})

	t.Run("both, confidence notice first", func(t *testing.T) {
		flags := []domain.RiskFlag{domain.RiskLowConfidence, domain.RiskConflictingEvidence}
		out := c.Compose(ComposeInput{Verdict: domain.VerdictSupported, Confidence: 0.5, RiskFlags: flags, Tone: domain.ToneBrief, Channel: domain.ChannelMessenger})

		risk := "Please note: this answer was flagged for LOW_CONFIDENCE, CONFLICTING_EVIDENCE."
		assert.Equal(t,
			"[SUPPORTED] "+lowConfidenceNotice+" "+risk+" "+body+"\nCaution: LOW_CONFIDENCE, CONFLICTING_EVIDENCE",
			out.Text)
	})
}

func TestComposer_EmailFormat(t *testing.T) {
	flags := []domain.RiskFlag{domain.RiskWeakEvidenceMatch}
	out := NewAnswerComposer().Compose(ComposeInput{
		Verdict:      domain.VerdictRefuted,
		Confidence:   0.9,
		RiskFlags:    flags,
		Tone:         domain.ToneProfessional,
		Channel:      domain.ChannelEmail,
		CustomerName: "Dana",
	})

	assert.True(t, strings.HasPrefix(out.Text, "Hello Dana,\n\n"))
	assert.True(t, strings.HasSuffix(out.Text, emailSignOff))
	caution := strings.Index(out.Text, "Caution: WEAK_EVIDENCE_MATCH")
	signOff := strings.Index(out.Text, emailSignOff)
	assert.Positive(t, caution)
	assert.Less(t, caution, signOff)
}

func TestComposer_EmailWithoutNameOrFlags(t *testing.T) {
	out := NewAnswerComposer().Compose(ComposeInput{Verdict: domain.VerdictSupported, Confidence: 0.9, Channel: "fax"})
	assert.True(t, strings.HasPrefix(out.Text, "Hello,\n\n"))
	assert.NotContains(t, out.Text, "Caution:")
}

func TestCitations(t *testing.T) {
	got := Citations([]domain.EvidenceItem{
		{ChunkID: "c-1", Score: 0.91234},
		{ChunkID: "c-2", Score: 0.5},
	})
	assert.Equal(t, []string{"chunk=c-1 score=0.912", "chunk=c-2 score=0.500"}, got)
	assert.Empty(t, Citations(nil))
}
