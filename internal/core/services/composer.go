package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// lowConfidenceThreshold is the confidence below which drafts carry a notice.
const lowConfidenceThreshold = 0.75

const (
	lowConfidenceNotice = "Note: our confidence in this answer is limited, please verify it against your setup before acting on it."
	riskNoticeFormat    = "Please note: this answer was flagged for %s."
	emailSignOff        = "Best regards,\nCustomer Support"
)

// toneTemplates holds the body text per tone and verdict.
// CONDITIONAL doubles as the fallback.
var toneTemplates = map[domain.Tone]map[domain.Verdict]string{
	domain.ToneBrief: {
		domain.VerdictSupported:   "Yes, this is supported.",
		domain.VerdictRefuted:     "No, this is not supported.",
		domain.VerdictConditional: "It depends on your configuration; this is supported only under certain conditions.",
	},
	domain.ToneTechnical: {
		domain.VerdictSupported: "Verification result: SUPPORTED. The retrieved documentation confirms the " +
			"requested configuration is valid.",
		domain.VerdictRefuted: "Verification result: REFUTED. The retrieved documentation does not support the " +
			"requested configuration; do not proceed without an alternative.",
		domain.VerdictConditional: "Verification result: CONDITIONAL. The retrieved documentation supports the " +
			"requested configuration only when specific prerequisites are met; confirm them before proceeding.",
	},
	domain.ToneProfessional: {
		domain.VerdictSupported: "Thank you for your question. Based on our review of the relevant documentation, " +
			"we can confirm that this is supported.",
		domain.VerdictRefuted: "Thank you for your question. Based on our review of the relevant documentation, " +
			"this is not supported, and we recommend against proceeding.",
		domain.VerdictConditional: "Thank you for your question. Based on our review of the relevant documentation, " +
			"this is supported only under specific conditions. Please share details of your setup so we can advise further.",
	},
}

// ComposeInput is everything the composer needs.
type ComposeInput struct {
	Verdict      domain.Verdict
	Confidence   float64
	RiskFlags    []domain.RiskFlag
	Tone         domain.Tone
	Channel      domain.Channel
	Evidence     []domain.EvidenceItem
	CustomerName string
}

// Composition is the rendered draft.
type Composition struct {
	Text      string
	Citations []string
}

// AnswerComposer renders a verdict into channel-specific draft text.
// It is a pure function of its input.
type AnswerComposer struct{}

// NewAnswerComposer creates a composer.
func NewAnswerComposer() *AnswerComposer {
	return &AnswerComposer{}
}

// Compose renders in.
func (c *AnswerComposer) Compose(in ComposeInput) Composition {
	guarded := guard(body(in.Tone, in.Verdict), in.Confidence, in.RiskFlags)

	var text string
	if in.Channel == domain.ChannelMessenger {
		text = formatMessenger(in.Verdict, guarded, in.RiskFlags)
	} else {
		text = formatEmail(in.CustomerName, guarded, in.RiskFlags)
	}

	return Composition{Text: text, Citations: Citations(in.Evidence)}
}

// Citations formats evidence as "chunk=<id> score=<score>".
func Citations(evidence []domain.EvidenceItem) []string {
	out := make([]string, 0, len(evidence))
	for _, ev := range evidence {
		out = append(out, fmt.Sprintf("chunk=%s score=%.3f", ev.ChunkID, ev.Score))
	}
	return out
}

func body(tone domain.Tone, verdict domain.Verdict) string {
	templates, ok := toneTemplates[tone]
	if !ok {
		templates = toneTemplates[domain.ToneProfessional]
	}
	if text, ok := templates[verdict]; ok {
		return text
	}
	return templates[domain.VerdictConditional]
}

// guard prepends the low-confidence notice, then the risk notice.
func guard(text string, confidence float64, flags []domain.RiskFlag) string {
	var parts []string
	if confidence < lowConfidenceThreshold {
		parts = append(parts, lowConfidenceNotice)
	}
	if len(flags) > 0 {
		parts = append(parts, fmt.Sprintf(riskNoticeFormat, joinFlags(flags)))
	}
	return strings.Join(append(parts, text), " ")
}

func formatMessenger(verdict domain.Verdict, text string, flags []domain.RiskFlag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", verdict, text)
	if len(flags) > 0 {
		fmt.Fprintf(&b, "\nCaution: %s", joinFlags(flags))
	}
	return b.String()
}

func formatEmail(name, text string, flags []domain.RiskFlag) string {
	greeting := "Hello,"
	if name = strings.TrimSpace(name); name != "" {
		greeting = "Hello " + name + ","
	}

	var b strings.Builder
	b.WriteString(greeting)
	b.WriteString("\n\n")
	b.WriteString(text)
	b.WriteString("\n\n")
	if len(flags) > 0 {
		fmt.Fprintf(&b, "Caution: %s\n\n", joinFlags(flags))
	}
	b.WriteString(emailSignOff)
	return b.String()
}

func joinFlags(flags []domain.RiskFlag) string {
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
