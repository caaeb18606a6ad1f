// Package reviewer provides the language-model answer reviewer.
package reviewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// Default call parameters.
const (
	DefaultMaxTokens   = 1200
	DefaultTemperature = 0.1
)

var _ driven.Reviewer = (*LLMReviewer)(nil)

// LLMReviewer asks an LLM to grade a draft and parses its JSON verdict.
type LLMReviewer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewLLMReviewer creates a reviewer, or returns nil when llm is nil.
func NewLLMReviewer(llm driven.LLMService, prompts driven.PromptStore) *LLMReviewer {
	if llm == nil {
		return nil
	}
	return &LLMReviewer{llm: llm, prompts: prompts}
}

// Name identifies the reviewer and its model.
func (r *LLMReviewer) Name() string {
	return "llm:" + r.llm.ModelName()
}

type draftPayload struct {
	Verdict    domain.Verdict    `json:"verdict"`
	Confidence float64           `json:"confidence"`
	Tone       domain.Tone       `json:"tone"`
	Channel    domain.Channel    `json:"channel"`
	Question   string            `json:"question"`
	Text       string            `json:"text"`
	Citations  []string          `json:"citations"`
	RiskFlags  []domain.RiskFlag `json:"riskFlags"`
}

type reviewPayload struct {
	Decision     string          `json:"decision"`
	Score        json.RawMessage `json:"score"`
	Summary      string          `json:"summary"`
	RevisedDraft string          `json:"revisedDraft"`
	Issues       []issuePayload  `json:"issues"`
}

type issuePayload struct {
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// Review sends the draft with the answer_review instruction.
func (r *LLMReviewer) Review(ctx context.Context, draft *domain.AnswerDraft) (*domain.AIReviewResult, error) {
	instruction, err := r.prompts.Load(driven.PromptAnswerReview)
	if err != nil {
		return nil, fmt.Errorf("load review prompt: %w", err)
	}

	payload, err := json.Marshal(draftPayload{
		Verdict:    draft.Verdict,
		Confidence: draft.Confidence,
		Tone:       draft.Tone,
		Channel:    draft.Channel,
		Question:   draft.Question,
		Text:       draft.Text,
		Citations:  draft.Citations,
		RiskFlags:  draft.RiskFlags,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal draft: %w", err)
	}

	reply, err := r.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: instruction},
		{Role: "user", Content: string(payload)},
	}, driven.ChatOptions{
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	res, err := Parse(reply)
	if err != nil {
		return nil, err
	}
	res.Reviewer = r.Name()
	return res, nil
}

// Parse decodes a reviewer reply. Markdown fences and text around the JSON
// object are ignored. Invalid decisions become PASS and a missing score
// becomes the default; the score is clamped to [0, 100].
func Parse(reply string) (*domain.AIReviewResult, error) {
	body := extractObject(reply)
	if body == "" {
		return nil, fmt.Errorf("review reply has no JSON object: %w", domain.ErrExternalService)
	}

	var p reviewPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("decode review reply: %w: %w", domain.ErrExternalService, err)
	}

	res := &domain.AIReviewResult{
		Decision:     domain.ParseReviewDecision(strings.ToUpper(strings.TrimSpace(p.Decision))),
		Score:        domain.ClampScore(parseScore(p.Score)),
		Summary:      strings.TrimSpace(p.Summary),
		RevisedDraft: strings.TrimSpace(p.RevisedDraft),
	}
	for _, is := range p.Issues {
		if strings.TrimSpace(is.Message) == "" {
			continue
		}
		res.Issues = append(res.Issues, domain.ReviewIssue{
			Severity:   parseSeverity(is.Severity),
			Category:   strings.TrimSpace(is.Category),
			Message:    strings.TrimSpace(is.Message),
			Suggestion: strings.TrimSpace(is.Suggestion),
		})
	}
	return res, nil
}

func extractObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// parseScore accepts 87, 87.4 and "87". The float is clamped before the
// int conversion, which is undefined for out-of-range values.
func parseScore(raw json.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return domain.DefaultReviewScore
	}
	f, err := strconv.ParseFloat(s, 64)
	// ErrRange still yields ±Inf, which clamps like any other number.
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || math.IsNaN(f) {
		return domain.DefaultReviewScore
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

func parseSeverity(s string) domain.IssueSeverity {
	switch sev := domain.IssueSeverity(strings.ToUpper(strings.TrimSpace(s))); sev {
	case domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical:
		return sev
	default:
		return domain.SeverityMedium
	}
}
