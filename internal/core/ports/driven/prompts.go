package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptContextEnrichment asks for a 1-2 sentence context summary of a chunk.
	// Placeholders: %s file name, %s document text, %s chunk text.
	PromptContextEnrichment = "context_enrichment"

	// PromptAnswerReview is the reviewer instruction. It has no placeholders;
	// the draft is sent as the following user message.
	PromptAnswerReview = "answer_review"
)
