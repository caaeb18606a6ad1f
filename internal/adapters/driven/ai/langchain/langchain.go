// Package langchain adapts langchaingo models to the embedding and LLM ports.
// It backs the openrouter provider: any OpenAI-compatible gateway reachable
// through langchaingo's openai client.
package langchain

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.LLMService       = (*LLMService)(nil)
)

// DefaultBaseURL is the OpenRouter API endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const pingTimeout = 10 * time.Second

// Config selects the gateway and model.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// Dimensions is the embedding size; looked up from the model when zero.
	Dimensions int
}

func (c *Config) normalise() error {
	if c.APIKey == "" {
		return fmt.Errorf("openrouter: API key is required: %w", domain.ErrInvalidInput)
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	// Keys copied from curl examples often carry the scheme.
	c.APIKey = strings.TrimPrefix(c.APIKey, "Bearer ")
	return nil
}

// ping hits {base}/models with the key.
func ping(ctx context.Context, baseURL, apiKey string) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openrouter: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("openrouter: ping failed: %w: %w", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openrouter: API returned status %d: %s: %w", resp.StatusCode, string(body), domain.ErrExternalService)
	}
	return nil
}

// ==================== Embeddings ====================

// EmbeddingService wraps a langchaingo embedder.
type EmbeddingService struct {
	embedder   embeddings.Embedder
	model      string
	dimensions int
	baseURL    string
	apiKey     string
}

// NewEmbeddingService creates an embedder over the gateway.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if err := cfg.normalise(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("openrouter: create client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("openrouter: create embedder: %w", err)
	}

	svc := NewEmbeddingServiceWith(embedder, cfg.Model, cfg.Dimensions)
	svc.baseURL = cfg.BaseURL
	svc.apiKey = cfg.APIKey
	return svc, nil
}

// NewEmbeddingServiceWith wraps an existing embedder.
func NewEmbeddingServiceWith(embedder embeddings.Embedder, model string, dimensions int) *EmbeddingService {
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[model]
	}
	return &EmbeddingService{embedder: embedder, model: model, dimensions: dimensions}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("openrouter embed: %w: %w", domain.ErrExternalService, err)
	}
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("openrouter embed batch: %w: %w", domain.ErrExternalService, err)
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("openrouter: got %d embeddings for %d texts: %w", len(out), len(texts), domain.ErrExternalService)
	}
	return out, nil
}

// Dimensions returns the embedding vector size, zero when unknown.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the embedding model.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the key against the gateway.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if s.baseURL == "" {
		return nil
	}
	return ping(ctx, s.baseURL, s.apiKey)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// ==================== LLM ====================

// LLMService wraps a langchaingo model.
type LLMService struct {
	model   llms.Model
	name    string
	baseURL string
	apiKey  string
}

// NewLLMService creates a chat model over the gateway.
func NewLLMService(cfg Config) (*LLMService, error) {
	if err := cfg.normalise(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("openrouter: create client: %w", err)
	}

	svc := NewLLMServiceWith(client, cfg.Model)
	svc.baseURL = cfg.BaseURL
	svc.apiKey = cfg.APIKey
	return svc, nil
}

// NewLLMServiceWith wraps an existing model.
func NewLLMServiceWith(model llms.Model, name string) *LLMService {
	return &LLMService{model: model, name: name}
}

// Generate produces a completion for a single user prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.Chat(ctx, []driven.ChatMessage{{Role: "user", Content: prompt}}, driven.ChatOptions{
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		JSON:        opts.JSON,
	})
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(roleType(m.Role), m.Content))
	}

	var callOpts []llms.CallOption
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(opts.Temperature))
	}
	if opts.JSON {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	resp, err := s.model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", fmt.Errorf("openrouter chat: %w: %w", domain.ErrExternalService, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter: no response choices returned: %w", domain.ErrExternalService)
	}
	return resp.Choices[0].Content, nil
}

func roleType(role string) llms.ChatMessageType {
	switch role {
	case "system":
		return llms.ChatMessageTypeSystem
	case "assistant":
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// ModelName returns the chat model.
func (s *LLMService) ModelName() string {
	return s.name
}

// Ping validates the key against the gateway.
func (s *LLMService) Ping(ctx context.Context) error {
	if s.baseURL == "" {
		return nil
	}
	return ping(ctx, s.baseURL, s.apiKey)
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
