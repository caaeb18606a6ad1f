package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API (LLM only).
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOpenRouter is any OpenAI-compatible gateway reached through langchaingo.
	AIProviderOpenRouter AIProvider = "openrouter"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderOpenRouter:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderOpenRouter
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOpenRouter:
		return "OpenRouter / OpenAI-compatible gateway"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	// RequestsPerSecond throttles embedding calls. Zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
// The LLM drives context enrichment and the automated reviewer.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Default ingestion parameters.
const (
	DefaultChunkSize        = 1000
	DefaultChunkOverlap     = 150
	DefaultOCRMinChars      = 50
	DefaultParentChunkSize  = 3000
	DefaultEmbedConcurrency = 4
)

// IngestionSettings tunes the ingestion pipeline.
type IngestionSettings struct {
	ChunkSize    int
	ChunkOverlap int

	// OCRMinChars is the extracted-text length at or below which OCR is tried.
	OCRMinChars int

	// Hierarchical enables parent/child chunking.
	Hierarchical    bool
	ParentChunkSize int

	// EmbedConcurrency bounds parallel embedding calls per document.
	EmbedConcurrency int
}

// StorageDriver selects the relational store.
type StorageDriver string

// Storage drivers.
const (
	StorageSQLite   StorageDriver = "sqlite"
	StoragePostgres StorageDriver = "postgres"
	StorageMemory   StorageDriver = "memory"
)

// IsValid returns true if the driver is recognised.
func (d StorageDriver) IsValid() bool {
	return d == StorageSQLite || d == StoragePostgres || d == StorageMemory
}

// StorageSettings holds relational store configuration.
type StorageSettings struct {
	Driver StorageDriver

	// DSN is the Postgres connection string. Unused for sqlite and memory.
	DSN string
}

// VectorBackend selects the vector index implementation.
type VectorBackend string

// Vector backends.
const (
	VectorChromem  VectorBackend = "chromem"
	VectorPGVector VectorBackend = "pgvector"
	VectorMemory   VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorChromem || b == VectorPGVector || b == VectorMemory
}

// VectorSettings holds vector index configuration.
type VectorSettings struct {
	Backend VectorBackend

	// Path is the chromem persistence directory. Empty keeps the index in memory.
	Path string
}

// OCRSettings holds the OCR service endpoint.
type OCRSettings struct {
	Endpoint       string
	TimeoutSeconds int
}

// IsConfigured returns true if an OCR endpoint is set.
func (o OCRSettings) IsConfigured() bool {
	return o.Endpoint != ""
}

// Default dispatch parameters.
const (
	DefaultSMTPPort         = 587
	DefaultMaxSendAttempts  = 3
	DefaultInitialBackoffMS = 500
	DefaultOCRTimeout       = 60
)

// DispatchSettings holds sender configuration.
type DispatchSettings struct {
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	From             string
	MaxAttempts      int
	InitialBackoffMS int
	TelegramToken    string
	TelegramChatID   string

	// Gmail API delivery. The refresh token must carry the gmail.send scope.
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
}

// EmailConfigured returns true if SMTP or Gmail delivery is set up.
func (d DispatchSettings) EmailConfigured() bool {
	return d.SMTPConfigured() || d.GmailConfigured()
}

// SMTPConfigured returns true if an SMTP relay is set up.
func (d DispatchSettings) SMTPConfigured() bool {
	return d.SMTPHost != "" && d.From != ""
}

// GmailConfigured returns true if Gmail API credentials are set up.
// Gmail takes precedence over SMTP for the email channel.
func (d DispatchSettings) GmailConfigured() bool {
	return d.GmailClientID != "" && d.GmailClientSecret != "" && d.GmailRefreshToken != "" && d.From != ""
}

// MessengerConfigured returns true if Telegram delivery is set up.
func (d DispatchSettings) MessengerConfigured() bool {
	return d.TelegramToken != ""
}

// ReviewSettings holds automated review configuration.
type ReviewSettings struct {
	// Enabled turns on the LLM reviewer when an LLM is configured.
	Enabled bool
}

// NotifySettings holds event notification configuration.
type NotifySettings struct {
	WebhookURL string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Ingestion IngestionSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Storage   StorageSettings
	Vector    VectorSettings
	OCR       OCRSettings
	Dispatch  DispatchSettings
	Review    ReviewSettings
	Notify    NotifySettings

	// InboxDir is the directory watched for dropped files.
	InboxDir string
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers and senders are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Ingestion: IngestionSettings{
			ChunkSize:        DefaultChunkSize,
			ChunkOverlap:     DefaultChunkOverlap,
			OCRMinChars:      DefaultOCRMinChars,
			ParentChunkSize:  DefaultParentChunkSize,
			EmbedConcurrency: DefaultEmbedConcurrency,
		},
		Storage: StorageSettings{Driver: StorageSQLite},
		Vector:  VectorSettings{Backend: VectorChromem},
		OCR:     OCRSettings{TimeoutSeconds: DefaultOCRTimeout},
		Dispatch: DispatchSettings{
			SMTPPort:         DefaultSMTPPort,
			MaxAttempts:      DefaultMaxSendAttempts,
			InitialBackoffMS: DefaultInitialBackoffMS,
		},
		Review: ReviewSettings{Enabled: true},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderOpenRouter}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderOpenRouter}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:     "nomic-embed-text",
		AIProviderOpenAI:     "text-embedding-3-small",
		AIProviderOpenRouter: "openai/text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:     "llama3.2",
		AIProviderOpenAI:     "gpt-4o-mini",
		AIProviderAnthropic:  "claude-3-5-haiku-latest",
		AIProviderOpenRouter: "openai/gpt-4o-mini",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":              768,
		"mxbai-embed-large":             1024,
		"all-minilm":                    384,
		"text-embedding-3-small":        1536,
		"text-embedding-3-large":        3072,
		"text-embedding-ada-002":        1536,
		"openai/text-embedding-3-small": 1536,
	}
}

// PipelineConfig holds chunk post-processor pipeline configuration.
// Processor configs are generic maps so processors can be added without
// changing this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration keyed by processor name.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default chunk pipeline: split then enrich.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "enricher"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size":   DefaultChunkSize,
				"overlap":      DefaultChunkOverlap,
				"hierarchical": false,
				"parent_size":  DefaultParentChunkSize,
			},
		},
	}
}
