package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize        = "ingestion.chunk_size"
	keyChunkOverlap     = "ingestion.chunk_overlap"
	keyOCRMinChars      = "ingestion.ocr_min_chars"
	keyHierarchical     = "ingestion.hierarchical"
	keyParentSize       = "ingestion.parent_size"
	keyEmbedConcurrency = "ingestion.embed_concurrency"
	keyEmbedRPS         = "ingestion.embed_rps"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyReviewEnabled    = "review.enabled"
	keyStorageDriver    = "storage.driver"
	keyStorageDSN       = "storage.dsn"
	keyVectorBackend    = "vector.backend"
	keyVectorPath       = "vector.path"
	keyOCREndpoint      = "ocr.endpoint"
	keyOCRTimeout       = "ocr.timeout_seconds"
	keySMTPHost         = "dispatch.smtp_host"
	keySMTPPort         = "dispatch.smtp_port"
	keySMTPUsername     = "dispatch.smtp_username"
	keySMTPPassword     = "dispatch.smtp_password"
	keyFrom             = "dispatch.from"
	keyMaxAttempts      = "dispatch.max_attempts"
	keyInitialBackoff   = "dispatch.initial_backoff_ms"
	keyTelegramToken    = "dispatch.telegram_token"
	keyTelegramChatID   = "dispatch.telegram_chat_id"
	keyGmailClientID    = "dispatch.gmail_client_id"
	keyGmailSecret      = "dispatch.gmail_client_secret"
	keyGmailRefresh     = "dispatch.gmail_refresh_token"
	keyWebhookURL       = "notify.webhook_url"
	keyInbox            = "watch.inbox"
	keyProcessors       = "pipeline.processors"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindFloat
)

// settingKinds lists every key Set accepts with its value type.
var settingKinds = map[string]valueKind{
	keyChunkSize: kindInt, keyChunkOverlap: kindInt, keyOCRMinChars: kindInt,
	keyHierarchical: kindBool, keyParentSize: kindInt, keyEmbedConcurrency: kindInt,
	keyEmbedRPS: kindFloat, keyEmbedProvider: kindString, keyEmbedModel: kindString,
	keyEmbedBaseURL: kindString, keyEmbedAPIKey: kindString, keyLLMProvider: kindString,
	keyLLMModel: kindString, keyLLMBaseURL: kindString, keyLLMAPIKey: kindString,
	keyReviewEnabled: kindBool, keyStorageDriver: kindString, keyStorageDSN: kindString,
	keyVectorBackend: kindString, keyVectorPath: kindString, keyOCREndpoint: kindString,
	keyOCRTimeout: kindInt, keySMTPHost: kindString, keySMTPPort: kindInt,
	keySMTPUsername: kindString, keySMTPPassword: kindString, keyFrom: kindString,
	keyMaxAttempts: kindInt, keyInitialBackoff: kindInt, keyTelegramToken: kindString,
	keyTelegramChatID: kindString, keyWebhookURL: kindString, keyInbox: kindString,
	keyGmailClientID: kindString, keyGmailSecret: kindString, keyGmailRefresh: kindString,
}

// SettingKeys returns the keys accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Ingestion: domain.IngestionSettings{
			ChunkSize:        s.getInt(keyChunkSize, d.Ingestion.ChunkSize),
			ChunkOverlap:     s.getInt(keyChunkOverlap, d.Ingestion.ChunkOverlap),
			OCRMinChars:      s.getInt(keyOCRMinChars, d.Ingestion.OCRMinChars),
			Hierarchical:     s.getBool(keyHierarchical, d.Ingestion.Hierarchical),
			ParentChunkSize:  s.getInt(keyParentSize, d.Ingestion.ParentChunkSize),
			EmbedConcurrency: s.getInt(keyEmbedConcurrency, d.Ingestion.EmbedConcurrency),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Storage: domain.StorageSettings{
			Driver: s.getStorageDriver(d.Storage.Driver),
			DSN:    s.configStore.GetString(keyStorageDSN),
		},
		Vector: domain.VectorSettings{
			Backend: s.getVectorBackend(d.Vector.Backend),
			Path:    s.configStore.GetString(keyVectorPath),
		},
		OCR: domain.OCRSettings{
			Endpoint:       s.configStore.GetString(keyOCREndpoint),
			TimeoutSeconds: s.getInt(keyOCRTimeout, d.OCR.TimeoutSeconds),
		},
		Dispatch: domain.DispatchSettings{
			SMTPHost:         s.configStore.GetString(keySMTPHost),
			SMTPPort:         s.getInt(keySMTPPort, d.Dispatch.SMTPPort),
			SMTPUsername:     s.configStore.GetString(keySMTPUsername),
			SMTPPassword:     s.configStore.GetString(keySMTPPassword),
			From:             s.configStore.GetString(keyFrom),
			MaxAttempts:      s.getInt(keyMaxAttempts, d.Dispatch.MaxAttempts),
			InitialBackoffMS: s.getInt(keyInitialBackoff, d.Dispatch.InitialBackoffMS),
			TelegramToken:    s.configStore.GetString(keyTelegramToken),
			TelegramChatID:   s.configStore.GetString(keyTelegramChatID),

			GmailClientID:     s.configStore.GetString(keyGmailClientID),
			GmailClientSecret: s.configStore.GetString(keyGmailSecret),
			GmailRefreshToken: s.configStore.GetString(keyGmailRefresh),
		},
		Review: domain.ReviewSettings{
			Enabled: s.getBool(keyReviewEnabled, d.Review.Enabled),
		},
		Notify: domain.NotifySettings{
			WebhookURL: s.configStore.GetString(keyWebhookURL),
		},
		InboxDir: s.configStore.GetString(keyInbox),
	}

	return settings, nil
}

// Save persists application settings. Empty secrets are not written so
// values supplied through the environment stay out of the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyChunkSize, settings.Ingestion.ChunkSize},
		{keyChunkOverlap, settings.Ingestion.ChunkOverlap},
		{keyOCRMinChars, settings.Ingestion.OCRMinChars},
		{keyHierarchical, settings.Ingestion.Hierarchical},
		{keyParentSize, settings.Ingestion.ParentChunkSize},
		{keyEmbedConcurrency, settings.Ingestion.EmbedConcurrency},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyReviewEnabled, settings.Review.Enabled},
		{keyStorageDriver, string(settings.Storage.Driver)},
		{keyStorageDSN, settings.Storage.DSN},
		{keyVectorBackend, string(settings.Vector.Backend)},
		{keyVectorPath, settings.Vector.Path},
		{keyOCREndpoint, settings.OCR.Endpoint},
		{keyOCRTimeout, settings.OCR.TimeoutSeconds},
		{keySMTPHost, settings.Dispatch.SMTPHost},
		{keySMTPPort, settings.Dispatch.SMTPPort},
		{keySMTPUsername, settings.Dispatch.SMTPUsername},
		{keyFrom, settings.Dispatch.From},
		{keyMaxAttempts, settings.Dispatch.MaxAttempts},
		{keyInitialBackoff, settings.Dispatch.InitialBackoffMS},
		{keyTelegramChatID, settings.Dispatch.TelegramChatID},
		{keyGmailClientID, settings.Dispatch.GmailClientID},
		{keyWebhookURL, settings.Notify.WebhookURL},
		{keyInbox, settings.InboxDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := map[string]string{
		keyEmbedAPIKey:   settings.Embedding.APIKey,
		keyLLMAPIKey:     settings.LLM.APIKey,
		keySMTPPassword:  settings.Dispatch.SMTPPassword,
		keyTelegramToken: settings.Dispatch.TelegramToken,
		keyGmailSecret:   settings.Dispatch.GmailClientSecret,
		keyGmailRefresh:  settings.Dispatch.GmailRefreshToken,
	}
	for key, secret := range secrets {
		if secret == "" {
			continue
		}
		if err := s.configStore.Set(key, secret); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// Set stores a single key. String values are converted to the key's type.
func (s *SettingsService) Set(key string, value any) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	converted, err := convertSetting(kind, value)
	if err != nil {
		return fmt.Errorf("setting %s: %w: %w", key, domain.ErrInvalidInput, err)
	}

	switch key {
	case keyEmbedProvider, keyLLMProvider:
		if p := domain.AIProvider(converted.(string)); p != "" && !p.IsValid() {
			return fmt.Errorf("invalid provider %q: %w", p, domain.ErrInvalidInput)
		}
	case keyStorageDriver:
		if d := domain.StorageDriver(converted.(string)); !d.IsValid() {
			return fmt.Errorf("invalid storage driver %q: %w", d, domain.ErrInvalidInput)
		}
	case keyVectorBackend:
		if b := domain.VectorBackend(converted.(string)); !b.IsValid() {
			return fmt.Errorf("invalid vector backend %q: %w", b, domain.ErrInvalidInput)
		}
	}

	return s.configStore.Set(key, converted)
}

func convertSetting(kind valueKind, value any) (any, error) {
	str, isString := value.(string)
	switch kind {
	case kindInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		}
		if isString {
			return strconv.Atoi(strings.TrimSpace(str))
		}
	case kindBool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
		if isString {
			return strconv.ParseBool(strings.TrimSpace(str))
		}
	case kindFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		}
		if isString {
			return strconv.ParseFloat(strings.TrimSpace(str), 64)
		}
	default:
		if isString {
			return strings.TrimSpace(str), nil
		}
		return fmt.Sprint(value), nil
	}
	return nil, fmt.Errorf("unsupported value %v", value)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate provider supports embeddings
	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, provider, domain.DefaultEmbeddingModels())
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, provider, domain.DefaultLLMModels())
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

func modelOrDefault(model string, provider domain.AIProvider, defaults map[domain.AIProvider]string) string {
	if model != "" {
		return model
	}
	return defaults[provider]
}

// baseURLFor keeps a custom base URL for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}

// Validate checks the settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	in := settings.Ingestion
	if in.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive: %w", domain.ErrInvalidInput)
	}
	if in.ChunkOverlap < 0 || in.ChunkOverlap >= in.ChunkSize {
		return fmt.Errorf("chunk overlap must be in [0, %d): %w", in.ChunkSize, domain.ErrInvalidInput)
	}
	if in.Hierarchical && in.ParentChunkSize < in.ChunkSize {
		return fmt.Errorf("parent size must be at least the chunk size: %w", domain.ErrInvalidInput)
	}
	if settings.Storage.Driver == domain.StoragePostgres && settings.Storage.DSN == "" {
		return fmt.Errorf("storage driver postgres requires storage.dsn: %w", domain.ErrInvalidInput)
	}
	if settings.Vector.Backend == domain.VectorPGVector && settings.Storage.Driver != domain.StoragePostgres {
		return fmt.Errorf("vector backend pgvector requires storage driver postgres: %w", domain.ErrInvalidInput)
	}
	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %s is not fully configured: %w", settings.Embedding.Provider, domain.ErrInvalidInput)
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %s is not fully configured: %w", settings.LLM.Provider, domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the chunk pipeline configuration built from the
// ingestion settings. pipeline.processors overrides the processor order.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()
	if processors := s.configStore.GetStringSlice(keyProcessors); len(processors) > 0 {
		cfg.Processors = processors
	}

	settings, err := s.Get()
	if err != nil {
		return cfg
	}
	cfg.ProcessorConfigs["chunker"] = map[string]any{
		"chunk_size":   settings.Ingestion.ChunkSize,
		"overlap":      settings.Ingestion.ChunkOverlap,
		"hierarchical": settings.Ingestion.Hierarchical,
		"parent_size":  settings.Ingestion.ParentChunkSize,
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStorageDriver(defaultVal domain.StorageDriver) domain.StorageDriver {
	driver := domain.StorageDriver(s.configStore.GetString(keyStorageDriver))
	if !driver.IsValid() {
		return defaultVal
	}
	return driver
}

func (s *SettingsService) getVectorBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
