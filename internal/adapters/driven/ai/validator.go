package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings before they are saved. An
// unconfigured slot is valid: the application runs without it.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator returns a validator that waits pingTimeout for each
// provider.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// WithTimeout overrides how long a ping may take.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	if d > 0 {
		v.timeout = d
	}
	return v
}

// ValidateEmbedding rejects providers without an embeddings API, then pings.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil || config.Provider == "" {
		return nil
	}
	if !config.Provider.IsValid() {
		return fmt.Errorf("unknown embedding provider %q: %w", config.Provider, domain.ErrInvalidInput)
	}
	if config.Provider == domain.AIProviderAnthropic {
		return fmt.Errorf("anthropic does not support embeddings: %w", domain.ErrInvalidInput)
	}
	if !config.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return err
	}
	defer svc.Close()
	return v.ping(svc.Ping)
}

// ValidateLLM rejects unknown providers, then pings.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || config.Provider == "" {
		return nil
	}
	if !config.Provider.IsValid() {
		return fmt.Errorf("unknown LLM provider %q: %w", config.Provider, domain.ErrInvalidInput)
	}
	if !config.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(config)
	if err != nil {
		return err
	}
	defer svc.Close()
	return v.ping(svc.Ping)
}

func (v *ConfigValidator) ping(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExternalService, err)
	}
	return nil
}
