package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func TestConfigValidator_Unconfigured(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateEmbedding(nil))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Model: "m"}))
	assert.NoError(t, v.ValidateLLM(nil))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Model: "m"}))

	// Key-less OpenAI is not configured yet, so there is nothing to ping.
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOpenAI}))
}

func TestConfigValidator_RejectsBadProviders(t *testing.T) {
	v := NewConfigValidator()

	err := v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: "cohere"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = v.ValidateLLM(&domain.LLMSettings{Provider: "unknown", APIKey: "k"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigValidator_UnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	v := NewConfigValidator().WithTimeout(time.Second)
	err := v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3", BaseURL: srv.URL})
	assert.ErrorIs(t, err, domain.ErrExternalService)
}

func TestConfigValidator_WithTimeoutIgnoresZero(t *testing.T) {
	v := NewConfigValidator().WithTimeout(0)
	assert.Equal(t, pingTimeout, v.timeout)
}
