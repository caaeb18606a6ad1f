package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/adapters/driven/ai"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/services"
)

func setupSettings(t *testing.T) *services.SettingsService {
	t.Helper()
	orig := settingsService
	svc := services.NewSettingsService(memory.NewConfigStore(), ai.NewConfigValidator())
	SetSettingsService(svc)
	t.Cleanup(func() {
		settingsService = orig
		resetFlags()
	})
	return svc
}

func TestSettingsShow_Defaults(t *testing.T) {
	setupSettings(t)

	out, err := executeCommand("settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[Ingestion]")
	assert.Contains(t, out, "Chunk size: 1000 (overlap 150)")
	assert.Contains(t, out, "Driver: sqlite")
	assert.Contains(t, out, "Vector backend: chromem")
	assert.Contains(t, out, "Email: not configured")
	assert.Contains(t, out, "Retries: 3 attempts, 500ms initial backoff")
}

func TestSettingsShow_MasksSecrets(t *testing.T) {
	svc := setupSettings(t)
	require.NoError(t, svc.Set("storage.dsn", "postgres://desk:hunter2@db:5432/answerdesk"))
	require.NoError(t, svc.Set("dispatch.telegram_token", "123456:ABCDEFGHIJ"))

	out, err := executeCommand("settings")
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "postgres://desk:xxxxx@db:5432/answerdesk")
	assert.Contains(t, out, "Messenger: telegram (token 1234...GHIJ)")
}

func TestSettingsSet(t *testing.T) {
	svc := setupSettings(t)

	out, err := executeCommand("settings", "set", "storage.driver", "postgres")
	require.NoError(t, err)
	assert.Contains(t, out, "storage.driver updated.")

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StoragePostgres, got.Storage.Driver)
}

func TestSettingsSet_UnknownKey(t *testing.T) {
	setupSettings(t)

	_, err := executeCommand("settings", "set", "nope.key", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsSetKey_UnknownKind(t *testing.T) {
	setupSettings(t)

	_, err := executeCommand("settings", "set-key", "vision")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:xxxxx@h/db", maskDSN("postgres://u:secret@h/db"))
	assert.Equal(t, "postgres://h/db", maskDSN("postgres://h/db"))
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "****"},
		{"abc123", "****"},
		{"12345678", "****"},
		{"sk-1234567890abcdef", "sk-1...cdef"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, maskAPIKey(tt.input), tt.input)
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input    string
		max      int
		def      int
		expected int
	}{
		{"", 4, 1, 1},
		{"3", 4, 1, 3},
		{"0", 4, 1, 1},
		{"5", 4, 2, 2},
		{"x", 4, 2, 2},
		{"4", 4, 1, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseChoice(tt.input, tt.max, tt.def), "input %q", tt.input)
	}
}
