package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/adapters/driven/ai"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/sender"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
	"github.com/custodia-labs/answerdesk/internal/core/services"
)

func newSettings(t *testing.T, mutate func(*domain.AppSettings)) driving.SettingsService {
	t.Helper()
	svc := services.NewSettingsService(memory.NewConfigStore(), ai.NewConfigValidator())
	s := domain.DefaultAppSettings()
	s.Storage.Driver = domain.StorageMemory
	s.Vector.Backend = domain.VectorMemory
	if mutate != nil {
		mutate(&s)
	}
	require.NoError(t, svc.Save(&s))
	return svc
}

func TestBuildServices_MemoryDrivers(t *testing.T) {
	var out bytes.Buffer
	svc, cleanup, err := buildServices(context.Background(), t.TempDir(), newSettings(t, nil), &out)
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, svc.Inquiry)
	assert.NotNil(t, svc.Document)
	assert.NotNil(t, svc.Ingestion)
	assert.NotNil(t, svc.Verification)
	assert.NotNil(t, svc.Answer)
	assert.NotNil(t, svc.Dispatch)
	assert.NotNil(t, svc.Settings)
	assert.Nil(t, svc.Watch, "no inbox configured")

	inq, err := svc.Inquiry.Create(context.Background(), driving.CreateInquiryRequest{
		CustomerName:    "Dana",
		CustomerContact: "dana@example.com",
		Question:        "Is the X200 waterproof?",
		Channel:         domain.ChannelEmail,
	})
	require.NoError(t, err)

	got, err := svc.Inquiry.Get(context.Background(), inq.ID)
	require.NoError(t, err)
	assert.Equal(t, "Is the X200 waterproof?", got.Question)
}

func TestBuildServices_InboxEnablesWatch(t *testing.T) {
	inbox := t.TempDir()
	settings := newSettings(t, func(s *domain.AppSettings) { s.InboxDir = inbox })

	svc, cleanup, err := buildServices(context.Background(), t.TempDir(), settings, &bytes.Buffer{})
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, svc.Watch)
}

func TestBuildServices_SQLiteAndChromem(t *testing.T) {
	settings := newSettings(t, func(s *domain.AppSettings) {
		s.Storage.Driver = domain.StorageSQLite
		s.Vector.Backend = domain.VectorChromem
	})

	svc, cleanup, err := buildServices(context.Background(), t.TempDir(), settings, &bytes.Buffer{})
	require.NoError(t, err)
	defer cleanup()

	list, err := svc.Inquiry.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBuildServices_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.AppSettings)
	}{
		{"pgvector without postgres", func(s *domain.AppSettings) { s.Vector.Backend = domain.VectorPGVector }},
		{"postgres without dsn", func(s *domain.AppSettings) { s.Storage.Driver = domain.StoragePostgres }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := buildServices(context.Background(), t.TempDir(), newSettings(t, tt.mutate), &bytes.Buffer{})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestBuildSenders(t *testing.T) {
	t.Run("console covers everything by default", func(t *testing.T) {
		s := domain.DefaultAppSettings()
		senders, err := buildSenders(context.Background(), &s, &bytes.Buffer{})
		require.NoError(t, err)
		require.Len(t, senders, 1)
		assert.Equal(t, sender.ConsoleName, senders[0].Name())
		assert.True(t, senders[0].Supports(domain.ChannelEmail))
		assert.True(t, senders[0].Supports(domain.ChannelMessenger))
	})

	t.Run("smtp takes email", func(t *testing.T) {
		s := domain.DefaultAppSettings()
		s.Dispatch.SMTPHost = "smtp.example.com"
		s.Dispatch.From = "support@example.com"
		senders, err := buildSenders(context.Background(), &s, &bytes.Buffer{})
		require.NoError(t, err)
		require.Len(t, senders, 2)
		assert.Equal(t, sender.SMTPName, senders[0].Name())
		assert.False(t, senders[1].Supports(domain.ChannelEmail))
		assert.True(t, senders[1].Supports(domain.ChannelMessenger))
	})

	t.Run("gmail wins over smtp", func(t *testing.T) {
		s := domain.DefaultAppSettings()
		s.Dispatch.SMTPHost = "smtp.example.com"
		s.Dispatch.From = "support@example.com"
		s.Dispatch.GmailClientID = "client"
		s.Dispatch.GmailClientSecret = "secret"
		s.Dispatch.GmailRefreshToken = "refresh"
		senders, err := buildSenders(context.Background(), &s, &bytes.Buffer{})
		require.NoError(t, err)
		require.Len(t, senders, 2)
		assert.Equal(t, sender.GmailName, senders[0].Name())
		assert.True(t, senders[0].Supports(domain.ChannelEmail))
	})
}

func TestVectorDimensions(t *testing.T) {
	s := domain.DefaultAppSettings()
	s.Embedding.Model = "nomic-embed-text"
	assert.Equal(t, 768, vectorDimensions(&s, nil))

	s.Embedding.Model = "unknown-model"
	assert.Equal(t, defaultDimensions, vectorDimensions(&s, nil))
}
