package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{fmt.Errorf("wrap: %w", domain.ErrInvalidInput), 2},
		{domain.ErrUnsupportedFormat, 2},
		{domain.ErrNotFound, 3},
		{domain.ErrIndexingInProgress, 4},
		{domain.ErrDeliveryFailed, 5},
		{errors.New("boom"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}

func TestFormatError(t *testing.T) {
	err := fmt.Errorf("get answer: %w", domain.ErrNotFound)
	assert.Equal(t, "error [not_found]: get answer: not found", FormatError(err))
}

func TestInitializer_RunsOnceForServiceCommands(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	defer SetInitializer(nil)

	calls, cleaned := 0, 0
	SetInitializer(func(_ context.Context) (*Services, func(), error) {
		calls++
		return &Services{Inquiry: ts.inquiry}, func() { cleaned++ }, nil
	})

	_, err := executeCommand("inquiry", "list")
	require.NoError(t, err)
	_, err = executeCommand("inquiry", "list")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cleaned)
}

func TestInitializer_SkippedForVersion(t *testing.T) {
	defer SetInitializer(nil)

	called := false
	SetInitializer(func(_ context.Context) (*Services, func(), error) {
		called = true
		return nil, nil, errors.New("should not run")
	})

	out, err := executeCommand("version")

	require.NoError(t, err)
	assert.False(t, called)
	assert.Contains(t, out, "answerdesk version")
}

func TestInitializer_ErrorIsReturned(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer SetInitializer(nil)

	SetInitializer(func(_ context.Context) (*Services, func(), error) {
		return nil, nil, fmt.Errorf("open store: %w", domain.ErrExternalService)
	})

	_, err := executeCommand("inquiry", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialise services")
	assert.Equal(t, 5, ExitCode(err))
}

func TestNeedsNoServices(t *testing.T) {
	assert.True(t, needsNoServices(versionCmd))
	assert.True(t, needsNoServices(settingsShowCmd))
	assert.False(t, needsNoServices(answerSendCmd))
}

func TestSetVersion(t *testing.T) {
	orig := version
	defer func() { version = orig }()

	SetVersion("")
	assert.Equal(t, orig, version)
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}
