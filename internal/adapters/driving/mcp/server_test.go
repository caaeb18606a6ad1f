package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("missing ports returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingDocumentService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(requiredPorts())
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("document service required", func(t *testing.T) {
		p := requiredPorts()
		p.Document = nil
		assert.ErrorIs(t, p.Validate(), ErrMissingDocumentService)
	})

	t.Run("verification service required", func(t *testing.T) {
		p := requiredPorts()
		p.Verification = nil
		assert.ErrorIs(t, p.Validate(), ErrMissingVerificationService)
	})

	t.Run("answer service required", func(t *testing.T) {
		p := requiredPorts()
		p.Answer = nil
		assert.ErrorIs(t, p.Validate(), ErrMissingAnswerService)
	})

	t.Run("optional ports may be nil", func(t *testing.T) {
		assert.NoError(t, requiredPorts().Validate())
	})
}
