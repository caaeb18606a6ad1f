package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

func TestAsk(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("ask", "inq-1", "Does it work with USB-C?", "-k", "8")

	require.NoError(t, err)
	assert.Equal(t, 8, ts.verification.topK)
	assert.Contains(t, out, "Verdict:    SUPPORTED")
	assert.Contains(t, out, "Confidence: 0.91")
	assert.Contains(t, out, "1. [0.910] c1 (doc doc-1, KNOWLEDGE_BASE)")
	assert.Contains(t, out, "Works with USB-C")
}

func TestAsk_NoEvidence(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.verification.res = &domain.VerificationResult{
		Verdict:   domain.VerdictRefuted,
		Reason:    "no evidence retrieved",
		RiskFlags: []domain.RiskFlag{domain.RiskInsufficientEvidence},
	}

	out, err := executeCommand("ask", "inq-1", "Is it waterproof?")

	require.NoError(t, err)
	assert.Contains(t, out, "REFUTED")
	assert.Contains(t, out, "Risk flags: [INSUFFICIENT_EVIDENCE]")
	assert.Contains(t, out, "No evidence found.")
}

func TestAsk_ExternalFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.verification.err = domain.ErrExternalService

	_, err := executeCommand("ask", "inq-1", "q")

	assert.Equal(t, 5, ExitCode(err))
}
