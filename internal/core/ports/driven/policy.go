package driven

import "github.com/custodia-labs/answerdesk/internal/core/domain"

// PolicyStore loads the verdict and approval policies.
// Implementations return the defaults for anything not overridden.
type PolicyStore interface {
	VerdictPolicy() (domain.VerdictPolicy, error)
	ApprovalPolicy() (domain.ApprovalPolicy, error)
}
