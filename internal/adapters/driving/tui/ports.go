// Package tui provides the interactive review queue for answerdesk.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Answer lists the queue and records decisions.
	Answer driving.AnswerService

	// Dispatch sends approved drafts. Optional; without it the send key
	// reports an error.
	Dispatch driving.DispatchService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
