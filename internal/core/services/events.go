package services

import (
	"context"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// emit hands an event to the notifier. Notifier panics are logged and
// never reach the caller.
func emit(ctx context.Context, n driven.Notifier, event domain.Event) {
	if n == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("notifier panicked on %s: %v", event.Type, r)
		}
	}()
	n.Notify(ctx, event)
}
