package driven

import (
	"context"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// MessageSender delivers a draft over one or more channels.
type MessageSender interface {
	// Name identifies the sender; it is recorded as the provider of a send.
	Name() string

	// Supports reports whether the sender can deliver on channel.
	Supports(channel domain.Channel) bool

	// Send delivers cmd. Retries are the sender's concern; an error is terminal.
	Send(ctx context.Context, cmd domain.SendCommand) (domain.SendReceipt, error)
}

// Notifier receives fire-and-forget events. Implementations must not block
// the caller for long and must swallow their own failures.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event)
}
