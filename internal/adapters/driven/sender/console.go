package sender

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// ConsoleName is the provider name recorded for console sends.
const ConsoleName = "console"

var _ driven.MessageSender = (*ConsoleSender)(nil)

// ConsoleSender prints replies instead of delivering them.
type ConsoleSender struct {
	mu       sync.Mutex
	w        io.Writer
	channels []domain.Channel
}

// NewConsoleSender writes to w for the given channels, or for email and
// messenger when none are given.
func NewConsoleSender(w io.Writer, channels ...domain.Channel) *ConsoleSender {
	if len(channels) == 0 {
		channels = []domain.Channel{domain.ChannelEmail, domain.ChannelMessenger}
	}
	return &ConsoleSender{w: w, channels: channels}
}

// Name returns the provider name.
func (c *ConsoleSender) Name() string { return ConsoleName }

// Supports reports the configured channels.
func (c *ConsoleSender) Supports(channel domain.Channel) bool {
	return slices.Contains(c.channels, channel)
}

// Send prints cmd.
func (c *ConsoleSender) Send(_ context.Context, cmd domain.SendCommand) (domain.SendReceipt, error) {
	id := ConsoleName + "-" + uuid.New().String()

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "----- %s to %s <%s> -----\nSubject: %s\n\n%s\n----- %s -----\n",
		cmd.Channel, cmd.RecipientName, cmd.Recipient, cmd.Subject, cmd.Body, id)
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("console: write: %w", err)
	}
	return domain.SendReceipt{Provider: ConsoleName, MessageID: id}, nil
}
