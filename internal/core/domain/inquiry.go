package domain

import "time"

// Inquiry is a customer question that answers are drafted for.
type Inquiry struct {
	ID string

	// CustomerName is used in greetings.
	CustomerName string

	// CustomerContact is the address replies go to: an email address or a chat id.
	CustomerContact string

	Subject  string
	Question string

	// Channel is the preferred reply channel.
	Channel Channel

	CreatedAt time.Time
	UpdatedAt time.Time
}
