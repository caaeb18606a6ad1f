package sender

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// GmailName is the provider name recorded for Gmail API sends.
const GmailName = "gmail"

// googleEndpoint is the Google OAuth endpoint used to refresh the access token.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

var _ driven.MessageSender = (*GmailSender)(nil)

// GmailSender delivers email through users.messages.send as the
// authorised account.
type GmailSender struct {
	svc     *gmail.Service
	from    string
	backoff Backoff
	sleep   sleepFunc
	now     func() time.Time
}

// NewGmailSender builds a Gmail API client that refreshes its access token
// from the configured refresh token. Extra options are applied after the
// token source.
func NewGmailSender(ctx context.Context, s domain.DispatchSettings, opts ...option.ClientOption) (*GmailSender, error) {
	if !s.GmailConfigured() {
		return nil, fmt.Errorf("gmail: client id, secret, refresh token and from are required: %w", domain.ErrInvalidInput)
	}
	cfg := &oauth2.Config{
		ClientID:     s.GmailClientID,
		ClientSecret: s.GmailClientSecret,
		Endpoint:     googleEndpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	ts := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: s.GmailRefreshToken})

	svc, err := gmail.NewService(ctx, append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gmail: create service: %w", err)
	}
	return &GmailSender{
		svc:     svc,
		from:    s.From,
		backoff: backoffFrom(s),
		sleep:   sleepCtx,
		now:     time.Now,
	}, nil
}

// Name returns the provider name.
func (g *GmailSender) Name() string { return GmailName }

// Supports reports email only.
func (g *GmailSender) Supports(channel domain.Channel) bool {
	return channel == domain.ChannelEmail
}

// Send uploads cmd as a raw RFC 822 message. The receipt carries the Gmail
// message id.
func (g *GmailSender) Send(ctx context.Context, cmd domain.SendCommand) (domain.SendReceipt, error) {
	to, err := mail.ParseAddress(cmd.Recipient)
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("gmail: recipient %q: %w", cmd.Recipient, domain.ErrInvalidInput)
	}
	from, err := mail.ParseAddress(g.from)
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("gmail: sender %q: %w", g.from, domain.ErrInvalidInput)
	}
	if cmd.RecipientName != "" {
		to.Name = cmd.RecipientName
	}

	headerID := fmt.Sprintf("<%s@%s>", uuid.New().String(), domainOf(from.Address))
	raw := composeMessage(from, to, headerID, g.now(), cmd)
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}

	var sent *gmail.Message
	err = g.backoff.do(ctx, g.sleep, isPermanentGoogle, func(int) error {
		var callErr error
		sent, callErr = g.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
		return callErr
	})
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("gmail: deliver to %s: %w", to.Address, err)
	}
	return domain.SendReceipt{Provider: GmailName, MessageID: sent.Id}, nil
}

// isPermanentGoogle reports 4xx API errors other than 408 and 429.
func isPermanentGoogle(err error) bool {
	if errors.Is(err, domain.ErrInvalidInput) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return false
		}
		return gerr.Code >= 400 && gerr.Code < 500
	}
	return false
}
