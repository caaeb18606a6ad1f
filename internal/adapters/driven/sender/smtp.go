package sender

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// SMTPName is the provider name recorded for email sends.
const SMTPName = "smtp"

var _ driven.MessageSender = (*SMTPSender)(nil)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Backoff  Backoff
}

// sendMailFunc matches smtp.SendMail.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers email through a relay, retrying transient failures.
type SMTPSender struct {
	cfg      SMTPConfig
	sendMail sendMailFunc
	sleep    sleepFunc
	now      func() time.Time
}

// NewSMTPSender creates an email sender from dispatch settings.
func NewSMTPSender(s domain.DispatchSettings) *SMTPSender {
	port := s.SMTPPort
	if port == 0 {
		port = domain.DefaultSMTPPort
	}
	return &SMTPSender{
		cfg: SMTPConfig{
			Host:     s.SMTPHost,
			Port:     port,
			Username: s.SMTPUsername,
			Password: s.SMTPPassword,
			From:     s.From,
			Backoff:  backoffFrom(s),
		},
		sendMail: smtp.SendMail,
		sleep:    sleepCtx,
		now:      time.Now,
	}
}

// Name returns the provider name.
func (s *SMTPSender) Name() string { return SMTPName }

// Supports reports email only.
func (s *SMTPSender) Supports(channel domain.Channel) bool {
	return channel == domain.ChannelEmail
}

// Send delivers cmd. SMTP gives no message id, so the Message-ID header is
// generated here and reported back.
func (s *SMTPSender) Send(ctx context.Context, cmd domain.SendCommand) (domain.SendReceipt, error) {
	to, err := mail.ParseAddress(cmd.Recipient)
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("smtp: recipient %q: %w", cmd.Recipient, domain.ErrInvalidInput)
	}
	from, err := mail.ParseAddress(s.cfg.From)
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("smtp: sender %q: %w", s.cfg.From, domain.ErrInvalidInput)
	}
	if cmd.RecipientName != "" {
		to.Name = cmd.RecipientName
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), domainOf(from.Address))
	msg := s.buildMessage(from, to, messageID, cmd)
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	err = s.cfg.Backoff.do(ctx, s.sleep, isPermanent, func(int) error {
		return s.sendMail(addr, auth, from.Address, []string{to.Address}, msg)
	})
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("smtp: deliver to %s: %w", to.Address, err)
	}
	return domain.SendReceipt{Provider: SMTPName, MessageID: messageID}, nil
}

func (s *SMTPSender) buildMessage(from, to *mail.Address, messageID string, cmd domain.SendCommand) []byte {
	return composeMessage(from, to, messageID, s.now(), cmd)
}

func domainOf(addr string) string {
	if _, host, ok := strings.Cut(addr, "@"); ok && host != "" {
		return host
	}
	return "answerdesk.local"
}

// isPermanent reports 5xx SMTP replies and invalid input. Everything else,
// including network errors and 4xx replies, is retried.
func isPermanent(err error) bool {
	if errors.Is(err, domain.ErrInvalidInput) {
		return true
	}
	var tp *textproto.Error
	if errors.As(err, &tp) {
		return tp.Code >= 500
	}
	return false
}
