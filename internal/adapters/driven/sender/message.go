package sender

import (
	"mime"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// composeMessage renders an RFC 822 plain-text reply. Every header value
// passes through headerValue, so a value can never open a new header line.
func composeMessage(from, to *mail.Address, messageID string, date time.Time, cmd domain.SendCommand) []byte {
	subject := cmd.Subject
	if strings.TrimSpace(subject) == "" {
		subject = "Re: your inquiry"
	}

	var b strings.Builder
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(headerValue(v))
		b.WriteString("\r\n")
	}
	header("From", from.String())
	header("To", to.String())
	header("Subject", mimeHeader(subject))
	header("Date", date.Format(time.RFC1123Z))
	header("Message-ID", messageID)
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	header("Content-Transfer-Encoding", "8bit")
	if cmd.SendRequestID != "" {
		header("X-Answerdesk-Request", cmd.SendRequestID)
	}
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(cmd.Body, "\r\n", "\n"), "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// mimeHeader folds line breaks to spaces and Q-encodes non-ASCII text.
func mimeHeader(s string) string {
	s = headerValue(s)
	for _, r := range s {
		if r > unicode.MaxASCII {
			return mime.QEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// headerValue replaces control characters, CR and LF included, with
// spaces and collapses the resulting runs.
func headerValue(s string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(clean), " ")
}
