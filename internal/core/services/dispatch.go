package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// Ensure DispatchService implements the interface.
var _ driving.DispatchService = (*DispatchService)(nil)

// DispatchService delivers APPROVED drafts through the first sender that
// supports the channel. Delivery is idempotent per (answer, send-request id).
type DispatchService struct {
	answers   driven.AnswerStore
	attempts  driven.SendAttemptStore
	inquiries driven.InquiryStore
	senders   []driven.MessageSender
	notifier  driven.Notifier
	locks     *keyLock
	now       func() time.Time
}

// NewDispatchService creates a dispatch service. Senders are consulted in
// order; nil senders are skipped.
func NewDispatchService(
	answers driven.AnswerStore,
	attempts driven.SendAttemptStore,
	inquiries driven.InquiryStore,
	notifier driven.Notifier,
	senders ...driven.MessageSender,
) *DispatchService {
	s := &DispatchService{
		answers:   answers,
		attempts:  attempts,
		inquiries: inquiries,
		notifier:  notifier,
		locks:     newKeyLock(),
		now:       time.Now,
	}
	for _, snd := range senders {
		if snd != nil {
			s.senders = append(s.senders, snd)
		}
	}
	return s
}

// Senders returns the configured sender names in selection order.
func (s *DispatchService) Senders() []string {
	names := make([]string, len(s.senders))
	for i, snd := range s.senders {
		names[i] = snd.Name()
	}
	return names
}

// Send dispatches an APPROVED draft. A request id that already produced a
// SENT attempt for this answer returns the earlier message id and logs
// DUPLICATE_BLOCKED without delivering again.
func (s *DispatchService) Send(ctx context.Context, req driving.SendRequest) (*domain.SendResult, error) {
	logger.Section("Dispatch")

	if strings.TrimSpace(req.AnswerID) == "" {
		return nil, fmt.Errorf("answer id is required: %w", domain.ErrInvalidInput)
	}
	requestID := strings.TrimSpace(req.SendRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
		logger.Debug("No send-request id supplied, generated %s", requestID)
	}

	// One delivery per answer at a time; the (answer, request) lookup
	// below must see any send that finished while we waited.
	unlock := s.locks.Lock(req.AnswerID)
	defer unlock()

	draft, err := s.answers.GetAnswer(ctx, req.AnswerID)
	if err != nil {
		return nil, err
	}

	prior, err := s.attempts.FindSent(ctx, draft.ID, requestID)
	switch {
	case err == nil:
		return s.blockDuplicate(ctx, draft, prior)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup prior send: %w", err)
	}

	if draft.Status != domain.AnswerApproved {
		return nil, fmt.Errorf("send answer %s in status %s: %w", draft.ID, draft.Status, domain.ErrNotApproved)
	}

	channel := req.Channel
	if channel == "" {
		channel = draft.Channel
	}
	sender := s.senderFor(channel)
	if sender == nil {
		return nil, fmt.Errorf("no sender for channel %q: %w", channel, domain.ErrUnsupportedChannel)
	}

	cmd := domain.SendCommand{
		AnswerID:      draft.ID,
		InquiryID:     draft.InquiryID,
		SendRequestID: requestID,
		Channel:       channel,
		Body:          draft.Text,
	}
	if s.inquiries != nil {
		if inq, err := s.inquiries.GetInquiry(ctx, draft.InquiryID); err == nil {
			cmd.Recipient = inq.CustomerContact
			cmd.RecipientName = inq.CustomerName
			cmd.Subject = replySubject(inq.Subject)
		} else {
			logger.Warn("inquiry %s not found for dispatch: %v", draft.InquiryID, err)
		}
	}

	logger.Debug("Sending %s via %s (request %s)", draft.ID, sender.Name(), requestID)
	receipt, sendErr := sender.Send(ctx, cmd)
	if sendErr != nil {
		return nil, s.recordFailure(ctx, draft, requestID, channel, sender.Name(), sendErr)
	}

	if receipt.Provider == "" {
		receipt.Provider = sender.Name()
	}
	if receipt.MessageID == "" {
		receipt.MessageID = receipt.Provider + "-" + uuid.New().String()
	}
	return s.recordSuccess(ctx, draft, requestID, channel, receipt)
}

func (s *DispatchService) blockDuplicate(
	ctx context.Context, draft *domain.AnswerDraft, prior *domain.SendAttempt,
) (*domain.SendResult, error) {
	logger.Info("Duplicate send blocked for %s (request %s)", draft.ID, prior.SendRequestID)
	attempt := &domain.SendAttempt{
		ID:            uuid.New().String(),
		InquiryID:     draft.InquiryID,
		AnswerID:      draft.ID,
		SendRequestID: prior.SendRequestID,
		Outcome:       domain.SendDuplicateBlocked,
		Channel:       prior.Channel,
		Provider:      prior.Provider,
		MessageID:     prior.MessageID,
		Detail:        "already sent as " + prior.MessageID,
		CreatedAt:     s.now(),
	}
	if err := s.attempts.AppendSendAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("append send attempt: %w", err)
	}
	return &domain.SendResult{
		AnswerID:      draft.ID,
		SendRequestID: prior.SendRequestID,
		Outcome:       domain.SendDuplicateBlocked,
		Provider:      prior.Provider,
		MessageID:     prior.MessageID,
		Duplicate:     true,
	}, nil
}

func (s *DispatchService) recordFailure(
	ctx context.Context, draft *domain.AnswerDraft, requestID string, channel domain.Channel, provider string, sendErr error,
) error {
	logger.Warn("delivery of %s via %s failed: %v", draft.ID, provider, sendErr)
	attempt := &domain.SendAttempt{
		ID:            uuid.New().String(),
		InquiryID:     draft.InquiryID,
		AnswerID:      draft.ID,
		SendRequestID: requestID,
		Outcome:       domain.SendFailed,
		Channel:       channel,
		Provider:      provider,
		Detail:        sendErr.Error(),
		CreatedAt:     s.now(),
	}
	if err := s.attempts.AppendSendAttempt(ctx, attempt); err != nil {
		logger.Warn("failed to record send attempt: %v", err)
	}
	emit(ctx, s.notifier, domain.Event{
		Type:      domain.EventAnswerSendError,
		InquiryID: draft.InquiryID,
		SubjectID: draft.ID,
		Data:      map[string]string{"provider": provider, "error": sendErr.Error()},
		At:        s.now(),
	})
	return fmt.Errorf("send answer %s: %w: %w", draft.ID, domain.ErrDeliveryFailed, sendErr)
}

func (s *DispatchService) recordSuccess(
	ctx context.Context, draft *domain.AnswerDraft, requestID string, channel domain.Channel, receipt domain.SendReceipt,
) (*domain.SendResult, error) {
	at := s.now()
	attempt := &domain.SendAttempt{
		ID:            uuid.New().String(),
		InquiryID:     draft.InquiryID,
		AnswerID:      draft.ID,
		SendRequestID: requestID,
		Outcome:       domain.SendSent,
		Channel:       channel,
		Provider:      receipt.Provider,
		MessageID:     receipt.MessageID,
		CreatedAt:     at,
	}
	if err := s.attempts.AppendSendAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("append send attempt: %w", err)
	}

	if err := draft.Transition(domain.AnswerSent, at); err != nil {
		return nil, err
	}
	draft.SentBy = receipt.Provider
	draft.SentChannel = channel
	draft.MessageID = receipt.MessageID
	draft.SendRequestID = requestID
	draft.SentAt = &at
	if err := s.answers.MarkAnswerSent(ctx, draft); err != nil {
		// Another process moved the draft out of APPROVED while we were
		// delivering. The SENT attempt above is the audit trail.
		logger.Error(err, "answer %s delivered as %s but not marked sent", draft.ID, receipt.MessageID)
		return nil, fmt.Errorf("mark answer sent: %w", err)
	}

	emit(ctx, s.notifier, domain.Event{
		Type:      domain.EventAnswerSent,
		InquiryID: draft.InquiryID,
		SubjectID: draft.ID,
		Data:      map[string]string{"provider": receipt.Provider, "messageId": receipt.MessageID},
		At:        at,
	})
	logger.Info("Sent %s via %s as %s", draft.ID, receipt.Provider, receipt.MessageID)
	return &domain.SendResult{
		AnswerID:      draft.ID,
		SendRequestID: requestID,
		Outcome:       domain.SendSent,
		Provider:      receipt.Provider,
		MessageID:     receipt.MessageID,
	}, nil
}

// Attempts returns the dispatch log of a draft.
func (s *DispatchService) Attempts(ctx context.Context, answerID string) ([]domain.SendAttempt, error) {
	return s.attempts.ListSendAttempts(ctx, answerID)
}

func (s *DispatchService) senderFor(channel domain.Channel) driven.MessageSender {
	for _, snd := range s.senders {
		if snd.Supports(channel) {
			return snd
		}
	}
	return nil
}

// replySubject builds a single-line reply subject. Line breaks in the
// inquiry subject are folded to spaces so they never reach a header block.
func replySubject(subject string) string {
	subject = strings.Join(strings.Fields(subject), " ")
	switch {
	case subject == "":
		return "Re: your inquiry"
	case strings.HasPrefix(strings.ToLower(subject), "re:"):
		return subject
	default:
		return "Re: " + subject
	}
}
