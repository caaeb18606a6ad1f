package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// Telegram defaults.
const (
	TelegramName           = "telegram"
	DefaultTelegramBaseURL = "https://api.telegram.org"
)

var _ driven.MessageSender = (*TelegramSender)(nil)

// TelegramSender posts replies through the Telegram bot API.
type TelegramSender struct {
	token         string
	defaultChatID string
	baseURL       string
	client        *http.Client
}

// NewTelegramSender registers the bot token. defaultChatID is used when the
// inquiry has no chat id of its own.
func NewTelegramSender(token, defaultChatID string) *TelegramSender {
	return &TelegramSender{
		token:         token,
		defaultChatID: defaultChatID,
		baseURL:       DefaultTelegramBaseURL,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the provider name.
func (t *TelegramSender) Name() string { return TelegramName }

// Supports reports the messenger channel only.
func (t *TelegramSender) Supports(channel domain.Channel) bool {
	return channel == domain.ChannelMessenger
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// Send posts cmd.Body to the recipient chat.
func (t *TelegramSender) Send(ctx context.Context, cmd domain.SendCommand) (domain.SendReceipt, error) {
	chatID := cmd.Recipient
	if chatID == "" {
		chatID = t.defaultChatID
	}
	if t.token == "" || chatID == "" {
		return domain.SendReceipt{}, fmt.Errorf("telegram sender misconfigured: %w", domain.ErrInvalidInput)
	}

	body, err := json.Marshal(map[string]string{"chat_id": chatID, "text": cmd.Body})
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("telegram: marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("telegram: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.SendReceipt{}, fmt.Errorf("telegram: do request: %w: %w", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	var out telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.SendReceipt{}, fmt.Errorf("telegram: %s: %w", resp.Status, domain.ErrExternalService)
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		return domain.SendReceipt{}, fmt.Errorf("telegram error: %s %s: %w", resp.Status, out.Description, domain.ErrExternalService)
	}

	return domain.SendReceipt{
		Provider:  TelegramName,
		MessageID: "tg-" + chatID + "-" + strconv.FormatInt(out.Result.MessageID, 10),
	}, nil
}
