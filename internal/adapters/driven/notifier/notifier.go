// Package notifier provides event sinks: the log, a webhook and a fan-out.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// DefaultWebhookTimeout bounds one webhook POST.
const DefaultWebhookTimeout = 5 * time.Second

var (
	_ driven.Notifier = Log{}
	_ driven.Notifier = (*Webhook)(nil)
	_ driven.Notifier = Multi(nil)
)

// Log writes events to the debug log.
type Log struct{}

// Notify logs the event.
func (Log) Notify(_ context.Context, e domain.Event) {
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, e.Data[k])
	}
	logger.Debug("event %s inquiry=%s subject=%s%s", e.Type, e.InquiryID, e.SubjectID, b.String())
}

// Webhook POSTs each event as JSON from a background goroutine.
type Webhook struct {
	url    string
	client *http.Client
	wg     sync.WaitGroup
}

// NewWebhook creates a webhook notifier for url.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: DefaultWebhookTimeout},
	}
}

// Notify returns immediately; delivery failures are logged.
func (w *Webhook) Notify(_ context.Context, e domain.Event) {
	body, err := json.Marshal(e)
	if err != nil {
		logger.Warn("webhook: marshal %s: %v", e.Type, err)
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		// Detached from the caller: the event outlives the request that raised it.
		ctx, cancel := context.WithTimeout(context.Background(), DefaultWebhookTimeout)
		defer cancel()
		if err := w.post(ctx, body); err != nil {
			logger.Warn("webhook: %s: %v", e.Type, err)
		}
	}()
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}

// Wait blocks until in-flight deliveries finish.
func (w *Webhook) Wait() {
	w.wg.Wait()
}

// Multi fans an event out to every notifier in order.
type Multi []driven.Notifier

// NewMulti drops nil notifiers. A single notifier is returned as is.
func NewMulti(notifiers ...driven.Notifier) driven.Notifier {
	var m Multi
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

// Notify forwards e to each notifier.
func (m Multi) Notify(ctx context.Context, e domain.Event) {
	for _, n := range m {
		n.Notify(ctx, e)
	}
}
