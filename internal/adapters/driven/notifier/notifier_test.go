package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) Notify(_ context.Context, e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestLog_Notify(t *testing.T) {
	buf := new(bytes.Buffer)
	logger.SetOutput(buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	Log{}.Notify(context.Background(), domain.Event{
		Type: domain.EventAnswerSent, SubjectID: "a1", Data: map[string]string{"provider": "smtp"},
	})
	assert.Contains(t, buf.String(), "answer.sent")
	assert.Contains(t, buf.String(), "provider=smtp")
}

func TestWebhook_Notify(t *testing.T) {
	got := make(chan domain.Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e domain.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		got <- e
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL)
	wh.Notify(context.Background(), domain.Event{
		Type: domain.EventAnswerCreated, InquiryID: "i1", SubjectID: "a1", At: time.Now(),
	})
	wh.Wait()

	select {
	case e := <-got:
		assert.Equal(t, domain.EventAnswerCreated, e.Type)
		assert.Equal(t, "a1", e.SubjectID)
	default:
		t.Fatal("webhook not called")
	}
}

func TestWebhook_FailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL)
	assert.NotPanics(t, func() {
		wh.Notify(context.Background(), domain.Event{Type: domain.EventDocumentStatus})
		wh.Wait()
	})
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}

	single := NewMulti(nil, a)
	assert.Same(t, a, single)

	m := NewMulti(a, nil, b)
	m.Notify(context.Background(), domain.Event{Type: domain.EventAnswerReviewed})
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}
