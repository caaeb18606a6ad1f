package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	mu        sync.Mutex
	embedding []float32
	embedErr  error
	failOn    string
	calls     int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failOn != "" && bytes.Contains([]byte(text), []byte(m.failOn)) {
		return nil, errors.New("embedding backend rejected input")
	}
	if m.embedding == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return 3 }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	mu        sync.Mutex
	records   map[string]driven.VectorRecord
	hits      []driven.VectorHit
	searchErr error
	upsertErr error
	deleteErr error
	deleted   []string
}

func newMockVectorIndex() *mockVectorIndex {
	return &mockVectorIndex{records: make(map[string]driven.VectorRecord)}
}

func (m *mockVectorIndex) Upsert(_ context.Context, rec driven.VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.records[rec.ChunkID] = rec
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

func (m *mockVectorIndex) DeleteByDocumentID(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, documentID)
	for id, rec := range m.records {
		if rec.DocumentID == documentID {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *mockVectorIndex) Close() error { return nil }

func (m *mockVectorIndex) chunkIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) Chat(ctx context.Context, msgs []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	var last string
	if len(msgs) > 0 {
		last = msgs[len(msgs)-1].Content
	}
	return m.Generate(ctx, last, driven.GenerateOptions{})
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

// mockReviewer implements driven.Reviewer for testing.
type mockReviewer struct {
	name   string
	result domain.AIReviewResult
	err    error
	calls  int
}

func (m *mockReviewer) Name() string {
	if m.name == "" {
		return "stub-reviewer"
	}
	return m.name
}

func (m *mockReviewer) Review(_ context.Context, draft *domain.AnswerDraft) (*domain.AIReviewResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	r := m.result
	r.AnswerID = draft.ID
	r.InquiryID = draft.InquiryID
	if r.Reviewer == "" {
		r.Reviewer = m.Name()
	}
	return &r, nil
}

// mockSender implements driven.MessageSender for testing.
type mockSender struct {
	mu       sync.Mutex
	name     string
	channels []domain.Channel
	err      error
	delay    time.Duration
	onSend   func()
	sent     []domain.SendCommand
}

func (m *mockSender) Name() string { return m.name }

func (m *mockSender) Supports(ch domain.Channel) bool {
	for _, c := range m.channels {
		if c == ch {
			return true
		}
	}
	return false
}

func (m *mockSender) Send(_ context.Context, cmd domain.SendCommand) (domain.SendReceipt, error) {
	time.Sleep(m.delay)
	if m.onSend != nil {
		m.onSend()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.SendReceipt{}, m.err
	}
	m.sent = append(m.sent, cmd)
	return domain.SendReceipt{Provider: m.name, MessageID: fmt.Sprintf("%s-%d", m.name, len(m.sent))}, nil
}

func (m *mockSender) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// mockNotifier records events.
type mockNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (m *mockNotifier) Notify(_ context.Context, e domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *mockNotifier) types() []domain.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EventType, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

// mockExtractorRegistry implements driven.ExtractorRegistry for testing.
type mockExtractorRegistry struct {
	text string
	err  error
}

func (m *mockExtractorRegistry) Extract(_ context.Context, _ *domain.RawFile) (string, error) {
	return m.text, m.err
}

func (m *mockExtractorRegistry) Register(_ driven.TextExtractor) {}

func (m *mockExtractorRegistry) SupportedMIMETypes() []string { return []string{"text/plain"} }

// mockOCR implements driven.OCRService for testing.
type mockOCR struct {
	result driven.OCRResult
	err    error
	calls  int
}

func (m *mockOCR) Extract(_ context.Context, _ *domain.RawFile) (driven.OCRResult, error) {
	m.calls++
	return m.result, m.err
}

// mockContentStore implements driven.ContentStore in memory.
type mockContentStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMockContentStore() *mockContentStore {
	return &mockContentStore{blobs: make(map[string][]byte)}
}

func (m *mockContentStore) Put(_ context.Context, name string, r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := fmt.Sprintf("blob-%d-%s", len(m.blobs), name)
	m.blobs[ref] = data
	return ref, int64(len(data)), nil
}

func (m *mockContentStore) Get(_ context.Context, ref string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (m *mockContentStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, ref)
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}
