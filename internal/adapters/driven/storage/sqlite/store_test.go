package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func ts(sec int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, sec, 0, time.UTC)
}

// createTestDocument saves a document to satisfy chunk foreign keys.
func createTestDocument(t *testing.T, store *Store, docID, inquiryID string, created time.Time) *domain.Document {
	t.Helper()
	source := domain.SourceKnowledgeBase
	if inquiryID != "" {
		source = domain.SourceInquiry
	}
	doc := &domain.Document{
		ID:         docID,
		InquiryID:  inquiryID,
		SourceType: source,
		FileName:   docID + ".pdf",
		MIMEType:   "application/pdf",
		ContentRef: docID + ".pdf",
		Size:       42,
		Status:     domain.DocumentUploaded,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, store.DocumentStore().SaveDocument(context.Background(), doc))
	return doc
}

// ==================== Store Creation Tests ====================

func TestNewStore_CreatesDatabaseAndMigrates(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())

	v, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.InquiryStore().SaveInquiry(ctx, &domain.Inquiry{
		ID: "inq-1", Question: "q", Channel: domain.ChannelEmail, CreatedAt: ts(0), UpdatedAt: ts(0),
	}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	inq, err := reopened.InquiryStore().GetInquiry(ctx, "inq-1")
	require.NoError(t, err)
	assert.Equal(t, "q", inq.Question)

	v, err := reopened.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "migrations are not re-applied")
}

// ==================== Document Store Tests ====================

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	docs := store.DocumentStore()

	doc := createTestDocument(t, store, "doc-1", "inq-1", ts(0))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.FileName, got.FileName)
	assert.Equal(t, domain.SourceInquiry, got.SourceType)
	assert.Equal(t, domain.DocumentUploaded, got.Status)
	assert.Nil(t, got.OCRConfidence)
	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt))

	conf := 0.91
	got.Status = domain.DocumentIndexed
	got.OCRConfidence = &conf
	got.Text = "extracted text"
	got.ChunkCount = 3
	got.VectorCount = 3
	got.UpdatedAt = ts(5)
	require.NoError(t, docs.SaveDocument(ctx, got))

	updated, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentIndexed, updated.Status)
	require.NotNil(t, updated.OCRConfidence)
	assert.InDelta(t, 0.91, *updated.OCRConfidence, 1e-9)
	assert.Equal(t, "extracted text", updated.Text)
	assert.Equal(t, 3, updated.VectorCount)
}

func TestDocumentStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.DocumentStore().GetDocument(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.DocumentStore().GetChunk(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	docs := store.DocumentStore()

	createTestDocument(t, store, "kb-1", "", ts(0))
	createTestDocument(t, store, "att-1", "inq-1", ts(1))
	failed := createTestDocument(t, store, "att-2", "inq-1", ts(2))
	failed.Fail("boom", ts(3))
	require.NoError(t, docs.SaveDocument(ctx, failed))

	all, err := docs.ListDocuments(ctx, domain.DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "att-2", all[0].ID, "newest first")

	byInquiry, err := docs.ListDocuments(ctx, domain.DocumentFilter{InquiryID: "inq-1"})
	require.NoError(t, err)
	assert.Len(t, byInquiry, 2)

	byStatus, err := docs.ListDocuments(ctx, domain.DocumentFilter{Status: domain.DocumentFailed})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "boom", byStatus[0].LastError)

	limited, err := docs.ListDocuments(ctx, domain.DocumentFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDocumentStore_ReplaceChunks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	docs := store.DocumentStore()
	createTestDocument(t, store, "doc-1", "", ts(0))

	first := []domain.Chunk{
		{ID: "p1", DocumentID: "doc-1", Index: 0, EndOffset: 10, Content: "parent", Level: domain.ChunkParent, SourceType: domain.SourceKnowledgeBase},
		{ID: "c1", DocumentID: "doc-1", Index: 1, EndOffset: 5, Content: "child", Level: domain.ChunkChild, ParentChunkID: "p1",
			ContextPrefix: "ctx", EnrichedContent: "ctx\n\nchild", SourceType: domain.SourceKnowledgeBase},
	}
	require.NoError(t, docs.ReplaceChunks(ctx, "doc-1", first))

	chunks, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, domain.ChunkParent, chunks[0].Level)
	assert.Equal(t, "p1", chunks[1].ParentChunkID)
	assert.Equal(t, "ctx\n\nchild", chunks[1].EnrichedContent)

	// Replacement drops the previous set.
	second := []domain.Chunk{{ID: "f1", DocumentID: "doc-1", Content: "flat", SourceType: domain.SourceKnowledgeBase}}
	require.NoError(t, docs.ReplaceChunks(ctx, "doc-1", second))

	chunks, err = docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, domain.ChunkFlat, chunks[0].Level, "empty level defaults to FLAT")

	c, err := docs.GetChunk(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "flat", c.Content)

	require.NoError(t, docs.ReplaceChunks(ctx, "doc-1", nil))
	chunks, err = docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocumentStore_DeleteCascadesChunks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	docs := store.DocumentStore()
	createTestDocument(t, store, "doc-1", "", ts(0))
	require.NoError(t, docs.ReplaceChunks(ctx, "doc-1", []domain.Chunk{{ID: "c1", Content: "x", SourceType: domain.SourceKnowledgeBase}}))

	require.NoError(t, docs.DeleteDocument(ctx, "doc-1"))

	_, err := docs.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = docs.GetChunk(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Inquiry / Evidence Tests ====================

func TestInquiryStore_ListNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	inquiries := store.InquiryStore()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, inquiries.SaveInquiry(ctx, &domain.Inquiry{
			ID: id, CustomerName: "Dana", CustomerContact: "dana@example.com",
			Subject: "s", Question: "q", Channel: domain.ChannelMessenger,
			CreatedAt: ts(i), UpdatedAt: ts(i),
		}))
	}

	list, err := inquiries.ListInquiries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, domain.ChannelMessenger, list[0].Channel)

	_, err = inquiries.GetInquiry(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvidenceStore_AppendAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	ev := store.EvidenceStore()

	require.NoError(t, ev.AppendEvidence(ctx, nil))
	require.NoError(t, ev.AppendEvidence(ctx, []domain.RetrievalEvidence{
		{ID: "e1", InquiryID: "inq-1", ChunkID: "c1", Score: 0.9, Rank: 1, Question: "q", CreatedAt: ts(0)},
		{ID: "e2", InquiryID: "inq-1", ChunkID: "c2", Score: 0.7, Rank: 2, Question: "q", CreatedAt: ts(0)},
	}))
	require.NoError(t, ev.AppendEvidence(ctx, []domain.RetrievalEvidence{
		{ID: "e3", InquiryID: "inq-2", ChunkID: "c1", Score: 0.5, Rank: 1, Question: "other", CreatedAt: ts(1)},
	}))

	rows, err := ev.ListEvidence(ctx, "inq-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "e1", rows[0].ID)
	assert.Equal(t, 2, rows[1].Rank)
}

// ==================== Answer / Review / Send Tests ====================

func testAnswer(id, inquiryID string, version int, status domain.AnswerStatus, created time.Time) *domain.AnswerDraft {
	return &domain.AnswerDraft{
		ID:         id,
		InquiryID:  inquiryID,
		Version:    version,
		Question:   "Can P-100 run at 120 psi?",
		Verdict:    domain.VerdictSupported,
		Confidence: 0.9,
		Tone:       domain.ToneProfessional,
		Channel:    domain.ChannelEmail,
		Status:     status,
		Text:       "Yes.",
		Citations:  []string{"c1", "c2"},
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestAnswerStore_SaveGetAndVersions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	answers := store.AnswerStore()

	v, err := answers.NextVersion(ctx, "inq-1")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	a := testAnswer("a1", "inq-1", v, domain.AnswerDraftStatus, ts(0))
	a.RiskFlags = []domain.RiskFlag{domain.RiskLowConfidence}
	require.NoError(t, answers.SaveAnswer(ctx, a))

	got, err := answers.GetAnswer(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, got.Citations)
	assert.Equal(t, []domain.RiskFlag{domain.RiskLowConfidence}, got.RiskFlags)
	assert.Nil(t, got.ReviewScore)
	assert.Nil(t, got.SentAt)

	score := 90
	reviewed := ts(10)
	got.Status = domain.AnswerReviewed
	got.ReviewScore = &score
	got.ReviewDecision = domain.ReviewPass
	got.ReviewedBy = "llm"
	got.ReviewedAt = &reviewed
	require.NoError(t, answers.SaveAnswer(ctx, got))

	updated, err := answers.GetAnswer(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, updated.ReviewScore)
	assert.Equal(t, 90, *updated.ReviewScore)
	require.NotNil(t, updated.ReviewedAt)
	assert.True(t, reviewed.Equal(*updated.ReviewedAt))

	v, err = answers.NextVersion(ctx, "inq-1")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = answers.GetAnswer(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnswerStore_SaveBumpsVersionCounter(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	answers := store.AnswerStore()

	require.NoError(t, answers.SaveAnswer(ctx, testAnswer("a5", "inq-1", 5, domain.AnswerDraftStatus, ts(0))))

	v, err := answers.NextVersion(ctx, "inq-1")
	require.NoError(t, err)
	assert.Equal(t, 6, v)
}

func TestAnswerStore_DuplicateVersionConflicts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	answers := store.AnswerStore()

	require.NoError(t, answers.SaveAnswer(ctx, testAnswer("a1", "inq-1", 1, domain.AnswerDraftStatus, ts(0))))
	err := answers.SaveAnswer(ctx, testAnswer("a2", "inq-1", 1, domain.AnswerDraftStatus, ts(1)))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAnswerStore_MarkAnswerSentOnlyFromApproved(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	answers := store.AnswerStore()

	require.NoError(t, answers.SaveAnswer(ctx, testAnswer("a1", "inq-1", 1, domain.AnswerApproved, ts(0))))

	sentAt := ts(5)
	first := testAnswer("a1", "inq-1", 1, domain.AnswerSent, ts(0))
	first.SentBy = "smtp"
	first.MessageID = "m-1"
	first.SendRequestID = "r1"
	first.SentAt = &sentAt
	require.NoError(t, answers.MarkAnswerSent(ctx, first))

	second := *first
	second.MessageID = "m-2"
	second.SendRequestID = "r2"
	err := answers.MarkAnswerSent(ctx, &second)
	assert.ErrorIs(t, err, domain.ErrNotApproved)

	got, err := answers.GetAnswer(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerSent, got.Status)
	assert.Equal(t, "m-1", got.MessageID)
	assert.Equal(t, "r1", got.SendRequestID)

	missing := testAnswer("nope", "inq-1", 9, domain.AnswerSent, ts(0))
	assert.ErrorIs(t, answers.MarkAnswerSent(ctx, missing), domain.ErrNotFound)
}

func TestAnswerStore_Lists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	answers := store.AnswerStore()

	require.NoError(t, answers.SaveAnswer(ctx, testAnswer("a1", "inq-1", 1, domain.AnswerReviewed, ts(0))))
	require.NoError(t, answers.SaveAnswer(ctx, testAnswer("a2", "inq-1", 2, domain.AnswerDraftStatus, ts(1))))
	require.NoError(t, answers.SaveAnswer(ctx, testAnswer("b1", "inq-2", 1, domain.AnswerReviewed, ts(2))))

	versions, err := answers.ListAnswers(ctx, "inq-1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)

	queue, err := answers.ListAnswersByStatus(ctx, domain.AnswerReviewed)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "a1", queue[0].ID, "oldest first")

	none, err := answers.ListAnswersByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReviewStore_History(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	reviews := store.ReviewStore()

	_, err := reviews.LatestReview(ctx, "a1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, reviews.AppendReview(ctx, &domain.AIReviewResult{
		ID: "r1", AnswerID: "a1", InquiryID: "inq-1", Reviewer: "llm",
		Decision: domain.ReviewRevise, Score: 60, RevisedDraft: "better",
		Issues:    []domain.ReviewIssue{{Severity: domain.SeverityHigh, Category: "accuracy", Message: "wrong psi"}},
		CreatedAt: ts(0),
	}))
	require.NoError(t, reviews.AppendReview(ctx, &domain.AIReviewResult{
		ID: "r2", AnswerID: "a1", InquiryID: "inq-1", Reviewer: domain.HumanReviewerName,
		Decision: domain.ReviewPass, Score: 95, CreatedAt: ts(0),
	}))

	history, err := reviews.ListReviews(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Len(t, history[0].Issues, 1)
	assert.Equal(t, domain.SeverityHigh, history[0].Issues[0].Severity)

	latest, err := reviews.LatestReview(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "r2", latest.ID, "insertion order breaks equal timestamps")
}

func TestSendAttemptStore_SingleSentPerRequest(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	attempts := store.SendAttemptStore()

	failed := &domain.SendAttempt{ID: "s1", InquiryID: "inq-1", AnswerID: "a1", SendRequestID: "req-1",
		Outcome: domain.SendFailed, Channel: domain.ChannelEmail, Detail: "smtp down", CreatedAt: ts(0)}
	sent := &domain.SendAttempt{ID: "s2", InquiryID: "inq-1", AnswerID: "a1", SendRequestID: "req-1",
		Outcome: domain.SendSent, Channel: domain.ChannelEmail, Provider: "smtp", MessageID: "m-1", CreatedAt: ts(1)}
	require.NoError(t, attempts.AppendSendAttempt(ctx, failed))
	require.NoError(t, attempts.AppendSendAttempt(ctx, sent))

	dup := *sent
	dup.ID = "s3"
	err := attempts.AppendSendAttempt(ctx, &dup)
	assert.ErrorIs(t, err, domain.ErrConflict)

	blocked := &domain.SendAttempt{ID: "s4", InquiryID: "inq-1", AnswerID: "a1", SendRequestID: "req-1",
		Outcome: domain.SendDuplicateBlocked, Channel: domain.ChannelEmail, CreatedAt: ts(2)}
	require.NoError(t, attempts.AppendSendAttempt(ctx, blocked))

	found, err := attempts.FindSent(ctx, "a1", "req-1")
	require.NoError(t, err)
	assert.Equal(t, "m-1", found.MessageID)

	_, err = attempts.FindSent(ctx, "a1", "req-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := attempts.ListSendAttempts(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.SendFailed, all[0].Outcome)
	assert.Equal(t, domain.SendDuplicateBlocked, all[2].Outcome)
}
