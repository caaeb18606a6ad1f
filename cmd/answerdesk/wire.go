package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/custodia-labs/answerdesk/internal/adapters/driven/ai"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/notifier"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/ocr"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/reviewer"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/sender"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/vector/chromem"
	vectormemory "github.com/custodia-labs/answerdesk/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/answerdesk/internal/adapters/driven/vector/pgvector"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/cli"
	"github.com/custodia-labs/answerdesk/internal/adapters/driving/watcher"
	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
	"github.com/custodia-labs/answerdesk/internal/core/services"
	"github.com/custodia-labs/answerdesk/internal/extractors"
	"github.com/custodia-labs/answerdesk/internal/logger"
	"github.com/custodia-labs/answerdesk/internal/postprocessors"
)

// defaultDimensions is used for pgvector when neither the embedding
// service nor the model table knows the vector size.
const defaultDimensions = 1536

// stores groups the persistence ports of one storage driver.
type stores struct {
	inquiries driven.InquiryStore
	evidence  driven.EvidenceStore
	documents driven.DocumentStore
	answers   driven.AnswerStore
	reviews   driven.ReviewStore
	attempts  driven.SendAttemptStore
	content   driven.ContentStore

	// pg is set for the postgres driver; pgvector shares its connection.
	pg    *postgres.Store
	close func() error
}

// closers runs cleanup funcs in reverse order.
type closers []func()

func (c *closers) add(fn func()) { *c = append(*c, fn) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// buildServices wires the driven adapters behind the driving services.
func buildServices(
	ctx context.Context, dir string, settingsService driving.SettingsService, out io.Writer,
) (*cli.Services, func(), error) {
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	var cleanup closers
	fail := func(err error) (*cli.Services, func(), error) {
		cleanup.run()
		return nil, nil, err
	}

	st, err := openStores(ctx, settings, dir)
	if err != nil {
		return fail(err)
	}
	cleanup.add(func() {
		if err := st.close(); err != nil {
			logger.Warn("close storage: %v", err)
		}
	})

	aiServices := ai.Init(&settings.Embedding, &settings.LLM)
	cleanup.add(aiServices.Close)

	vectors, err := openVectorIndex(ctx, settings, dir, st.pg, aiServices.EmbeddingService)
	if err != nil {
		return fail(err)
	}
	cleanup.add(func() { _ = vectors.Close() })

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return fail(err)
	}

	events, wait := buildNotifier(settings)
	cleanup.add(wait)

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.FromConfig(registry, settingsService.GetPipelineConfig(), postprocessors.Dependencies{
		LLM:     aiServices.LLMService,
		Prompts: prompts,
	})
	if err != nil {
		return fail(fmt.Errorf("build pipeline: %w", err))
	}

	var ocrService driven.OCRService
	if settings.OCR.IsConfigured() {
		ocrService = ocr.NewClient(settings.OCR.Endpoint, time.Duration(settings.OCR.TimeoutSeconds)*time.Second)
	}

	ingestion := services.NewIngestionService(services.IngestionDeps{
		Documents:   st.documents,
		Content:     st.content,
		Extractors:  extractors.NewDefaultRegistry(),
		Pipeline:    pipeline,
		Embedding:   aiServices.EmbeddingService,
		VectorIndex: vectors,
		OCR:         ocrService,
		Notifier:    events,
	}, services.IngestionConfig{
		OCRMinChars:      settings.Ingestion.OCRMinChars,
		EmbedConcurrency: settings.Ingestion.EmbedConcurrency,
	})
	documents := services.NewDocumentService(st.documents, st.content, st.inquiries, vectors, events)
	documents.TrackIngestion(ingestion)

	policies := file.NewPolicyStore(dir)
	verdictPolicy, err := policies.VerdictPolicy()
	if err != nil {
		logger.Warn("using default verdict policy: %v", err)
	}
	approvalPolicy, err := policies.ApprovalPolicy()
	if err != nil {
		logger.Warn("using default approval policy: %v", err)
	}

	verification := services.NewVerificationService(st.inquiries, st.evidence,
		aiServices.EmbeddingService, vectors, services.NewVerdictEngine(verdictPolicy))

	var reviewers []driven.Reviewer
	if settings.Review.Enabled && aiServices.LLMService != nil {
		reviewers = append(reviewers, reviewer.NewLLMReviewer(aiServices.LLMService, prompts))
	}
	answers := services.NewAnswerService(st.inquiries, st.answers, st.reviews, verification,
		services.WithReviewGate(services.NewReviewGate(reviewers...)),
		services.WithApprovalGate(services.NewApprovalGate(approvalPolicy)),
		services.WithAnswerNotifier(events),
	)

	senders, err := buildSenders(ctx, settings, out)
	if err != nil {
		return fail(err)
	}
	dispatch := services.NewDispatchService(st.answers, st.attempts, st.inquiries, events, senders...)
	logger.Debug("senders: %v", dispatch.Senders())

	inquiries := services.NewInquiryService(st.inquiries)

	svc := &cli.Services{
		Inquiry:      inquiries,
		Document:     documents,
		Ingestion:    ingestion,
		Verification: verification,
		Answer:       answers,
		Dispatch:     dispatch,
		Settings:     settingsService,
	}
	if settings.InboxDir != "" {
		w := watcher.New(settings.InboxDir, watcher.Ports{
			Documents: documents,
			Ingestion: ingestion,
			Inquiries: inquiries,
		})
		svc.Watch = w.Run
		cleanup.add(func() { _ = w.Close() })
	}

	return svc, cleanup.run, nil
}

// openStores opens the relational store selected by storage.driver.
func openStores(ctx context.Context, settings *domain.AppSettings, dir string) (*stores, error) {
	switch settings.Storage.Driver {
	case domain.StorageMemory:
		return &stores{
			inquiries: memory.NewInquiryStore(),
			evidence:  memory.NewEvidenceStore(),
			documents: memory.NewDocumentStore(),
			answers:   memory.NewAnswerStore(),
			reviews:   memory.NewReviewStore(),
			attempts:  memory.NewSendAttemptStore(),
			content:   memory.NewContentStore(),
			close:     func() error { return nil },
		}, nil

	case domain.StoragePostgres:
		pg, err := postgres.Open(ctx, settings.Storage.DSN)
		if err != nil {
			return nil, err
		}
		content, err := file.NewContentStore(filepath.Join(dir, "content"))
		if err != nil {
			pg.Close()
			return nil, err
		}
		return &stores{
			inquiries: pg.InquiryStore(),
			evidence:  pg.EvidenceStore(),
			documents: pg.DocumentStore(),
			answers:   pg.AnswerStore(),
			reviews:   pg.ReviewStore(),
			attempts:  pg.SendAttemptStore(),
			content:   content,
			pg:        pg,
			close:     pg.Close,
		}, nil

	case domain.StorageSQLite, "":
		db, err := sqlite.NewStore(filepath.Join(dir, "data"))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		content, err := file.NewContentStore(filepath.Join(dir, "content"))
		if err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			inquiries: db.InquiryStore(),
			evidence:  db.EvidenceStore(),
			documents: db.DocumentStore(),
			answers:   db.AnswerStore(),
			reviews:   db.ReviewStore(),
			attempts:  db.SendAttemptStore(),
			content:   content,
			close:     db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("storage driver %q: %w", settings.Storage.Driver, domain.ErrInvalidInput)
	}
}

// openVectorIndex opens the index selected by vector.backend.
func openVectorIndex(
	ctx context.Context, settings *domain.AppSettings, dir string, pg *postgres.Store, emb driven.EmbeddingService,
) (driven.VectorIndex, error) {
	switch settings.Vector.Backend {
	case domain.VectorMemory:
		return vectormemory.New(), nil

	case domain.VectorPGVector:
		if pg == nil {
			return nil, fmt.Errorf("pgvector backend needs storage.driver=postgres: %w", domain.ErrInvalidInput)
		}
		idx, err := pgvector.New(ctx, pg.DB(), vectorDimensions(settings, emb))
		if err != nil {
			return nil, fmt.Errorf("open pgvector: %w", err)
		}
		return idx, nil

	case domain.VectorChromem, "":
		path := settings.Vector.Path
		if path == "" {
			path = filepath.Join(dir, "vectors")
		}
		idx, err := chromem.New(path)
		if err != nil {
			return nil, fmt.Errorf("open chromem: %w", err)
		}
		return idx, nil

	default:
		return nil, fmt.Errorf("vector backend %q: %w", settings.Vector.Backend, domain.ErrInvalidInput)
	}
}

func vectorDimensions(settings *domain.AppSettings, emb driven.EmbeddingService) int {
	if emb != nil && emb.Dimensions() > 0 {
		return emb.Dimensions()
	}
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		return d
	}
	return defaultDimensions
}

// buildSenders returns the configured senders. Gmail is preferred over
// SMTP for email, and the console sender covers any channel without a
// real provider.
func buildSenders(ctx context.Context, settings *domain.AppSettings, out io.Writer) ([]driven.MessageSender, error) {
	var senders []driven.MessageSender
	var fallback []domain.Channel

	switch d := settings.Dispatch; {
	case d.GmailConfigured():
		g, err := sender.NewGmailSender(ctx, d)
		if err != nil {
			return nil, err
		}
		senders = append(senders, g)
	case d.SMTPConfigured():
		senders = append(senders, sender.NewSMTPSender(d))
	default:
		fallback = append(fallback, domain.ChannelEmail)
	}
	if settings.Dispatch.MessengerConfigured() {
		senders = append(senders, sender.NewTelegramSender(settings.Dispatch.TelegramToken, settings.Dispatch.TelegramChatID))
	} else {
		fallback = append(fallback, domain.ChannelMessenger)
	}
	if len(fallback) > 0 {
		senders = append(senders, sender.NewConsoleSender(out, fallback...))
	}
	return senders, nil
}

// buildNotifier returns the event notifier and a func that waits for
// in-flight webhook posts.
func buildNotifier(settings *domain.AppSettings) (driven.Notifier, func()) {
	if settings.Notify.WebhookURL == "" {
		return notifier.Log{}, func() {}
	}
	hook := notifier.NewWebhook(settings.Notify.WebhookURL)
	return notifier.NewMulti(notifier.Log{}, hook), hook.Wait
}
