// Package watcher ingests files dropped into an inbox directory.
//
// Documents are uploaded to the knowledge base and ingested. Email files
// (.eml) open a new inquiry and are attached to it as evidence. Handled
// files move to processed/ or failed/ below the inbox so a restart does
// not pick them up again.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driving"
	"github.com/custodia-labs/answerdesk/internal/extractors/eml"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// Subdirectories handled files are moved to.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// DefaultDebounce is how long a file must stay quiet before it is handled.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("watcher closed")

// Ports are the services a dropped file is handed to.
type Ports struct {
	Documents driving.DocumentService
	Ingestion driving.IngestionService
	Inquiries driving.InquiryService
}

// Watcher moves files from the inbox into the knowledge base.
type Watcher struct {
	dir      string
	ports    Ports
	debounce time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	closed  bool
	handled func(path string, err error)
}

// New creates a watcher for dir.
func New(dir string, ports Ports) *Watcher {
	return &Watcher{
		dir:      dir,
		ports:    ports,
		debounce: DefaultDebounce,
		timers:   make(map[string]*time.Timer),
	}
}

// WithDebounce overrides the quiet period.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// OnHandled registers a callback invoked after each file is handled.
func (w *Watcher) OnHandled(fn func(path string, err error)) *Watcher {
	w.handled = fn
	return w
}

// Run handles files already in the inbox, then watches for new ones until
// ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if w.ports.Documents == nil {
		return errors.New("watcher: document service is required")
	}

	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("inbox path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("inbox path error: %s is not a directory: %w", w.dir, domain.ErrInvalidInput)
	}
	for _, sub := range []string{ProcessedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(w.dir, sub), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", sub, err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching inbox %s", w.dir)

	ready := make(chan string, 16)
	done := make(chan struct{})
	defer func() {
		close(done)
		w.stopTimers()
	}()

	if err := w.sweep(ready, done); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleFsEvent(event); ok {
				w.schedule(path, ready, done)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("inbox watcher: %v", err)

		case path := <-ready:
			w.process(ctx, path)
		}
	}
}

// Close stops further runs.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// sweep schedules files that arrived while nobody was watching.
func (w *Watcher) sweep(ready chan<- string, done <-chan struct{}) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || skipName(e.Name()) {
			continue
		}
		w.schedule(filepath.Join(w.dir, e.Name()), ready, done)
	}
	return nil
}

// handleFsEvent reports the file an event refers to, if it should be handled.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	// Only direct children of the inbox; processed/ and failed/ are ignored.
	if filepath.Dir(event.Name) != filepath.Clean(w.dir) {
		return "", false
	}
	if skipName(filepath.Base(event.Name)) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

// schedule (re)starts the quiet-period timer for path.
func (w *Watcher) schedule(path string, ready chan<- string, done <-chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		select {
		case ready <- path:
		case <-done:
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		// Already moved or removed.
		return
	}

	var err error
	if strings.EqualFold(filepath.Ext(path), ".eml") {
		err = w.handleEmail(ctx, path)
	} else {
		err = w.handleDocument(ctx, path, "")
	}

	dest := ProcessedDir
	if err != nil {
		dest = FailedDir
		logger.Error(err, "inbox: %s", filepath.Base(path))
	}
	if mvErr := move(path, filepath.Join(w.dir, dest)); mvErr != nil {
		logger.Warn("inbox: move %s to %s: %v", filepath.Base(path), dest, mvErr)
	}
	if w.handled != nil {
		w.handled(path, err)
	}
}

// handleEmail opens an inquiry from the message and attaches the message.
func (w *Watcher) handleEmail(ctx context.Context, path string) error {
	if w.ports.Inquiries == nil {
		return fmt.Errorf("email %s: inquiry service not configured", filepath.Base(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	msg, err := eml.Parse(raw)
	if err != nil {
		return err
	}

	name := msg.FromName
	if name == "" {
		name = msg.From
	}
	question := msg.Body
	if question == "" {
		question = msg.Subject
	}

	inq, err := w.ports.Inquiries.Create(ctx, driving.CreateInquiryRequest{
		CustomerName:    name,
		CustomerContact: msg.FromAddress,
		Subject:         msg.Subject,
		Question:        question,
		Channel:         domain.ChannelEmail,
	})
	if err != nil {
		return fmt.Errorf("create inquiry from %s: %w", filepath.Base(path), err)
	}
	logger.Info("Inquiry %s opened from %s", inq.ID, filepath.Base(path))

	return w.handleDocument(ctx, path, inq.ID)
}

// handleDocument uploads path and ingests it when ingestion is available.
func (w *Watcher) handleDocument(ctx context.Context, path, inquiryID string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := w.ports.Documents.Upload(ctx, driving.UploadRequest{
		InquiryID: inquiryID,
		FileName:  filepath.Base(path),
		MIMEType:  mime.TypeByExtension(filepath.Ext(path)),
		Content:   f,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}

	if w.ports.Ingestion == nil {
		return nil
	}
	doc, err = w.ports.Ingestion.Ingest(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", filepath.Base(path), err)
	}
	if doc.Status == domain.DocumentFailed {
		return fmt.Errorf("ingest %s: %s", filepath.Base(path), doc.LastError)
	}
	logger.Info("Ingested %s as %s (%d chunks)", filepath.Base(path), doc.ID, doc.ChunkCount)
	return nil
}

// skipName filters hidden, temporary and partial downloads.
func skipName(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~") {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tmp", ".part", ".crdownload", ".swp":
		return true
	}
	return false
}

// move renames path into dir, suffixing a timestamp on name clashes.
func move(path, dir string) error {
	dest := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(path)
		base := strings.TrimSuffix(filepath.Base(path), ext)
		dest = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, time.Now().UnixNano(), ext))
	}
	return os.Rename(path, dest)
}
