// Package sqlite provides a unified SQLite-based implementation of the storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements every store interface through a single database connection:
//
//   - InquiryStore and EvidenceStore
//   - DocumentStore (documents and chunks)
//   - AnswerStore, ReviewStore and SendAttemptStore
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files;
// applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.answerdesk/data/answerdesk.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite's own locking in WAL mode.
// Review and send-attempt tables are append-only; a partial unique index allows at
// most one SENT attempt per (answer, send request).
package sqlite
