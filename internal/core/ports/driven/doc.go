// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore, InquiryStore, EvidenceStore, AnswerStore, ReviewStore,
//     SendAttemptStore: persistence (SQLite, Postgres or memory)
//   - ContentStore: raw upload bytes
//   - ExtractorRegistry: text extraction by format
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService / VectorIndex: without them ingestion stops at CHUNKED
//     and retrieval yields no evidence.
//   - LLMService: without it context enrichment is identity and review uses the mock.
//   - OCRService: without it short extractions are accepted as-is.
//   - Notifier: without it events are dropped.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
