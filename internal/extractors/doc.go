// Package extractors provides TextExtractor implementations for the file
// formats answerdesk ingests, plus the Registry that picks one per file.
//
// Selection is by MIME type first, then file extension, then the plaintext
// fallback. Binary content nothing can read yields domain.ErrUnsupportedFormat
// so ingestion can hand the file to OCR.
package extractors
