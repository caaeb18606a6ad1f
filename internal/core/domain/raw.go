package domain

import (
	"path/filepath"
	"strings"
)

// RawFile is the uploaded bytes of a document before extraction.
type RawFile struct {
	// FileName is the original name, used for extension-based dispatch.
	FileName string

	// MIMEType is the declared content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Extension returns the lower-cased file extension including the dot.
func (r *RawFile) Extension() string {
	return strings.ToLower(filepath.Ext(r.FileName))
}

// BaseMIMEType returns the MIME type without parameters.
func (r *RawFile) BaseMIMEType() string {
	mt, _, _ := strings.Cut(r.MIMEType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
