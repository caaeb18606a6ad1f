package driven

import (
	"context"
	"io"
)

// ContentStore holds the raw bytes of uploaded documents.
type ContentStore interface {
	// Put stores the content read from r and returns a reference and the byte count.
	Put(ctx context.Context, name string, r io.Reader) (ref string, size int64, err error)

	// Get returns the bytes behind ref, or domain.ErrNotFound.
	Get(ctx context.Context, ref string) ([]byte, error)

	// Delete removes the content. Deleting a missing ref is not an error.
	Delete(ctx context.Context, ref string) error
}
