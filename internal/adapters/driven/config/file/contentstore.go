package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// Ensure ContentStore implements the interface.
var _ driven.ContentStore = (*ContentStore)(nil)

// ContentStore keeps uploaded bytes as files in a single directory.
// References are bare file names: a uuid plus the original extension.
type ContentStore struct {
	dir string
}

// NewContentStore creates a content store rooted at dir.
func NewContentStore(dir string) (*ContentStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create content directory: %w", err)
	}
	return &ContentStore{dir: dir}, nil
}

// Put writes r to a new file. The file appears only once fully written.
func (s *ContentStore) Put(_ context.Context, name string, r io.Reader) (string, int64, error) {
	ref := uuid.New().String() + strings.ToLower(filepath.Ext(name))

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("write content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("close content: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, ref)); err != nil {
		return "", 0, fmt.Errorf("store content: %w", err)
	}
	return ref, size, nil
}

// Get reads the content behind ref.
func (s *ContentStore) Get(_ context.Context, ref string) ([]byte, error) {
	path, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content %s: %w", ref, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read content %s: %w", ref, err)
	}
	return data, nil
}

// Delete removes the content. Missing content is not an error.
func (s *ContentStore) Delete(_ context.Context, ref string) error {
	path, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete content %s: %w", ref, err)
	}
	return nil
}

// path rejects references that would escape the store directory.
func (s *ContentStore) path(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", fmt.Errorf("content ref %q: %w", ref, domain.ErrInvalidInput)
	}
	return filepath.Join(s.dir, ref), nil
}
