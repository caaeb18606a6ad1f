package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/answerdesk/internal/core/domain"
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptSpec is one editable prompt and the contract its file must keep.
type promptSpec struct {
	name string
	// args is the number of %s arguments the caller formats the prompt
	// with. A negative value marks a prompt sent verbatim.
	args  int
	usage string
	text  string
}

// check reports whether tmpl can replace the built-in text.
func (p promptSpec) check(tmpl string) error {
	if tmpl == "" {
		return fmt.Errorf("prompt %s is empty: %w", p.name, domain.ErrInvalidInput)
	}
	if p.args < 0 {
		return nil
	}
	n, err := domain.PromptVerbs(tmpl)
	if err != nil {
		return fmt.Errorf("prompt %s: %w", p.name, err)
	}
	if n != p.args {
		return fmt.Errorf("prompt %s has %d placeholders, want %d: %w", p.name, n, p.args, domain.ErrInvalidInput)
	}
	return nil
}

//nolint:lll // prompt text
var promptSpecs = []promptSpec{
	{
		name:  driven.PromptContextEnrichment,
		args:  3,
		usage: "situates each chunk in its document before embedding. Placeholders, in order: `%s` file name, `%s` document text, `%s` chunk text. Write a literal percent as `%%`.",
		text: `<document name="%s">
%s
</document>
Here is the chunk we want to situate within the whole document:
<chunk>
%s
</chunk>
Write 1-2 sentences that name the file, the section and the topic of this chunk,
to improve search retrieval of the chunk. Answer only with the context and nothing else.`,
	},
	{
		name:  driven.PromptAnswerReview,
		args:  -1,
		usage: "instruction for the automated reviewer, sent as-is. The draft follows as a separate message. Keep the JSON response format intact.",
		text: `You are a strict quality reviewer for customer technical-support replies.
You receive a draft reply as JSON with its verdict, confidence, tone, channel, text, citations and risk flags.

Check that the reply:
- is supported by the cited evidence and does not overstate the verdict
- surfaces every risk flag and any safety or regulatory concern to the customer
- matches the requested tone and channel
- is clear, polite and free of internal identifiers other than citations

Respond with a single JSON object and nothing else:
{"decision": "PASS" | "REVISE" | "REJECT",
 "score": <integer 0-100>,
 "summary": "<one or two sentences>",
 "revisedDraft": "<full improved reply, only when decision is REVISE>",
 "issues": [{"severity": "LOW" | "MEDIUM" | "HIGH" | "CRITICAL", "message": "<what is wrong>"}]}

Use CRITICAL only for replies that would be unsafe or wrong to send.`,
	},
}

func lookupPrompt(name string) (promptSpec, bool) {
	for _, p := range promptSpecs {
		if p.name == name {
			return p, true
		}
	}
	return promptSpec{}, false
}

// PromptStore serves the enrichment and review prompts from <dir>/<name>.txt.
// A file that is missing, unreadable or breaks its placeholder contract is
// ignored and the built-in text is served instead. The directory is seeded
// with the built-in prompts on first Load, never by the constructor.
type PromptStore struct {
	dir string

	mu     sync.Mutex
	seeded bool
	cache  map[string]string
}

// NewPromptStore creates a prompt store. An empty dir means
// ~/.answerdesk/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the template for name, or domain.ErrNotFound for a name
// the store does not know.
func (s *PromptStore) Load(name string) (string, error) {
	spec, ok := lookupPrompt(name)
	if !ok {
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tmpl, ok := s.cache[name]; ok {
		return tmpl, nil
	}
	if !s.seeded {
		s.seeded = true
		if err := s.seed(); err != nil {
			logger.Warn("prompt directory %s not seeded: %v", s.dir, err)
		}
	}
	tmpl := s.read(spec)
	s.cache[name] = tmpl
	return tmpl, nil
}

// Reload drops cached prompts so edited files are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

func (s *PromptStore) read(spec promptSpec) string {
	data, err := os.ReadFile(s.path(spec.name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("reading prompt %s: %v", spec.name, err)
		}
		return spec.text
	}
	tmpl := strings.TrimSpace(string(data))
	if err := spec.check(tmpl); err != nil {
		logger.Warn("ignoring %s, using built-in prompt: %v", s.path(spec.name), err)
		return spec.text
	}
	return tmpl
}

// seed writes the built-in prompts and a README without touching files
// that already exist.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	var readme strings.Builder
	readme.WriteString("# answerdesk prompts\n\n")
	readme.WriteString("Edit a file to change behaviour; changes apply on the next command.\n")
	readme.WriteString("A file that breaks its placeholder rules is ignored with a warning.\n\n")
	for _, p := range promptSpecs {
		if err := writeIfMissing(s.path(p.name), p.text); err != nil {
			return err
		}
		fmt.Fprintf(&readme, "- `%s.txt` %s\n", p.name, p.usage)
	}
	return writeIfMissing(filepath.Join(s.dir, "README.md"), readme.String())
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
