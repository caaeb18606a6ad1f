package postprocessors

import (
	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
	"github.com/custodia-labs/answerdesk/internal/postprocessors/chunker"
	"github.com/custodia-labs/answerdesk/internal/postprocessors/enricher"
)

// RegisterDefaults registers the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("enricher", buildEnricher)
}

// buildChunker creates a chunker from generic config.
// Supported keys: chunk_size, overlap, hierarchical, parent_size.
func buildChunker(cfg map[string]any, _ Dependencies) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := intFromConfig(cfg, "chunk_size"); ok && size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := intFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	if h, _ := cfg["hierarchical"].(bool); h {
		parent, _ := intFromConfig(cfg, "parent_size")
		opts = append(opts, chunker.WithHierarchy(parent))
	}

	return chunker.New(opts...), nil
}

func buildEnricher(_ map[string]any, deps Dependencies) (driven.PostProcessor, error) {
	return enricher.New(deps.LLM, deps.Prompts), nil
}

// intFromConfig extracts an int from a config map.
// TOML and JSON decoding may yield int64 or float64.
func intFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
