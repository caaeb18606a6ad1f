// Package ratelimit throttles calls to hosted embedding providers.
package ratelimit

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/answerdesk/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService wraps an embedding service with a token bucket.
// A batch call costs one token per text.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap returns inner throttled to rps requests per second. A non-positive
// rps returns inner unchanged.
func Wrap(inner driven.EmbeddingService, rps float64) driven.EmbeddingService {
	if inner == nil || rps <= 0 {
		return inner
	}
	burst := int(math.Ceil(rps))
	return &EmbeddingService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Embed waits for a token and embeds text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return s.inner.Embed(ctx, text)
}

// EmbedBatch waits for one token per text. Batches larger than the burst
// are split so a single call never exceeds the limiter's capacity.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	burst := s.limiter.Burst()
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += burst {
		end := min(start+burst, len(texts))
		if err := s.limiter.WaitN(ctx, end-start); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		vecs, err := s.inner.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// Dimensions returns the inner service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the inner service's model.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping is not throttled.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close closes the inner service.
func (s *EmbeddingService) Close() error { return s.inner.Close() }
