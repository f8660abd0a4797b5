package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ppiankov/aletheia/internal/cache"
)

// CachedInvoker wraps an Invoker with a response cache keyed on the full
// request: provider, model and every message. Identical prompts replay the
// stored response instead of hitting the API.
type CachedInvoker struct {
	inner Invoker
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedInvoker creates a caching wrapper around inner
func NewCachedInvoker(inner Invoker, c cache.Cache, ttl time.Duration) *CachedInvoker {
	return &CachedInvoker{
		inner: inner,
		cache: c,
		ttl:   ttl,
	}
}

// Name returns the wrapped provider name
func (p *CachedInvoker) Name() string {
	return p.inner.Name()
}

// IsAvailable checks the wrapped provider
func (p *CachedInvoker) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}

// Generate returns a cached response when one exists, otherwise invokes the
// wrapped provider and stores the result
func (p *CachedInvoker) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	key := p.key(req)

	if data, found := p.cache.Get(key); found {
		var resp GenerateResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			return &resp, nil
		}
		// corrupt entry: fall through to a fresh call
		_ = p.cache.Delete(key)
	}

	resp, err := p.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(resp); err == nil {
		if err := p.cache.Set(key, data, p.ttl); err != nil {
			slog.Debug("failed to store model response in cache", "error", err)
		}
	}
	return resp, nil
}

func (p *CachedInvoker) key(req GenerateRequest) string {
	parts := make([]string, 0, 2+2*len(req.Messages))
	parts = append(parts, p.inner.Name(), req.Model)
	for _, m := range req.Messages {
		parts = append(parts, m.Role, m.Content)
	}
	return cache.Key(parts...)
}
