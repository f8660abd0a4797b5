package llm

import (
	"context"
	"testing"
	"time"

	"github.com/ppiankov/aletheia/internal/cache"
)

func TestCachedInvoker_HitSkipsInner(t *testing.T) {
	mock := &MockInvoker{
		name:      "mock",
		available: true,
		response:  &GenerateResponse{Content: "0: True", Model: "mock-model", TokensUsed: 12},
	}
	cached := NewCachedInvoker(mock, cache.NewMemoryCache(time.Minute), time.Minute)

	req := GenerateRequest{
		Messages: []Message{{Role: RoleUser, Content: "check these triplets"}},
	}

	first, err := cached.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("First call failed: %v", err)
	}
	second, err := cached.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Second call failed: %v", err)
	}

	if mock.calls != 1 {
		t.Errorf("Expected 1 inner call, got %d", mock.calls)
	}
	if first.Content != second.Content || second.Content != "0: True" {
		t.Errorf("Expected identical cached content, got %q and %q", first.Content, second.Content)
	}
	if second.TokensUsed != 12 {
		t.Errorf("Expected cached token count 12, got %d", second.TokensUsed)
	}
}

func TestCachedInvoker_DistinctRequestsMiss(t *testing.T) {
	mock := &MockInvoker{
		name:     "mock",
		response: &GenerateResponse{Content: "ok"},
	}
	cached := NewCachedInvoker(mock, cache.NewMemoryCache(time.Minute), time.Minute)

	_, _ = cached.Generate(context.Background(), GenerateRequest{
		Messages: []Message{{Role: RoleUser, Content: "first prompt"}},
	})
	_, _ = cached.Generate(context.Background(), GenerateRequest{
		Messages: []Message{{Role: RoleUser, Content: "second prompt"}},
	})
	_, _ = cached.Generate(context.Background(), GenerateRequest{
		Model:    "other-model",
		Messages: []Message{{Role: RoleUser, Content: "first prompt"}},
	})

	if mock.calls != 3 {
		t.Errorf("Expected 3 inner calls for distinct requests, got %d", mock.calls)
	}
}

func TestCachedInvoker_ErrorNotCached(t *testing.T) {
	mock := &MockInvoker{
		name: "mock",
		err:  &apiStatusError{status: 500, body: "upstream error"},
	}
	cached := NewCachedInvoker(mock, cache.NewMemoryCache(time.Minute), time.Minute)

	req := GenerateRequest{
		Messages: []Message{{Role: RoleUser, Content: "prompt"}},
	}

	if _, err := cached.Generate(context.Background(), req); err == nil {
		t.Fatal("Expected error from inner invoker")
	}

	// A later successful call must go through and get stored
	mock.err = nil
	mock.response = &GenerateResponse{Content: "recovered"}

	resp, err := cached.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Expected success after inner recovery, got %v", err)
	}
	if resp.Content != "recovered" {
		t.Errorf("Unexpected content: %q", resp.Content)
	}
	if mock.calls != 2 {
		t.Errorf("Expected 2 inner calls, got %d", mock.calls)
	}
}

func TestCachedInvoker_CorruptEntryRefetched(t *testing.T) {
	mock := &MockInvoker{
		name:     "mock",
		response: &GenerateResponse{Content: "fresh"},
	}
	c := cache.NewMemoryCache(time.Minute)
	cached := NewCachedInvoker(mock, c, time.Minute)

	req := GenerateRequest{
		Messages: []Message{{Role: RoleUser, Content: "prompt"}},
	}
	_ = c.Set(cached.key(req), []byte(`{not json`), time.Minute)

	resp, err := cached.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != "fresh" {
		t.Errorf("Expected fresh response after corrupt entry, got %q", resp.Content)
	}
	if mock.calls != 1 {
		t.Errorf("Expected 1 inner call, got %d", mock.calls)
	}
}

func TestCachedInvoker_Passthrough(t *testing.T) {
	mock := &MockInvoker{name: "mock", available: true}
	cached := NewCachedInvoker(mock, cache.NewMemoryCache(time.Minute), time.Minute)

	if cached.Name() != "mock" {
		t.Errorf("Expected wrapped name, got %q", cached.Name())
	}
	if !cached.IsAvailable(context.Background()) {
		t.Error("Expected availability passthrough")
	}
}
