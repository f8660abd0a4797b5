package factcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/aletheia/internal/llm"
	"github.com/ppiankov/aletheia/internal/model"
	"github.com/ppiankov/aletheia/internal/prompt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockInvoker answers through a respond function keyed on the call number,
// so split-mode tests can script one response per segment. Safe for
// concurrent calls.
type MockInvoker struct {
	mu       sync.Mutex
	respond  func(call int, req llm.GenerateRequest) (string, error)
	requests []llm.GenerateRequest
}

func (m *MockInvoker) Name() string {
	return "mock"
}

func (m *MockInvoker) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	call := len(m.requests)
	m.mu.Unlock()

	content, err := m.respond(call, req)
	if err != nil {
		return nil, err
	}
	return &llm.GenerateResponse{Content: content, Model: "mock-model", TokensUsed: 10}, nil
}

func (m *MockInvoker) IsAvailable(context.Context) bool {
	return true
}

func (m *MockInvoker) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func respondFixed(content string) func(int, llm.GenerateRequest) (string, error) {
	return func(int, llm.GenerateRequest) (string, error) {
		return content, nil
	}
}

func newTestChecker(t *testing.T, invoker llm.Invoker, config Config) *Checker {
	t.Helper()
	prompts, err := prompt.NewAssembler(prompt.DefaultBank())
	if err != nil {
		t.Fatalf("NewAssembler() error = %v", err)
	}
	return NewChecker(invoker, prompts, prompt.NewStaticDemonstrations(), config, testLogger())
}

func twoSegments() (model.TripletSet, []model.ReferenceSegment) {
	answer := model.TripletSet{
		{"Earth", "orbits", "Sun"},
		{"Moon", "is made of", "cheese"},
	}
	reference := []model.ReferenceSegment{
		{{"Earth", "orbits", "Sun"}},
		{{"Moon", "orbits", "Earth"}},
	}
	return answer, reference
}

func TestChecker_Check_Unsplit(t *testing.T) {
	mock := &MockInvoker{respond: respondFixed("0: True, 1: False")}
	checker := newTestChecker(t, mock, Config{NumShot: 1})

	answer, reference := twoSegments()
	verdicts, err := checker.Check(context.Background(), answer, reference)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if mock.callCount() != 1 {
		t.Errorf("expected 1 model call for unsplit check, got %d", mock.callCount())
	}
	if len(verdicts) != 2 || !verdicts[0] || verdicts[1] {
		t.Errorf("expected verdicts {0:true 1:false}, got %v", verdicts)
	}

	// Unsplit flattens every segment into one prompt
	user := mock.requests[0].Messages[1].Content
	if !strings.Contains(user, `"Earth"`) || !strings.Contains(user, `"Moon", "orbits", "Earth"`) {
		t.Errorf("expected flattened reference triplets in prompt, got %q", user)
	}
}

func TestChecker_Check_SplitORMerge(t *testing.T) {
	mock := &MockInvoker{respond: func(call int, _ llm.GenerateRequest) (string, error) {
		if call == 1 {
			return "0: True, 1: False", nil
		}
		return "0: False, 1: True", nil
	}}
	checker := newTestChecker(t, mock, Config{Split: true, MergePolicy: model.MergeOR})

	answer, reference := twoSegments()
	verdicts, err := checker.Check(context.Background(), answer, reference)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if mock.callCount() != 2 {
		t.Errorf("expected one model call per segment, got %d", mock.callCount())
	}
	if !verdicts[0] || !verdicts[1] {
		t.Errorf("expected OR merge to support both indices, got %v", verdicts)
	}
}

func TestChecker_Check_SplitANDMerge(t *testing.T) {
	mock := &MockInvoker{respond: func(call int, _ llm.GenerateRequest) (string, error) {
		if call == 1 {
			return "0: True, 1: False", nil
		}
		return "0: False, 1: True", nil
	}}
	checker := newTestChecker(t, mock, Config{Split: true, MergePolicy: model.MergeAND})

	answer, reference := twoSegments()
	verdicts, err := checker.Check(context.Background(), answer, reference)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if verdicts[0] || verdicts[1] {
		t.Errorf("expected AND merge to reject both indices, got %v", verdicts)
	}
}

func TestChecker_CheckDetailed_PerSegmentOrder(t *testing.T) {
	mock := &MockInvoker{respond: func(call int, _ llm.GenerateRequest) (string, error) {
		if call == 1 {
			return "0: True", nil
		}
		return "0: False", nil
	}}
	checker := newTestChecker(t, mock, Config{Split: true, MergePolicy: model.MergeOR})

	answer := model.TripletSet{{"Earth", "orbits", "Sun"}}
	_, reference := twoSegments()
	merged, perSegment, err := checker.CheckDetailed(context.Background(), answer, reference)
	if err != nil {
		t.Fatalf("CheckDetailed() error = %v", err)
	}

	if len(perSegment) != 2 {
		t.Fatalf("expected 2 per-segment maps, got %d", len(perSegment))
	}
	if !perSegment[0][0] || perSegment[1][0] {
		t.Errorf("expected per-segment verdicts in segment order, got %v", perSegment)
	}
	if !merged[0] {
		t.Errorf("expected merged verdict true, got %v", merged)
	}
}

func TestChecker_CheckDetailed_UnsplitHasNoSegments(t *testing.T) {
	mock := &MockInvoker{respond: respondFixed("0: True")}
	checker := newTestChecker(t, mock, Config{})

	answer, reference := twoSegments()
	_, perSegment, err := checker.CheckDetailed(context.Background(), answer, reference)
	if err != nil {
		t.Fatalf("CheckDetailed() error = %v", err)
	}
	if perSegment != nil {
		t.Errorf("expected no per-segment maps for an unsplit check, got %v", perSegment)
	}
}

func TestChecker_Check_ParallelMatchesSegmentOrder(t *testing.T) {
	// Each segment gets a distinctive subject; only segment 2 supports the
	// answer. Whatever order the workers finish in, the per-segment maps
	// must come back in segment order and the merge must not change.
	reference := make([]model.ReferenceSegment, 4)
	for i := range reference {
		reference[i] = model.ReferenceSegment{{fmt.Sprintf("seg%d", i), "relates to", "answer"}}
	}
	answer := model.TripletSet{{"Earth", "orbits", "Sun"}}

	mock := &MockInvoker{respond: func(_ int, req llm.GenerateRequest) (string, error) {
		if strings.Contains(req.Messages[1].Content, `"seg2"`) {
			return "0: True", nil
		}
		return "0: False", nil
	}}
	checker := newTestChecker(t, mock, Config{
		Split:          true,
		MergePolicy:    model.MergeOR,
		SegmentWorkers: 4,
	})

	merged, perSegment, err := checker.CheckDetailed(context.Background(), answer, reference)
	if err != nil {
		t.Fatalf("CheckDetailed() error = %v", err)
	}

	if mock.callCount() != 4 {
		t.Errorf("expected 4 model calls, got %d", mock.callCount())
	}
	for i, m := range perSegment {
		if want := i == 2; m[0] != want {
			t.Errorf("expected segment %d verdict %v, got %v", i, want, m[0])
		}
	}
	if !merged[0] {
		t.Errorf("expected OR merge true via segment 2, got %v", merged)
	}
}

func TestChecker_Check_InquiryParsesFinalAnswer(t *testing.T) {
	response := "Triplet 0 restates the first reference sentence.\n" +
		"Triplet 1 contradicts the reference.\n" +
		"[FINAL ANSWER]\n0: True, 1: False"
	mock := &MockInvoker{respond: respondFixed(response)}
	checker := newTestChecker(t, mock, Config{Inquiry: true})

	answer, reference := twoSegments()
	verdicts, err := checker.Check(context.Background(), answer, reference)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(verdicts) != 2 || !verdicts[0] || verdicts[1] {
		t.Errorf("expected verdicts from the final answer section, got %v", verdicts)
	}
}

func TestChecker_Check_InquirySelectsOtherTemplate(t *testing.T) {
	answer, reference := twoSegments()

	plain := &MockInvoker{respond: respondFixed("0: True")}
	if _, err := newTestChecker(t, plain, Config{}).Check(context.Background(), answer, reference); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	inquiry := &MockInvoker{respond: respondFixed("[FINAL ANSWER]\n0: True")}
	if _, err := newTestChecker(t, inquiry, Config{Inquiry: true}).Check(context.Background(), answer, reference); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if plain.requests[0].Messages[0].Content == inquiry.requests[0].Messages[0].Content {
		t.Error("expected inquiry mode to render a different instruction")
	}
}

func TestChecker_Check_SegmentErrorNamesSegment(t *testing.T) {
	mock := &MockInvoker{respond: func(call int, _ llm.GenerateRequest) (string, error) {
		if call == 2 {
			return "", errors.New("rate limited")
		}
		return "0: True", nil
	}}
	checker := newTestChecker(t, mock, Config{Split: true, MergePolicy: model.MergeOR})

	answer := model.TripletSet{{"Earth", "orbits", "Sun"}}
	reference := []model.ReferenceSegment{
		{{"a", "b", "c"}},
		{{"d", "e", "f"}},
		{{"g", "h", "i"}},
	}
	_, err := checker.Check(context.Background(), answer, reference)
	if err == nil || !strings.Contains(err.Error(), "check segment 1") {
		t.Errorf("expected error naming segment 1, got %v", err)
	}
}

func TestChecker_Check_SplitNoSegments(t *testing.T) {
	mock := &MockInvoker{respond: respondFixed("0: True")}
	checker := newTestChecker(t, mock, Config{Split: true, MergePolicy: model.MergeOR})

	answer := model.TripletSet{{"Earth", "orbits", "Sun"}}
	verdicts, err := checker.Check(context.Background(), answer, nil)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if mock.callCount() != 0 {
		t.Errorf("expected no model calls without reference segments, got %d", mock.callCount())
	}
	if len(verdicts) != 0 {
		t.Errorf("expected empty verdict map, got %v", verdicts)
	}
}

func TestChecker_Check_UnknownMergePolicy(t *testing.T) {
	mock := &MockInvoker{respond: respondFixed("0: True")}
	checker := newTestChecker(t, mock, Config{Split: true, MergePolicy: "xor"})

	answer, reference := twoSegments()
	_, err := checker.Check(context.Background(), answer, reference)
	if err == nil || !strings.Contains(err.Error(), "unknown merge policy") {
		t.Errorf("expected unknown merge policy error, got %v", err)
	}
}

func TestChecker_Check_NoInvoker(t *testing.T) {
	checker := newTestChecker(t, nil, Config{})

	answer, reference := twoSegments()
	_, err := checker.Check(context.Background(), answer, reference)
	if err == nil || !strings.Contains(err.Error(), "no model invoker configured") {
		t.Errorf("expected missing invoker error, got %v", err)
	}
}
