package hallucinate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ppiankov/aletheia/internal/llm"
	"github.com/ppiankov/aletheia/internal/model"
	"github.com/ppiankov/aletheia/internal/prompt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockInvoker records requests and replays a canned response
type MockInvoker struct {
	response string
	err      error
	requests []llm.GenerateRequest
}

func (m *MockInvoker) Name() string {
	return "mock"
}

func (m *MockInvoker) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{Content: m.response, Model: "mock-model", TokensUsed: 10}, nil
}

func (m *MockInvoker) IsAvailable(context.Context) bool {
	return true
}

func newTestGenerator(t *testing.T, invoker llm.Invoker, config Config) *Generator {
	t.Helper()
	prompts, err := prompt.NewAssembler(prompt.DefaultBank())
	if err != nil {
		t.Fatalf("NewAssembler() error = %v", err)
	}
	return NewGenerator(invoker, prompts, config, testLogger())
}

func TestGenerator_Generate_Delimited(t *testing.T) {
	response := "Non-Hallucinated Answer:\n" +
		"The Berlin Wall fell in 1989.\n" +
		"Hallucinated Answer:\n" +
		"The Berlin Wall fell in **1992** after the unification treaty.\n" +
		"Hallucinated Details:\n" +
		"The year 1992 and the treaty are fabricated."
	mock := &MockInvoker{response: response}
	gen := newTestGenerator(t, mock, Config{})

	out, err := gen.Generate(context.Background(), []string{"The Berlin Wall fell on 9 November 1989."}, "When did the Berlin Wall fall?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Sections keep their surrounding newlines; only markdown emphasis is
	// stripped from the hallucinated answer
	if out.GeneratedNonHlcntnAnswer != "The Berlin Wall fell in 1989.\n" {
		t.Errorf("unexpected faithful answer %q", out.GeneratedNonHlcntnAnswer)
	}
	if out.GeneratedHlcntnAnswer != "The Berlin Wall fell in 1992 after the unification treaty.\n" {
		t.Errorf("unexpected hallucinated answer %q", out.GeneratedHlcntnAnswer)
	}
	if out.HlcntnPart != "\nThe year 1992 and the treaty are fabricated." {
		t.Errorf("unexpected hallucinated details %q", out.HlcntnPart)
	}
}

func TestGenerator_Generate_Structured(t *testing.T) {
	mock := &MockInvoker{response: `{
		"non_hallucinated_answer": "The wall fell in 1989.",
		"hallucinated_answer": "The wall fell in 1992.",
		"hallucinated_details": ["The year is wrong.", "No treaty existed."]
	}`}
	gen := newTestGenerator(t, mock, Config{Structured: true})

	out, err := gen.Generate(context.Background(), []string{"doc"}, "When did the wall fall?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if out.GeneratedNonHlcntnAnswer != "The wall fell in 1989." {
		t.Errorf("unexpected faithful answer %q", out.GeneratedNonHlcntnAnswer)
	}
	if out.HlcntnPart != "The year is wrong. No treaty existed." {
		t.Errorf("expected details joined with spaces, got %q", out.HlcntnPart)
	}
}

func TestGenerator_Generate_StructuredSelectsOtherTemplate(t *testing.T) {
	delimited := &MockInvoker{response: "x"}
	if _, err := newTestGenerator(t, delimited, Config{}).Generate(context.Background(), nil, "q"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	structured := &MockInvoker{response: "x"}
	if _, err := newTestGenerator(t, structured, Config{Structured: true}).Generate(context.Background(), nil, "q"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if delimited.requests[0].Messages[0].Content == structured.requests[0].Messages[0].Content {
		t.Error("expected structured mode to render a different instruction")
	}
}

func TestGenerator_Generate_PromptCarriesFields(t *testing.T) {
	mock := &MockInvoker{response: "x"}
	gen := newTestGenerator(t, mock, Config{Model: "gpt-4o"})

	_, err := gen.Generate(context.Background(), []string{"First doc.", "Second doc."}, "What happened?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	req := mock.requests[0]
	if req.Model != "gpt-4o" {
		t.Errorf("expected model override gpt-4o, got %q", req.Model)
	}
	user := req.Messages[1].Content
	if !strings.Contains(user, "What happened?") {
		t.Errorf("expected question in prompt, got %q", user)
	}
	if !strings.Contains(user, "First doc.\n-Second doc.") {
		t.Errorf("expected documents joined with continuation hyphens, got %q", user)
	}
}

func TestGenerator_Generate_ParseFailureDegrades(t *testing.T) {
	mock := &MockInvoker{response: "I will not fabricate an answer."}
	gen := newTestGenerator(t, mock, Config{})

	out, err := gen.Generate(context.Background(), nil, "q")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != (model.HallucinationDataGeneratorOutput{}) {
		t.Errorf("expected empty output on parse failure, got %+v", out)
	}
}

func TestGenerator_Generate_InvokerError(t *testing.T) {
	mock := &MockInvoker{err: errors.New("boom")}
	gen := newTestGenerator(t, mock, Config{})

	_, err := gen.Generate(context.Background(), nil, "q")
	if err == nil || !strings.Contains(err.Error(), "invoke model") {
		t.Errorf("expected invoke model error, got %v", err)
	}
}

func TestGenerator_Generate_NoInvoker(t *testing.T) {
	gen := newTestGenerator(t, nil, Config{})

	_, err := gen.Generate(context.Background(), nil, "q")
	if err == nil || !strings.Contains(err.Error(), "no model invoker configured") {
		t.Errorf("expected missing invoker error, got %v", err)
	}
}
