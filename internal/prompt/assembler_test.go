package prompt

import (
	"strings"
	"testing"

	"github.com/ppiankov/aletheia/internal/llm"
)

func TestAssembler_Render_TripletGeneration(t *testing.T) {
	assembler, err := NewAssembler(DefaultBank())
	if err != nil {
		t.Fatalf("Failed to create assembler: %v", err)
	}

	messages, err := assembler.Render(TemplateTripletGeneration, map[string]string{
		"examples":   "example block",
		"input_text": "Einstein developed relativity.",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != llm.RoleSystem {
		t.Errorf("Expected system role first, got %s", messages[0].Role)
	}
	if messages[1].Role != llm.RoleUser {
		t.Errorf("Expected user role second, got %s", messages[1].Role)
	}
	if !strings.Contains(messages[1].Content, "Einstein developed relativity.") {
		t.Error("Expected input text substituted into the human message")
	}
	if !strings.Contains(messages[1].Content, "example block") {
		t.Error("Expected examples substituted into the human message")
	}
	if strings.Contains(messages[1].Content, "{{") {
		t.Errorf("Expected no template markers left, got %q", messages[1].Content)
	}
}

func TestAssembler_Render_FactCheckerFields(t *testing.T) {
	assembler, err := NewAssembler(DefaultBank())
	if err != nil {
		t.Fatalf("Failed to create assembler: %v", err)
	}

	messages, err := assembler.Render(TemplateTripletMatch, map[string]string{
		"examples":           "demo",
		"answer_triplets":    `0: ["a", "b", "c"]`,
		"reference_triplets": `0: ["a", "b", "c"]` + "\n-" + `1: ["d", "e", "f"]`,
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	human := messages[1].Content
	if !strings.Contains(human, `-0: ["a", "b", "c"]`) {
		t.Errorf("Expected leading hyphen before the first listing entry, got %q", human)
	}
	if !strings.Contains(human, `-1: ["d", "e", "f"]`) {
		t.Errorf("Expected continuation entries to carry their hyphens, got %q", human)
	}
}

func TestAssembler_Render_MissingFieldFails(t *testing.T) {
	assembler, err := NewAssembler(DefaultBank())
	if err != nil {
		t.Fatalf("Failed to create assembler: %v", err)
	}

	_, err = assembler.Render(TemplateTripletGeneration, map[string]string{
		"examples": "demo",
		// input_text missing
	})
	if err == nil {
		t.Fatal("Expected error for missing template field")
	}
}

func TestAssembler_Render_UnknownTemplate(t *testing.T) {
	assembler, err := NewAssembler(DefaultBank())
	if err != nil {
		t.Fatalf("Failed to create assembler: %v", err)
	}

	_, err = assembler.Render("no_such_template", nil)
	if err == nil {
		t.Fatal("Expected error for unknown template")
	}
	if !strings.Contains(err.Error(), "unknown prompt template") {
		t.Errorf("Expected unknown template error, got %v", err)
	}
}

func TestNewAssembler_RejectsInvalidBank(t *testing.T) {
	bank := Bank{
		"orphan": {MessageType: MessageHuman, Format: "{{.question}}"},
	}

	if _, err := NewAssembler(bank); err == nil {
		t.Fatal("Expected error for invalid bank")
	}
}

func TestNewAssembler_RejectsMalformedTemplate(t *testing.T) {
	bank := Bank{
		"task_instruction": {MessageType: MessageSystem, Format: "fine"},
		"task":             {MessageType: MessageHuman, Format: "{{.unclosed"},
	}

	if _, err := NewAssembler(bank); err == nil {
		t.Fatal("Expected error for malformed template syntax")
	}
}
