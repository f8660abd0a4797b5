package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultBank_Validates(t *testing.T) {
	if err := DefaultBank().Validate(); err != nil {
		t.Fatalf("Expected built-in bank to validate, got %v", err)
	}
}

func TestDefaultBank_CoversGeneratorTemplates(t *testing.T) {
	bank := DefaultBank()
	names := []string{
		TemplateTripletGeneration,
		TemplateTripletMatch,
		TemplateTripletMatchInquiry,
		TemplateHallucinationTest,
		TemplateHallucinationStructured,
		TemplateAnswerGeneration,
	}

	for _, name := range names {
		if _, ok := bank[name]; !ok {
			t.Errorf("Expected template %q in built-in bank", name)
		}
		if _, ok := bank[name+InstructionSuffix]; !ok {
			t.Errorf("Expected instruction for %q in built-in bank", name)
		}
	}
}

func TestBank_Validate_MissingPair(t *testing.T) {
	bank := Bank{
		"lonely_task": {MessageType: MessageHuman, Format: "{{.question}}"},
	}

	err := bank.Validate()
	if err == nil {
		t.Fatal("Expected error for task template without instruction")
	}
	if !strings.Contains(err.Error(), "no") || !strings.Contains(err.Error(), "pair") {
		t.Errorf("Expected pairing error, got %v", err)
	}
}

func TestBank_Validate_BadMessageType(t *testing.T) {
	bank := Bank{
		"task_instruction": {MessageType: "assistant", Format: "do things"},
	}

	if err := bank.Validate(); err == nil {
		t.Fatal("Expected error for unsupported message type")
	}
}

func TestBank_Validate_InstructionMustBeSystem(t *testing.T) {
	bank := Bank{
		"task":             {MessageType: MessageHuman, Format: "{{.question}}"},
		"task_instruction": {MessageType: MessageHuman, Format: "do things"},
	}

	if err := bank.Validate(); err == nil {
		t.Fatal("Expected error for human-typed instruction template")
	}
}

func TestBank_Validate_EmptyFormat(t *testing.T) {
	bank := Bank{
		"task_instruction": {MessageType: MessageSystem, Format: ""},
	}

	if err := bank.Validate(); err == nil {
		t.Fatal("Expected error for empty format")
	}
}

func TestLoadBank_OverlaysBuiltins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	content := `
n_shot_triplet_generation_instruction:
  message_type: system
  format: "Custom extraction instruction."
my_task_instruction:
  message_type: system
  format: "Custom instruction."
my_task:
  message_type: human
  format: "Custom task {{.question}}"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write prompt file: %v", err)
	}

	bank, err := LoadBank(path)
	if err != nil {
		t.Fatalf("LoadBank failed: %v", err)
	}

	if got := bank[TemplateTripletGeneration+InstructionSuffix].Format; got != "Custom extraction instruction." {
		t.Errorf("Expected overlay to replace built-in, got %q", got)
	}
	if _, ok := bank["my_task"]; !ok {
		t.Error("Expected new template to be added")
	}
	// Untouched builtins survive
	if _, ok := bank[TemplateTripletMatch]; !ok {
		t.Error("Expected untouched built-in templates to survive the overlay")
	}
}

func TestLoadBank_RejectsInvalidOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	content := `
orphan_task:
  message_type: human
  format: "no instruction pair"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write prompt file: %v", err)
	}

	if _, err := LoadBank(path); err == nil {
		t.Fatal("Expected error for overlay breaking the pairing invariant")
	}
}

func TestLoadBank_MissingFile(t *testing.T) {
	if _, err := LoadBank(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}
