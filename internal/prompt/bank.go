// Package prompt holds the template bank and few-shot demonstration data
// behind every model call. Templates come in instruction/human pairs: the
// system half fixes the output contract the parsers rely on, the human half
// carries the formatted task input.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Message roles a template can render into
const (
	MessageSystem = "system"
	MessageHuman  = "human"
)

// InstructionSuffix links a human template to its system instruction
const InstructionSuffix = "_instruction"

// Template names used by the generator components
const (
	TemplateTripletGeneration       = "n_shot_triplet_generation"
	TemplateTripletMatch            = "n_shot_triplet_match_test"
	TemplateTripletMatchInquiry     = "n_shot_triplet_match_test_inquiry"
	TemplateHallucinationTest       = "hallucinated_data_generation_test"
	TemplateHallucinationStructured = "hallucinated_data_generation_structured"
	TemplateAnswerGeneration        = "answer_generation"
)

// Template is one entry of the prompt bank
type Template struct {
	Format      string `yaml:"format"`
	MessageType string `yaml:"message_type"`
}

// Bank maps template names to templates. Every human template <name> is
// paired with a system template <name>_instruction.
type Bank map[string]Template

// Validate checks the pairing and role invariants
func (b Bank) Validate() error {
	for name, tpl := range b {
		switch tpl.MessageType {
		case MessageSystem, MessageHuman:
		default:
			return fmt.Errorf("template %q has unsupported message type %q", name, tpl.MessageType)
		}
		if tpl.Format == "" {
			return fmt.Errorf("template %q has an empty format", name)
		}
		if strings.HasSuffix(name, InstructionSuffix) {
			if tpl.MessageType != MessageSystem {
				return fmt.Errorf("instruction template %q must be a system message", name)
			}
			continue
		}
		if tpl.MessageType != MessageHuman {
			return fmt.Errorf("task template %q must be a human message", name)
		}
		instr, ok := b[name+InstructionSuffix]
		if !ok {
			return fmt.Errorf("task template %q has no %s%s pair", name, name, InstructionSuffix)
		}
		if instr.MessageType != MessageSystem {
			return fmt.Errorf("instruction template %q must be a system message", name+InstructionSuffix)
		}
	}
	return nil
}

// LoadBank reads a YAML prompt file and overlays it on the built-in bank.
// Entries replace built-ins by name; unknown names are added as-is.
func LoadBank(path string) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt bank: %w", err)
	}
	var overlay Bank
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse prompt bank: %w", err)
	}

	bank := DefaultBank()
	for name, tpl := range overlay {
		bank[name] = tpl
	}
	if err := bank.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prompt bank %s: %w", path, err)
	}
	return bank, nil
}

// DefaultBank returns the built-in templates
func DefaultBank() Bank {
	return Bank{
		TemplateTripletGeneration + InstructionSuffix: {
			MessageType: MessageSystem,
			Format: `You extract factual knowledge triplets from text.

A triplet is [subject, predicate, object]: the subject and object are entities or values, the predicate is the relation between them. Extract every distinct fact stated in the input, one triplet per fact.

Output format, with no surrounding prose:
[["subject", "predicate", "object"], ["subject", "predicate", "object"]]

Rules:
- Every triplet has exactly three elements.
- Quote every element, including numbers and dates.
- Do not invent facts that are not stated in the input.
- If the input states no facts, output [].`,
		},
		TemplateTripletGeneration: {
			MessageType: MessageHuman,
			Format: `Examples:
{{.examples}}

Input text:
{{.input_text}}

Triplets:`,
		},

		TemplateTripletMatch + InstructionSuffix: {
			MessageType: MessageSystem,
			Format: `You verify whether answer triplets are supported by reference triplets.

For each answer triplet, decide from the reference triplets alone whether the stated fact is supported. Paraphrases and equivalent phrasings count as support; facts absent from the references do not.

Output format, one entry per answer triplet index, with no surrounding prose:
0: True, 1: False, 2: True

Rules:
- Use exactly True or False for every answer triplet index.
- Judge only from the reference triplets, never from your own knowledge.`,
		},
		TemplateTripletMatch: {
			MessageType: MessageHuman,
			Format: `Examples:
{{.examples}}

Answer triplets:
-{{.answer_triplets}}

Reference triplets:
-{{.reference_triplets}}

Results:`,
		},

		TemplateTripletMatchInquiry + InstructionSuffix: {
			MessageType: MessageSystem,
			Format: `You verify whether answer triplets are supported by reference triplets.

For each answer triplet, reason step by step about whether the reference triplets support the stated fact. Paraphrases and equivalent phrasings count as support; facts absent from the references do not.

After your reasoning, write the delimiter [FINAL ANSWER] on its own line, followed by one entry per answer triplet index:
[FINAL ANSWER]
0: True, 1: False, 2: True

Rules:
- Use exactly True or False for every answer triplet index.
- Judge only from the reference triplets, never from your own knowledge.
- Nothing may follow the verdict listing.`,
		},
		TemplateTripletMatchInquiry: {
			MessageType: MessageHuman,
			Format: `Examples:
{{.examples}}

Answer triplets:
-{{.answer_triplets}}

Reference triplets:
-{{.reference_triplets}}

Reasoning and results:`,
		},

		TemplateHallucinationTest + InstructionSuffix: {
			MessageType: MessageSystem,
			Format: `You create evaluation data for hallucination detection.

Given reference documents and a question, write two answers: one strictly faithful to the references, and one containing plausible but false details that the references do not support. Then enumerate the injected false details.

Output format, exactly these three sections in this order:
Non-Hallucinated Answer:
<answer using only the references>
Hallucinated Answer:
<answer with injected false details>
Hallucinated Details:
* <first injected detail>
* <second injected detail>

Rules:
- Keep both answers similar in length and tone.
- Every injected detail must be listed under Hallucinated Details.`,
		},
		TemplateHallucinationTest: {
			MessageType: MessageHuman,
			Format: `Reference documents:
-{{.reference_documents}}

Question: {{.question}}`,
		},

		TemplateHallucinationStructured + InstructionSuffix: {
			MessageType: MessageSystem,
			Format: `You create evaluation data for hallucination detection.

Given reference documents and a question, write two answers: one strictly faithful to the references, and one containing plausible but false details that the references do not support. Then enumerate the injected false details.

Respond with a single JSON object and nothing else:
{"non_hallucinated_answer": "<answer using only the references>", "hallucinated_answer": "<answer with injected false details>", "hallucinated_details": ["<first injected detail>", "<second injected detail>"]}

Rules:
- All three keys are required.
- Keep both answers similar in length and tone.
- Every injected detail must appear in hallucinated_details.`,
		},
		TemplateHallucinationStructured: {
			MessageType: MessageHuman,
			Format: `Reference documents:
-{{.reference_documents}}

Question: {{.question}}`,
		},

		TemplateAnswerGeneration + InstructionSuffix: {
			MessageType: MessageSystem,
			Format: `You answer questions using only the provided reference documents.

Write a direct, complete answer grounded in the references. If the references do not contain the answer, say so instead of guessing.`,
		},
		TemplateAnswerGeneration: {
			MessageType: MessageHuman,
			Format: `Examples:
{{.examples}}

Reference documents:
-{{.reference_documents}}

Question: {{.question}}

Answer:`,
		},
	}
}
