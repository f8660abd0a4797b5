package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/ppiankov/aletheia/internal/llm"
)

// Assembler renders bank templates into the message sequences the invokers
// consume. All formats are parsed once at construction; a field referenced
// by a template but absent from the render input is an error, not an empty
// substitution.
type Assembler struct {
	bank      Bank
	templates map[string]*template.Template
}

// NewAssembler validates the bank and parses every format
func NewAssembler(bank Bank) (*Assembler, error) {
	if err := bank.Validate(); err != nil {
		return nil, err
	}
	a := &Assembler{
		bank:      bank,
		templates: make(map[string]*template.Template, len(bank)),
	}
	for name, tpl := range bank {
		parsed, err := template.New(name).Option("missingkey=error").Parse(tpl.Format)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
		}
		a.templates[name] = parsed
	}
	return a, nil
}

// Render builds the instruction+task message pair for the named task
// template, substituting fields into both halves
func (a *Assembler) Render(name string, fields map[string]string) ([]llm.Message, error) {
	system, err := a.execute(name+InstructionSuffix, fields)
	if err != nil {
		return nil, err
	}
	human, err := a.execute(name, fields)
	if err != nil {
		return nil, err
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: human},
	}, nil
}

func (a *Assembler) execute(name string, fields map[string]string) (string, error) {
	tpl, ok := a.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", name)
	}
	var b strings.Builder
	if err := tpl.Execute(&b, fields); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", name, err)
	}
	return b.String(), nil
}
