// Package parse turns raw model output into structured triplets and
// verdicts. Model output is untrusted text: every parser here accepts a
// restricted literal grammar only (nested lists, quoted strings, integers,
// booleans) and degrades to documented fallbacks instead of failing the run.
package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates parsed literal values
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindList
)

// Value is one parsed literal
type Value struct {
	Kind Kind
	Str  string
	Int  int64
	Bool bool
	List []Value
}

// Text renders a scalar value the way the upstream pipeline expects:
// strings as-is, integers in decimal, booleans capitalized. Nested lists
// render in bracket form.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.Text()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

// ParseValue parses s as exactly one literal value. Trailing content after
// the value is an error.
func ParseValue(s string) (Value, error) {
	p := &scanner{src: s}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if !p.eof() {
		return Value{}, fmt.Errorf("trailing content at offset %d", p.pos)
	}
	return v, nil
}

// ParseList parses s as a list literal and returns its elements
func ParseList(s string) ([]Value, error) {
	v, err := ParseValue(s)
	if err != nil {
		return nil, err
	}
	if v.Kind != KindList {
		return nil, fmt.Errorf("expected a list, got %s", v.kindName())
	}
	return v.List, nil
}

// ParseVerdictEntry parses one "index: boolean" pair, e.g. "2: True".
// Tokens with missing or repeated separators, non-integer indices, or
// non-boolean values are rejected.
func ParseVerdictEntry(s string) (int, bool, error) {
	head, tail, found := strings.Cut(s, ":")
	if !found {
		return 0, false, fmt.Errorf("missing ':' separator in %q", s)
	}
	if strings.Contains(tail, ":") {
		return 0, false, fmt.Errorf("multiple ':' separators in %q", s)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, false, fmt.Errorf("non-integer index in %q", s)
	}
	switch strings.TrimSpace(tail) {
	case "True", "true":
		return idx, true, nil
	case "False", "false":
		return idx, false, nil
	default:
		return 0, false, fmt.Errorf("non-boolean verdict in %q", s)
	}
}

func (v Value) kindName() string {
	switch v.Kind {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindBool:
		return "boolean"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// scanner is a single-pass recursive descent reader over the source text
type scanner struct {
	src string
	pos int
}

func (p *scanner) eof() bool {
	return p.pos >= len(p.src)
}

func (p *scanner) peek() byte {
	return p.src[p.pos]
}

func (p *scanner) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *scanner) value() (Value, error) {
	if p.eof() {
		return Value{}, fmt.Errorf("unexpected end of input")
	}
	switch c := p.peek(); {
	case c == '[':
		return p.list()
	case c == '\'' || c == '"':
		return p.quoted(c)
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.integer()
	case c == 'T' || c == 'F' || c == 't' || c == 'f':
		return p.boolean()
	default:
		return Value{}, fmt.Errorf("unexpected character %q at offset %d", c, p.pos)
	}
}

func (p *scanner) list() (Value, error) {
	p.pos++ // consume '['
	var elems []Value
	for {
		p.skipSpace()
		if p.eof() {
			return Value{}, fmt.Errorf("unterminated list at offset %d", p.pos)
		}
		if p.peek() == ']' {
			p.pos++
			return Value{Kind: KindList, List: elems}, nil
		}
		if len(elems) > 0 {
			if p.peek() != ',' {
				return Value{}, fmt.Errorf("expected ',' or ']' at offset %d", p.pos)
			}
			p.pos++
			p.skipSpace()
			// trailing comma before the closing bracket
			if !p.eof() && p.peek() == ']' {
				p.pos++
				return Value{Kind: KindList, List: elems}, nil
			}
		}
		elem, err := p.value()
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, elem)
	}
}

func (p *scanner) quoted(quote byte) (Value, error) {
	p.pos++ // consume opening quote
	var b strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		p.pos++
		switch c {
		case quote:
			return Value{Kind: KindString, Str: b.String()}, nil
		case '\\':
			if p.eof() {
				return Value{}, fmt.Errorf("unterminated escape at offset %d", p.pos)
			}
			e := p.src[p.pos]
			p.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'', '"':
				b.WriteByte(e)
			default:
				// unknown escape: keep both bytes, matching lenient readers
				b.WriteByte('\\')
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
	}
	return Value{}, fmt.Errorf("unterminated string literal")
}

func (p *scanner) integer() (Value, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	digits := 0
	for !p.eof() {
		c := p.peek()
		if c < '0' || c > '9' {
			break
		}
		digits++
		p.pos++
	}
	if digits == 0 {
		return Value{}, fmt.Errorf("malformed number at offset %d", start)
	}
	n, err := strconv.ParseInt(p.src[start:p.pos], 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("malformed number %q", p.src[start:p.pos])
	}
	return Value{Kind: KindInt, Int: n}, nil
}

func (p *scanner) boolean() (Value, error) {
	for _, lit := range [...]struct {
		text string
		val  bool
	}{
		{"True", true},
		{"true", true},
		{"False", false},
		{"false", false},
	} {
		if strings.HasPrefix(p.src[p.pos:], lit.text) {
			p.pos += len(lit.text)
			return Value{Kind: KindBool, Bool: lit.val}, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected identifier at offset %d", p.pos)
}
