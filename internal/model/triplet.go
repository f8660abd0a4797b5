package model

import (
	"fmt"
	"strings"
)

// Triplet represents a (subject, predicate, object) fact fragment extracted from text
type Triplet [3]string

// DefaultTriplet returns the null triplet used in place of malformed candidates.
// Malformed triplets are nulled, never dropped, so verdict indices stay aligned
// with the source list.
func DefaultTriplet() Triplet {
	return Triplet{"", "", ""}
}

// Subject returns the first element of the triplet
func (t Triplet) Subject() string { return t[0] }

// Predicate returns the second element of the triplet
func (t Triplet) Predicate() string { return t[1] }

// Object returns the third element of the triplet
func (t Triplet) Object() string { return t[2] }

// IsDefault reports whether the triplet is the null triplet
func (t Triplet) IsDefault() bool {
	return t[0] == "" && t[1] == "" && t[2] == ""
}

// String renders the triplet as a bracketed list of quoted strings, e.g.
// ["subject", "predicate", "object"]. The form round-trips through the
// literal parser.
func (t Triplet) String() string {
	return fmt.Sprintf("[%q, %q, %q]", t[0], t[1], t[2])
}

// Slice returns the triplet as a 3-element string slice
func (t Triplet) Slice() []string {
	return []string{t[0], t[1], t[2]}
}

// TripletSet is an ordered sequence of triplets. The order is the canonical
// index space used by verdicts; a set is immutable once returned to a caller.
type TripletSet []Triplet

// NewTripletSet builds a TripletSet from raw 3-element slices. Slices of any
// other length become the default triplet at the same index.
func NewTripletSet(raw [][]string) TripletSet {
	set := make(TripletSet, 0, len(raw))
	for _, elem := range raw {
		if len(elem) != 3 {
			set = append(set, DefaultTriplet())
			continue
		}
		set = append(set, Triplet{elem[0], elem[1], elem[2]})
	}
	return set
}

// Render produces the literal list-of-lists text form of the set, e.g.
// [["a", "b", "c"], ["d", "e", "f"]]
func (s TripletSet) Render() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Slices returns the set as raw 3-element string slices for boundary outputs
func (s TripletSet) Slices() [][]string {
	out := make([][]string, len(s))
	for i, t := range s {
		out[i] = t.Slice()
	}
	return out
}

// DefaultCount returns how many triplets in the set are the null triplet
func (s TripletSet) DefaultCount() int {
	n := 0
	for _, t := range s {
		if t.IsDefault() {
			n++
		}
	}
	return n
}

// ReferenceSegment is an ordered sequence of triplets drawn from one reference
// unit, sized to fit one model call
type ReferenceSegment = TripletSet

// FlattenSegments concatenates reference segments into one TripletSet in
// segment order
func FlattenSegments(segments []ReferenceSegment) TripletSet {
	total := 0
	for _, seg := range segments {
		total += len(seg)
	}
	flat := make(TripletSet, 0, total)
	for _, seg := range segments {
		flat = append(flat, seg...)
	}
	return flat
}
