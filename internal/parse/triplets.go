package parse

import (
	"log/slog"
	"strings"

	"github.com/ppiankov/aletheia/internal/model"
)

// TripletParser recovers a triplet list from raw model output. Responses
// are expected to resemble a literal list of 3-element lists but are often
// malformed: stray braces, truncated brackets, trailing punctuation. The
// parser never fails; it substitutes default triplets instead so indices
// stay aligned with whatever the model enumerated.
type TripletParser struct {
	log *slog.Logger
}

// NewTripletParser returns a parser logging through log, or the default
// logger when nil
func NewTripletParser(log *slog.Logger) *TripletParser {
	if log == nil {
		log = slog.Default()
	}
	return &TripletParser{log: log}
}

// Parse extracts a TripletSet from raw response text. Elements that are not
// 3-element lists become default triplets at their position. If the text is
// not a literal list at all, the parse is attempted once more and then
// degrades to a single default triplet.
func (p *TripletParser) Parse(raw string) model.TripletSet {
	text := normalizeTripletText(raw)

	elems, err := ParseList(text)
	if err != nil {
		p.log.Warn("triplet response is not a literal list, retrying", "error", err)
		p.log.Debug("unparseable triplet response", "raw", raw)
		// normalization is deterministic, so the retry sees the same failure
		if elems, err = ParseList(text); err != nil {
			p.log.Warn("triplet response unparseable after retry, substituting default triplet", "error", err)
			return model.TripletSet{model.DefaultTriplet()}
		}
	}

	out := make(model.TripletSet, 0, len(elems))
	for i, e := range elems {
		t, ok := tripletFrom(e)
		if !ok {
			p.log.Warn("triplet element is not a 3-element list, substituting default", "index", i)
			p.log.Debug("malformed triplet element", "index", i, "element", e.Text())
			out = append(out, model.DefaultTriplet())
			continue
		}
		out = append(out, t)
	}
	return out
}

// normalizeTripletText strips the bracket artifacts models commonly emit
// around triplet lists
func normalizeTripletText(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	s = strings.ReplaceAll(s, "]]]", "]]")
	s = strings.ReplaceAll(s, "]].", "]]")
	return s
}

func tripletFrom(v Value) (model.Triplet, bool) {
	if v.Kind != KindList || len(v.List) != 3 {
		return model.Triplet{}, false
	}
	var t model.Triplet
	for i, e := range v.List {
		t[i] = e.Text()
	}
	return t, true
}
