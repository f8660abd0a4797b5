package parse

import (
	"io"
	"log/slog"
	"testing"

	"github.com/ppiankov/aletheia/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTripletParser_WellFormed(t *testing.T) {
	parser := NewTripletParser(testLogger())

	got := parser.Parse(`[["Einstein", "developed", "relativity"], ["Curie", "discovered", "polonium"]]`)

	want := model.TripletSet{
		{"Einstein", "developed", "relativity"},
		{"Curie", "discovered", "polonium"},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d triplets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected triplet %d to be %v, got %v", i, want[i], got[i])
		}
	}
}

func TestTripletParser_RoundTrip(t *testing.T) {
	parser := NewTripletParser(testLogger())

	original := model.TripletSet{
		{"water", "boils at", "100C"},
		{"it's", `a "quoted"`, "object"},
	}

	got := parser.Parse(original.Render())

	if len(got) != len(original) {
		t.Fatalf("Expected %d triplets, got %d", len(original), len(got))
	}
	for i := range original {
		if got[i] != original[i] {
			t.Errorf("Expected triplet %d to survive round trip as %v, got %v", i, original[i], got[i])
		}
	}
}

func TestTripletParser_SingleQuotes(t *testing.T) {
	parser := NewTripletParser(testLogger())

	got := parser.Parse(`[['a', 'b', 'c']]`)

	if len(got) != 1 {
		t.Fatalf("Expected 1 triplet, got %d", len(got))
	}
	if got[0] != (model.Triplet{"a", "b", "c"}) {
		t.Errorf("Expected [a b c], got %v", got[0])
	}
}

func TestTripletParser_StrayBraces(t *testing.T) {
	parser := NewTripletParser(testLogger())

	got := parser.Parse(`{[["a", "b", "c"]]}`)

	if len(got) != 1 {
		t.Fatalf("Expected 1 triplet, got %d", len(got))
	}
	if got[0] != (model.Triplet{"a", "b", "c"}) {
		t.Errorf("Expected [a b c], got %v", got[0])
	}
}

func TestTripletParser_BracketArtifacts(t *testing.T) {
	parser := NewTripletParser(testLogger())

	tests := []struct {
		name  string
		input string
	}{
		{"tripled closing bracket", `[["a", "b", "c"]]]`},
		{"trailing period", `[["a", "b", "c"]].`},
		{"surrounding whitespace", "  \n" + `[["a", "b", "c"]]` + "\n  "},
	}
	for _, tt := range tests {
		got := parser.Parse(tt.input)
		if len(got) != 1 {
			t.Errorf("%s: expected 1 triplet, got %d", tt.name, len(got))
			continue
		}
		if got[0] != (model.Triplet{"a", "b", "c"}) {
			t.Errorf("%s: expected [a b c], got %v", tt.name, got[0])
		}
	}
}

func TestTripletParser_WrongArityKeepsIndexAlignment(t *testing.T) {
	parser := NewTripletParser(testLogger())

	got := parser.Parse(`[["a", "b"], ["c", "d", "e"], ["f", "g", "h", "i"]]`)

	if len(got) != 3 {
		t.Fatalf("Expected 3 triplets, got %d", len(got))
	}
	if !got[0].IsDefault() {
		t.Errorf("Expected index 0 to degrade to the default triplet, got %v", got[0])
	}
	if got[1] != (model.Triplet{"c", "d", "e"}) {
		t.Errorf("Expected index 1 to survive as [c d e], got %v", got[1])
	}
	if !got[2].IsDefault() {
		t.Errorf("Expected index 2 to degrade to the default triplet, got %v", got[2])
	}
}

func TestTripletParser_ScalarsStringify(t *testing.T) {
	parser := NewTripletParser(testLogger())

	got := parser.Parse(`[[1914, True, "WWI"]]`)

	if len(got) != 1 {
		t.Fatalf("Expected 1 triplet, got %d", len(got))
	}
	if got[0] != (model.Triplet{"1914", "True", "WWI"}) {
		t.Errorf("Expected [1914 True WWI], got %v", got[0])
	}
}

func TestTripletParser_TotalFailure(t *testing.T) {
	parser := NewTripletParser(testLogger())

	tests := []string{
		"I am unable to extract triplets from this text.",
		"",
		`[["truncated", "mid`,
	}
	for _, input := range tests {
		got := parser.Parse(input)
		if len(got) != 1 {
			t.Errorf("Expected exactly 1 triplet for %q, got %d", input, len(got))
			continue
		}
		if !got[0].IsDefault() {
			t.Errorf("Expected the default triplet for %q, got %v", input, got[0])
		}
	}
}

func TestTripletParser_EmptyListParsesEmpty(t *testing.T) {
	parser := NewTripletParser(testLogger())

	got := parser.Parse("[]")

	if len(got) != 0 {
		t.Errorf("Expected an empty set from an empty list, got %v", got)
	}
}

func TestTripletParser_NonListScalarFails(t *testing.T) {
	parser := NewTripletParser(testLogger())

	got := parser.Parse(`"just a sentence"`)

	if len(got) != 1 || !got[0].IsDefault() {
		t.Errorf("Expected a single default triplet, got %v", got)
	}
}
