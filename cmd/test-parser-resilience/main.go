// Test program to demonstrate parser resilience against malformed model
// output. This shows triplet, verdict and hallucination parsing degrading
// to defaults instead of failing.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/aletheia/internal/model"
	"github.com/ppiankov/aletheia/internal/parse"
)

func main() {
	fmt.Println("=== Parser Resilience Test ===")
	fmt.Println()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	testTripletParser(log)
	testVerdictParser(log)
	testHallucinationParser(log)

	fmt.Println("\n=== Test Complete ===")
	fmt.Println()
	fmt.Println("Note: warnings on stderr are the expected diagnostic trail;")
	fmt.Println("every case above still produced a well-typed result.")
}

func testTripletParser(log *slog.Logger) {
	fmt.Println("--- Triplet parser ---")

	cases := []struct {
		name string
		raw  string
	}{
		{"well-formed", `[["Earth", "orbits", "Sun"], ["Moon", "orbits", "Earth"]]`},
		{"stray braces", `{[["Earth", "orbits", "Sun"]]}`},
		{"doubled bracket and trailing dot", `[["Earth", "orbits", "Sun"]]].`},
		{"wrong-arity element", `[["Earth", "orbits", "Sun"], ["just", "two"]]`},
		{"prose instead of a list", `Sure! Here are the triplets you asked for.`},
		{"empty list", `[]`},
	}

	parser := parse.NewTripletParser(log)
	for _, tc := range cases {
		set := parser.Parse(tc.raw)
		fmt.Printf("  %-34s -> %d triplet(s), %d default(s)\n", tc.name, len(set), set.DefaultCount())
		for i, t := range set {
			fmt.Printf("      %d: %s\n", i, t.String())
		}
	}
	fmt.Println()
}

func testVerdictParser(log *slog.Logger) {
	fmt.Println("--- Verdict parser ---")

	cases := []struct {
		name string
		raw  string
	}{
		{"comma-joined", "0:True, 1:False"},
		{"newlines and bullet hyphens", "0:True,\n-1:False\n-2:True"},
		{"malformed token mixed in", "not-a-pair, 2:True"},
		{"nothing parseable", "the model refused to answer"},
	}

	parser := parse.NewVerdictParser(log)
	for _, tc := range cases {
		verdicts := parser.Parse(tc.raw)
		fmt.Printf("  %-34s -> %d verdict(s): %s\n", tc.name, len(verdicts), renderVerdicts(verdicts))
	}

	inquiry := "The first triplet matches reference 0 almost word for word.\n" +
		"The second has no support anywhere in the references.\n" +
		"[FINAL ANSWER]\ntriplet_idx_0: True, triplet_1: False"
	verdicts := parser.ParseInquiry(inquiry)
	fmt.Printf("  %-34s -> %d verdict(s): %s\n", "inquiry mode with labels", len(verdicts), renderVerdicts(verdicts))
	fmt.Println()
}

func testHallucinationParser(log *slog.Logger) {
	fmt.Println("--- Hallucination parser ---")

	parser := parse.NewHallucinationParser(log)
	empty := model.HallucinationDataGeneratorOutput{}

	delimited := "Non-Hallucinated Answer:\nMarie Curie discovered polonium in 1898.\n" +
		"Hallucinated Answer:\nMarie Curie discovered polonium in 1901 in Vienna.\n" +
		"Hallucinated Details:\n* the year was changed to 1901\n* the discovery was moved to Vienna"
	out := parser.ParseDelimited(delimited)
	fmt.Printf("  delimiter variant, well-formed   -> faithful %d chars, hallucinated %d chars\n",
		len(out.GeneratedNonHlcntnAnswer), len(out.GeneratedHlcntnAnswer))

	out = parser.ParseDelimited("the model ignored the section format entirely")
	fmt.Printf("  delimiter variant, no markers    -> all fields empty: %v\n", out == empty)

	out = parser.ParseStructured(`{"non_hallucinated_answer": "A", "hallucinated_answer": "B", "hallucinated_details": ["x", "y"]}`)
	fmt.Printf("  structured variant, well-formed  -> details joined: %q\n", out.HlcntnPart)

	out = parser.ParseStructured(`{"non_hallucinated_answer": "A"`)
	fmt.Printf("  structured variant, broken JSON  -> all fields empty: %v\n", out == empty)
	fmt.Println()
}

func renderVerdicts(verdicts model.VerdictMap) string {
	if len(verdicts) == 0 {
		return "(none)"
	}
	indices := make([]int, 0, len(verdicts))
	for idx := range verdicts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprintf("%d:%v", idx, verdicts[idx])
	}
	return strings.Join(parts, ", ")
}
