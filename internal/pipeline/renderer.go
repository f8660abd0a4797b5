package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/aletheia/internal/model"
)

// Renderer writes check reports as JSON files and human-readable summaries
type Renderer struct {
	verbose bool
}

// NewRenderer creates a renderer. Verbose summaries list every triplet with
// its verdict.
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

// WriteJSON writes v as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderJSON writes v as indented JSON to path, creating parent directories
func (r *Renderer) RenderJSON(v any, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteSummary writes the human-readable form of a check report
func (r *Renderer) WriteSummary(w io.Writer, report *model.CheckReport) {
	fmt.Fprintf(w, "Support index: %d/100 (confidence: %s)\n", report.Score.Index, report.Score.Confidence)
	fmt.Fprintf(w, "Facts: %d supported / %d checked / %d extracted\n",
		report.Score.Supported, report.Score.Checked, report.Score.Total)
	if report.SplitMode {
		fmt.Fprintf(w, "Reference segments: %d (merge: %s)\n", len(report.SegmentVerdicts), report.MergePolicy)
	}

	if r.verbose && len(report.AnswerTriplets) > 0 {
		fmt.Fprintln(w, "Verdicts:")
		for i, t := range report.AnswerTriplets {
			fmt.Fprintf(w, "  %d: %-11s %s\n", i, verdictLabel(report.Verdicts, i), t.String())
		}
	}

	if len(report.Score.Signals) > 0 {
		fmt.Fprintln(w, "Signals:")
		for _, signal := range report.Score.Signals {
			fmt.Fprintf(w, "  [%s] %s: %s\n", signal.Severity, signal.Type, signal.Description)
		}
	}
}

func verdictLabel(verdicts model.VerdictMap, idx int) string {
	verdict, ok := verdicts[idx]
	if !ok {
		return "unknown"
	}
	if verdict {
		return "supported"
	}
	return "unsupported"
}
