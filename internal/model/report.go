package model

import (
	"time"

	"github.com/google/uuid"
)

// CheckReport is the complete result of checking one answer against its
// reference documents
type CheckReport struct {
	ID        string    `json:"id"`         // Unique report identifier
	CheckedAt time.Time `json:"checked_at"` // When the check ran

	Question string `json:"question,omitempty"` // Original question, when known
	Answer   string `json:"answer"`             // Answer text that was checked

	Provider string `json:"provider,omitempty"` // Invoker that produced verdicts
	Model    string `json:"model,omitempty"`    // Model name used

	AnswerTriplets TripletSet `json:"answer_triplets"` // Facts extracted from the answer

	Sources []SourceMeta `json:"sources,omitempty"` // Reference documents consulted

	SplitMode   bool   `json:"split_mode"`             // Whether references were checked per segment
	MergePolicy string `json:"merge_policy,omitempty"` // Policy used to combine segment verdicts

	Verdicts        VerdictMap   `json:"verdicts"`                   // Merged per-triplet support verdicts
	SegmentVerdicts []VerdictMap `json:"segment_verdicts,omitempty"` // Per-segment verdicts before merging

	Score Score `json:"score"` // Support index and diagnostic breakdown
}

// SourceMeta records where a reference document came from
type SourceMeta struct {
	URL         string    `json:"url,omitempty"`
	Path        string    `json:"path,omitempty"`
	StatusCode  int       `json:"status_code,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	FetchedAt   time.Time `json:"fetched_at,omitempty"`
	Bytes       int       `json:"bytes,omitempty"`
	Segments    int       `json:"segments,omitempty"` // Chunks this source contributed
}

// Score is the transparent scoring breakdown for a check
type Score struct {
	Index      int      `json:"index"`      // Supported-triplet share (0-100)
	Supported  int      `json:"supported"`  // Triplets the references support
	Checked    int      `json:"checked"`    // Triplets with a verdict
	Total      int      `json:"total"`      // Triplets extracted from the answer
	Confidence string   `json:"confidence"` // "low", "medium", "high"
	Signals    []Signal `json:"signals"`    // Diagnostic signals with transparent data
}

// Signal is a diagnostic observation with the data behind it
type Signal struct {
	Type        SignalType     `json:"type"`           // Signal classification
	Severity    SignalSeverity `json:"severity"`       // info, warning, critical
	Description string         `json:"description"`    // Human-readable description
	Data        map[string]any `json:"data,omitempty"` // Inputs behind the signal
}

// SignalType classifies a diagnostic signal
type SignalType string

const (
	SignalLowSupport          SignalType = "low_support"          // Few answer facts supported
	SignalMissingVerdicts     SignalType = "missing_verdicts"     // Checker skipped triplet indices
	SignalDefaultTriplets     SignalType = "default_triplets"     // Extraction degraded to placeholders
	SignalSegmentDisagreement SignalType = "segment_disagreement" // Segments voted both ways on a triplet
	SignalNoReferences        SignalType = "no_references"        // Check ran without reference text
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// CheckRecord is one batch input: a question/answer pair with its reference
// documents, read from a JSONL file
type CheckRecord struct {
	ID                 string   `json:"id"`
	Question           string   `json:"question,omitempty"`
	Answer             string   `json:"answer"`
	ReferenceDocuments []string `json:"reference_documents"`
}

// SynthReport is the result of one hallucination data synthesis
type SynthReport struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`

	Question   string   `json:"question"`
	Knowledge  []string `json:"knowledge,omitempty"` // Source passages the answers draw on
	Provider   string   `json:"provider,omitempty"`
	Model      string   `json:"model,omitempty"`
	Structured bool     `json:"structured"` // Whether the JSON response shape was used

	Output HallucinationDataGeneratorOutput `json:"output"`
}

// NewCheckReport starts a report for one answer
func NewCheckReport(question, answer string) *CheckReport {
	return &CheckReport{
		ID:        uuid.NewString(),
		CheckedAt: time.Now().UTC(),
		Question:  question,
		Answer:    answer,
	}
}

// NewSynthReport starts a report for one synthesis run
func NewSynthReport(question string) *SynthReport {
	return &SynthReport{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Question:    question,
	}
}
