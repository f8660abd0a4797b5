package parse

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/ppiankov/aletheia/internal/model"
)

// Section markers for the delimiter-shaped hallucination response
const (
	hlcntnAnswerMarker  = "Hallucinated Answer:\n"
	hlcntnDetailsMarker = "Hallucinated Details:"
	nonHlcntnMarker     = "Non-Hallucinated Answer:\n"
)

// HallucinationParser recovers the three hallucination-synthesis fields from
// raw model output. Both supported response shapes degrade to all-empty
// fields on any structural failure.
type HallucinationParser struct {
	log *slog.Logger
}

// NewHallucinationParser returns a parser logging through log, or the
// default logger when nil
func NewHallucinationParser(log *slog.Logger) *HallucinationParser {
	if log == nil {
		log = slog.Default()
	}
	return &HallucinationParser{log: log}
}

// ParseDelimited extracts the fields from a sectioned free-text response:
//
//	Non-Hallucinated Answer:
//	<faithful answer>
//	Hallucinated Answer:
//	<hallucinated answer>
//	Hallucinated Details:
//	<injected false details>
//
// The faithful and hallucinated answers are the first and second segments
// after the answer marker ("Non-Hallucinated Answer:\n" contains the answer
// marker, so the faithful section splits off it too). Markdown emphasis is
// stripped from the hallucinated answer. Missing markers yield three empty
// fields.
func (p *HallucinationParser) ParseDelimited(raw string) model.HallucinationDataGeneratorOutput {
	detailParts := strings.Split(raw, hlcntnDetailsMarker)
	if len(detailParts) < 2 {
		return p.degrade(raw, "missing details marker")
	}
	answerParts := strings.Split(detailParts[0], hlcntnAnswerMarker)
	if len(answerParts) < 3 {
		return p.degrade(raw, "missing answer markers")
	}
	return model.HallucinationDataGeneratorOutput{
		GeneratedNonHlcntnAnswer: strings.ReplaceAll(answerParts[1], nonHlcntnMarker, ""),
		GeneratedHlcntnAnswer:    strings.ReplaceAll(answerParts[2], "*", ""),
		HlcntnPart:               detailParts[1],
	}
}

// ParseStructured extracts the fields from a JSON response of the form
//
//	{"non_hallucinated_answer": "...", "hallucinated_answer": "...",
//	 "hallucinated_details": ["...", "..."]}
//
// All three keys are required. The details list is joined with single
// spaces. Malformed JSON or missing keys yield three empty fields.
func (p *HallucinationParser) ParseStructured(raw string) model.HallucinationDataGeneratorOutput {
	var payload struct {
		NonHallucinatedAnswer *string   `json:"non_hallucinated_answer"`
		HallucinatedAnswer    *string   `json:"hallucinated_answer"`
		HallucinatedDetails   *[]string `json:"hallucinated_details"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return p.degrade(raw, err.Error())
	}
	if payload.NonHallucinatedAnswer == nil || payload.HallucinatedAnswer == nil || payload.HallucinatedDetails == nil {
		return p.degrade(raw, "missing required keys")
	}
	return model.HallucinationDataGeneratorOutput{
		GeneratedNonHlcntnAnswer: *payload.NonHallucinatedAnswer,
		GeneratedHlcntnAnswer:    *payload.HallucinatedAnswer,
		HlcntnPart:               strings.Join(*payload.HallucinatedDetails, " "),
	}
}

func (p *HallucinationParser) degrade(raw, reason string) model.HallucinationDataGeneratorOutput {
	p.log.Warn("failed to parse hallucination data response", "reason", reason)
	p.log.Debug("unparseable hallucination data response", "raw", raw)
	return model.HallucinationDataGeneratorOutput{}
}
