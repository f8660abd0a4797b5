// Package score turns verdict maps into a transparent support index with
// diagnostic signals. Scoring is informational: it never changes verdicts.
package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/aletheia/internal/model"
)

// Scorer calculates the support index and generates signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate reduces the merged verdicts over the answer triplets to a 0-100
// support index. Indices without a verdict count against the index: an
// unjudged fact is not a supported fact.
func (s *Scorer) Calculate(answer model.TripletSet, merged model.VerdictMap, perSegment []model.VerdictMap) model.Score {
	total := len(answer)
	supported := 0
	checked := 0
	for i := range answer {
		verdict, ok := merged[i]
		if !ok {
			continue
		}
		checked++
		if verdict {
			supported++
		}
	}

	index := 0
	if total > 0 {
		index = int(math.Round(float64(supported) / float64(total) * 100))
	}

	var signals []model.Signal

	if signal := s.lowSupport(index, supported, checked, total); signal.Type != "" {
		signals = append(signals, signal)
	}
	if signal := s.missingVerdicts(answer, merged); signal.Type != "" {
		signals = append(signals, signal)
	}
	if signal := s.defaultTriplets(answer); signal.Type != "" {
		signals = append(signals, signal)
	}
	if signal := s.segmentDisagreement(perSegment); signal.Type != "" {
		signals = append(signals, signal)
	}

	return model.Score{
		Index:      index,
		Supported:  supported,
		Checked:    checked,
		Total:      total,
		Confidence: s.determineConfidence(index, checked, total, answer.DefaultCount()),
		Signals:    signals,
	}
}

// lowSupport flags answers whose facts the references mostly fail to back
func (s *Scorer) lowSupport(index, supported, checked, total int) model.Signal {
	if total == 0 {
		return model.Signal{
			Type:        model.SignalLowSupport,
			Severity:    model.SeverityCritical,
			Description: "No facts extracted from the answer",
			Data: map[string]any{
				"supported": 0,
				"total":     0,
			},
		}
	}
	if index >= 50 {
		return model.Signal{}
	}

	severity := model.SeverityWarning
	if index < 25 {
		severity = model.SeverityCritical
	}

	return model.Signal{
		Type:        model.SignalLowSupport,
		Severity:    severity,
		Description: fmt.Sprintf("References support %d of %d answer facts", supported, total),
		Data: map[string]any{
			"supported": supported,
			"checked":   checked,
			"total":     total,
			"index":     index,
			"formula":   "round(supported / total * 100)",
		},
	}
}

// missingVerdicts flags triplet indices the checker never judged
func (s *Scorer) missingVerdicts(answer model.TripletSet, merged model.VerdictMap) model.Signal {
	var missing []int
	for i := range answer {
		if _, ok := merged[i]; !ok {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return model.Signal{}
	}

	severity := model.SeverityWarning
	if len(missing) == len(answer) {
		severity = model.SeverityCritical
	}

	return model.Signal{
		Type:        model.SignalMissingVerdicts,
		Severity:    severity,
		Description: fmt.Sprintf("Checker returned no verdict for %d of %d facts", len(missing), len(answer)),
		Data: map[string]any{
			"missing_indices": missing,
			"missing":         len(missing),
			"total":           len(answer),
		},
	}
}

// defaultTriplets flags extraction degradation placeholders in the answer set
func (s *Scorer) defaultTriplets(answer model.TripletSet) model.Signal {
	defaults := answer.DefaultCount()
	if defaults == 0 {
		return model.Signal{}
	}

	return model.Signal{
		Type:        model.SignalDefaultTriplets,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d of %d answer triplets are extraction placeholders", defaults, len(answer)),
		Data: map[string]any{
			"defaults": defaults,
			"total":    len(answer),
		},
	}
}

// segmentDisagreement flags indices that different reference segments judged
// both ways. The merge policy already resolved them; the signal records that
// the references did not speak with one voice.
func (s *Scorer) segmentDisagreement(perSegment []model.VerdictMap) model.Signal {
	if len(perSegment) < 2 {
		return model.Signal{}
	}

	judged := make(map[int]struct{})
	for _, m := range perSegment {
		for idx := range m {
			judged[idx] = struct{}{}
		}
	}

	var contested []int
	for idx := range judged {
		hasTrue := false
		hasFalse := false
		for _, m := range perSegment {
			if verdict, ok := m[idx]; ok {
				if verdict {
					hasTrue = true
				} else {
					hasFalse = true
				}
			}
		}
		if hasTrue && hasFalse {
			contested = append(contested, idx)
		}
	}
	if len(contested) == 0 {
		return model.Signal{}
	}
	sort.Ints(contested)

	return model.Signal{
		Type:        model.SignalSegmentDisagreement,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("Reference segments disagree on %d fact(s)", len(contested)),
		Data: map[string]any{
			"contested_indices": contested,
			"segments":          len(perSegment),
		},
	}
}

// determineConfidence maps the index to a confidence level, degraded one
// step when verdicts are missing or extraction produced placeholders
func (s *Scorer) determineConfidence(index, checked, total, defaults int) string {
	if total == 0 || checked == 0 {
		return "low"
	}

	level := "low"
	switch {
	case index >= 80:
		level = "high"
	case index >= 50:
		level = "medium"
	}

	if checked < total || defaults > 0 {
		switch level {
		case "high":
			level = "medium"
		case "medium":
			level = "low"
		}
	}

	return level
}
