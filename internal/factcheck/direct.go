package factcheck

import (
	"strings"

	"github.com/ppiankov/aletheia/internal/model"
)

// DirectMatcher judges answer triplets by normalized text equality against
// reference triplets. It needs no model, so it serves as a deterministic
// baseline and an offline fallback.
type DirectMatcher struct{}

// NewDirectMatcher creates a direct text matcher
func NewDirectMatcher() *DirectMatcher {
	return &DirectMatcher{}
}

// Match marks each answer triplet true when some reference triplet has the
// same three elements after lowercasing and whitespace trimming. Every answer
// index gets a verdict: unlike the model path there is nothing to skip.
func (m *DirectMatcher) Match(answer model.TripletSet, reference []model.ReferenceSegment) model.DirectTextMatchOutput {
	refSet := model.FlattenSegments(reference)

	index := make(map[model.Triplet]bool, len(refSet))
	for _, t := range refSet {
		index[normalizeTriplet(t)] = true
	}

	verdicts := make(model.VerdictMap, len(answer))
	for i, t := range answer {
		verdicts[i] = index[normalizeTriplet(t)]
	}

	return model.DirectTextMatchOutput{
		InputTriplets:             answer.Slices(),
		ReferenceTriplets:         refSet.Slices(),
		FactCheckPredictionBinary: verdicts,
	}
}

func normalizeTriplet(t model.Triplet) model.Triplet {
	var out model.Triplet
	for i, s := range t {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
