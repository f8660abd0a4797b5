package model

import "fmt"

// VerdictMap maps an answer-triplet index to a boolean judgment (true =
// supported by reference). Indices the parser failed to recover are absent;
// callers must treat absence as "unknown", not "false".
type VerdictMap map[int]bool

// Clone returns a copy of the verdict map
func (v VerdictMap) Clone() VerdictMap {
	out := make(VerdictMap, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Supported returns the number of true verdicts
func (v VerdictMap) Supported() int {
	n := 0
	for _, val := range v {
		if val {
			n++
		}
	}
	return n
}

// MergePolicy selects how per-segment verdict maps combine into one
type MergePolicy string

const (
	// MergeOR marks an index supported if any segment judged it supported.
	// The default: support can legitimately come from any single reference
	// document.
	MergeOR MergePolicy = "or"

	// MergeAND marks an index supported only if every segment that judged it
	// judged it supported
	MergeAND MergePolicy = "and"

	// MergeMajority takes a vote among the segments that judged the index;
	// ties resolve to false
	MergeMajority MergePolicy = "majority"
)

// String returns the policy name
func (p MergePolicy) String() string {
	return string(p)
}

// Valid reports whether the policy is one of the known merge policies
func (p MergePolicy) Valid() bool {
	switch p {
	case MergeOR, MergeAND, MergeMajority:
		return true
	}
	return false
}

// MergeVerdicts combines one VerdictMap per segment over the same
// answer-triplet index space. Keys judged by no segment stay absent. OR and
// AND are commutative and associative, so the result is independent of
// segment order and of any parallel completion order.
func MergeVerdicts(maps []VerdictMap, policy MergePolicy) (VerdictMap, error) {
	switch policy {
	case MergeOR:
		merged := make(VerdictMap)
		for _, m := range maps {
			for idx, val := range m {
				merged[idx] = merged[idx] || val
			}
		}
		return merged, nil

	case MergeAND:
		merged := make(VerdictMap)
		for _, m := range maps {
			for idx, val := range m {
				if prev, seen := merged[idx]; seen {
					merged[idx] = prev && val
				} else {
					merged[idx] = val
				}
			}
		}
		return merged, nil

	case MergeMajority:
		votes := make(map[int]int)
		counts := make(map[int]int)
		for _, m := range maps {
			for idx, val := range m {
				counts[idx]++
				if val {
					votes[idx]++
				}
			}
		}
		merged := make(VerdictMap, len(counts))
		for idx, total := range counts {
			merged[idx] = votes[idx]*2 > total
		}
		return merged, nil

	default:
		return nil, fmt.Errorf("unknown merge policy: %s (supported: or, and, majority)", policy)
	}
}
