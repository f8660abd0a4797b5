package parse

import (
	"log/slog"
	"strings"

	"github.com/ppiankov/aletheia/internal/model"
)

// FinalAnswerDelimiter separates free-form reasoning from the verdict
// listing in inquiry-mode responses
const FinalAnswerDelimiter = "[FINAL ANSWER]"

// VerdictParser recovers index:boolean verdicts from raw model output of the
// form "0: True, 1: False" with newlines, bullet hyphens and label prefixes
// mixed in. Tokens that fail to parse are skipped; absent indices mean
// "unknown", not "false".
type VerdictParser struct {
	log *slog.Logger
}

// NewVerdictParser returns a parser logging through log, or the default
// logger when nil
func NewVerdictParser(log *slog.Logger) *VerdictParser {
	if log == nil {
		log = slog.Default()
	}
	return &VerdictParser{log: log}
}

// Parse extracts a VerdictMap from raw response text. Newlines count as
// token separators and hyphens are discarded, so bulleted listings parse
// the same as comma-joined ones. The result may be empty or have gaps.
func (p *VerdictParser) Parse(raw string) model.VerdictMap {
	verdicts := make(model.VerdictMap)
	text := strings.ReplaceAll(raw, "\n", ",")
	for _, token := range strings.Split(text, ",") {
		token = strings.ReplaceAll(token, "-", "")
		if strings.TrimSpace(token) == "" {
			continue
		}
		idx, val, err := ParseVerdictEntry(token)
		if err != nil {
			p.log.Warn("skipping malformed verdict token", "error", err)
			p.log.Debug("malformed verdict token", "token", token)
			continue
		}
		verdicts[idx] = val
	}
	return verdicts
}

// ParseInquiry extracts a VerdictMap from an inquiry-mode response, where
// the model reasons freely and then emits the verdict listing after a
// "[FINAL ANSWER]" delimiter. Reasoning is logged at debug level only. When
// the delimiter is missing the whole response is treated as the listing.
// Index labels like "triplet_idx_0" or "triplet_0" are reduced to bare
// indices before parsing.
func (p *VerdictParser) ParseInquiry(raw string) model.VerdictMap {
	reasoning, listing, found := strings.Cut(raw, FinalAnswerDelimiter)
	if !found {
		listing = raw
	}
	p.log.Debug("fact check reasoning", "reasoning", strings.TrimSpace(reasoning))

	// order matters: stripping "triplet_" first would leave "idx_0" behind
	listing = strings.ReplaceAll(listing, "triplet_idx_", "")
	listing = strings.ReplaceAll(listing, "triplet_", "")
	return p.Parse(listing)
}
