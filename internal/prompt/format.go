package prompt

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/aletheia/internal/llm"
	"github.com/ppiankov/aletheia/internal/model"
)

// FormatTriplets renders a triplet set as an indexed listing, one
// "idx: [s, p, o]" entry per line. Entries join with a hyphen-prefixed
// newline; the task templates carry the first hyphen themselves.
func FormatTriplets(set model.TripletSet) string {
	entries := make([]string, len(set))
	for i, t := range set {
		entries[i] = fmt.Sprintf("%d: %s", i, t.String())
	}
	return strings.Join(entries, "\n-")
}

// FormatDocuments renders reference documents as a hyphen-bulleted listing,
// same joining rule as FormatTriplets
func FormatDocuments(docs []string) string {
	return strings.Join(docs, "\n-")
}

// LogMessages emits a rendered message sequence at debug level
func LogMessages(log *slog.Logger, label string, messages []llm.Message) {
	for _, m := range messages {
		log.Debug(label, "role", m.Role, "content", m.Content)
	}
}
