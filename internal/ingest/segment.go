package ingest

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/ppiankov/aletheia/internal/model"
)

// Segmenter chunks reference documents so each chunk can be triplet-extracted
// and checked on its own. Disabled, it passes each document through as a
// single segment.
type Segmenter struct {
	enabled  bool
	splitter textsplitter.TextSplitter
}

// NewSegmenter creates a segmenter from configuration
func NewSegmenter(config model.SegmenterConfig) *Segmenter {
	return &Segmenter{
		enabled: config.Enabled,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(config.ChunkSize),
			textsplitter.WithChunkOverlap(config.ChunkOverlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " ", ""}),
		),
	}
}

// Segment splits text into chunks. Blank text yields no segments.
func (s *Segmenter) Segment(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if !s.enabled {
		return []string{text}, nil
	}

	chunks, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}
	if len(chunks) == 0 {
		return []string{text}, nil
	}
	return chunks, nil
}

// SegmentAll splits every document, returning the flat chunk list and the
// chunk count per document
func (s *Segmenter) SegmentAll(docs []Document) ([]string, []int, error) {
	var chunks []string
	counts := make([]int, len(docs))
	for i, doc := range docs {
		segs, err := s.Segment(doc.Text)
		if err != nil {
			return nil, nil, fmt.Errorf("segment document %d: %w", i, err)
		}
		counts[i] = len(segs)
		chunks = append(chunks, segs...)
	}
	return chunks, counts, nil
}
