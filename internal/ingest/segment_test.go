package ingest

import (
	"strings"
	"testing"

	"github.com/ppiankov/aletheia/internal/model"
)

func TestSegmenter_Disabled(t *testing.T) {
	seg := NewSegmenter(model.SegmenterConfig{Enabled: false, ChunkSize: 100, ChunkOverlap: 10})

	long := strings.Repeat("Sentence about the reference topic. ", 50)
	chunks, err := seg.Segment(long)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(chunks) != 1 || chunks[0] != long {
		t.Errorf("expected one passthrough segment, got %d", len(chunks))
	}
}

func TestSegmenter_SplitsLongText(t *testing.T) {
	seg := NewSegmenter(model.SegmenterConfig{Enabled: true, ChunkSize: 100, ChunkOverlap: 10})

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("The reference describes one more fact about the subject.\n")
	}

	chunks, err := seg.Segment(sb.String())
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected long text split into multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("expected non-blank chunk at %d", i)
		}
		if len(chunk) > 120 {
			t.Errorf("chunk %d exceeds the size bound: %d bytes", i, len(chunk))
		}
	}
}

func TestSegmenter_BlankText(t *testing.T) {
	seg := NewSegmenter(model.SegmenterConfig{Enabled: true, ChunkSize: 100, ChunkOverlap: 10})

	for _, text := range []string{"", "   ", "\n\n"} {
		chunks, err := seg.Segment(text)
		if err != nil {
			t.Fatalf("Segment(%q) error = %v", text, err)
		}
		if len(chunks) != 0 {
			t.Errorf("expected no segments for blank text, got %v", chunks)
		}
	}
}

func TestSegmenter_SegmentAll(t *testing.T) {
	seg := NewSegmenter(model.SegmenterConfig{Enabled: false, ChunkSize: 100, ChunkOverlap: 10})

	docs := []Document{
		{Text: "First document."},
		{Text: "   "},
		{Text: "Third document."},
	}
	chunks, counts, err := seg.SegmentAll(docs)
	if err != nil {
		t.Fatalf("SegmentAll() error = %v", err)
	}

	if len(chunks) != 2 {
		t.Errorf("expected 2 chunks, got %d", len(chunks))
	}
	wantCounts := []int{1, 0, 1}
	for i, want := range wantCounts {
		if counts[i] != want {
			t.Errorf("expected document %d to contribute %d chunks, got %d", i, want, counts[i])
		}
	}
}
