package ingest

import (
	"strings"
	"testing"
)

func TestSplitIntoChunksPacksParagraphs(t *testing.T) {
	text := "first paragraph.\n\nsecond paragraph.\n\nthird paragraph."
	chunks := splitIntoChunks(text, 100)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "first paragraph.") || !strings.Contains(chunks[0], "third paragraph.") {
		t.Errorf("packed chunk missing paragraphs: %q", chunks[0])
	}
}

func TestSplitIntoChunksRespectsMaxSize(t *testing.T) {
	paragraphs := make([]string, 10)
	for i := range paragraphs {
		paragraphs[i] = strings.Repeat("word ", 20)
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := splitIntoChunks(text, 250)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 250 {
			t.Errorf("chunk %d exceeds max size: %d bytes", i, len(chunk))
		}
	}
}

func TestSplitIntoChunksOversizedParagraph(t *testing.T) {
	lines := make([]string, 8)
	for i := range lines {
		lines[i] = strings.Repeat("x", 60)
	}
	text := strings.Join(lines, "\n")

	chunks := splitIntoChunks(text, 150)
	if len(chunks) < 2 {
		t.Fatalf("expected oversized paragraph to split, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 150 {
			t.Errorf("chunk %d exceeds max size: %d bytes", i, len(chunk))
		}
	}
}

func TestSplitIntoChunksOversizedLine(t *testing.T) {
	text := strings.Repeat("y", 500)

	chunks := splitIntoChunks(text, 200)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 hard-split chunks, got %d", len(chunks))
	}
	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	if total != 500 {
		t.Errorf("hard split lost content: %d of 500 bytes", total)
	}
}

func TestSplitIntoChunksEmptyInput(t *testing.T) {
	if chunks := splitIntoChunks("", 100); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(chunks))
	}
	if chunks := splitIntoChunks("\n\n   \n\n", 100); len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace input, got %d", len(chunks))
	}
}

func TestSplitIntoChunksInvalidMaxSize(t *testing.T) {
	chunks := splitIntoChunks("some text", 0)
	if len(chunks) != 1 || chunks[0] != "some text" {
		t.Errorf("expected fallback to default size, got %v", chunks)
	}
}
