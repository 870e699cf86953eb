package ingest

import "strings"

// defaultChunkSize is the target maximum chunk length in bytes. Sized
// so a handful of retrieved chunks fit comfortably in one completion
// prompt.
const defaultChunkSize = 1600

// splitIntoChunks splits transcript text into chunks of at most
// maxSize bytes. Paragraph boundaries (blank lines) are preferred split
// points; paragraphs are packed together until the next one would
// overflow. A single paragraph longer than maxSize is hard-split on
// line boundaries, and failing that on raw offsets.
func splitIntoChunks(text string, maxSize int) []string {
	if maxSize < 1 {
		maxSize = defaultChunkSize
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if len(paragraph) > maxSize {
			flush()
			chunks = append(chunks, splitOversized(paragraph, maxSize)...)
			continue
		}

		if current.Len() > 0 && current.Len()+len(paragraph)+2 > maxSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()

	return chunks
}

// splitOversized splits a single oversized paragraph, first on line
// boundaries and then on raw offsets for lines that still exceed maxSize.
func splitOversized(paragraph string, maxSize int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
	}

	for _, line := range strings.Split(paragraph, "\n") {
		for len(line) > maxSize {
			flush()
			chunks = append(chunks, strings.TrimSpace(line[:maxSize]))
			line = line[maxSize:]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(line)+1 > maxSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	return chunks
}
