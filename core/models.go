// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for persisted chunk records.
// It is generated from content hashes so that re-ingesting identical
// content produces identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ModuleRef identifies one course module and the transcripts that belong
// to it. It is resolved once from the course metadata file and is
// immutable for the duration of a pipeline run.
type ModuleRef struct {
	Course          string
	CourseSlug      string
	TopicNumber     int // 1-based index into the metadata module list
	ModuleName      string
	ModuleSlug      string
	TranscriptPaths []string
}

// TableName returns the vector index namespace for this module.
// Chunks from different modules never share a namespace, so retrieval
// for one module cannot surface another module's transcripts.
func (m ModuleRef) TableName() string {
	return m.CourseSlug + ":" + m.ModuleSlug
}

// TopicLabel returns the topic label used in the output document layout,
// e.g. "Topic 3".
func (m ModuleRef) TopicLabel() string {
	return fmt.Sprintf("Topic %d", m.TopicNumber)
}

// SectionKind distinguishes top-level sections from subsections in the
// generated document.
type SectionKind int

const (
	// KindSection is a top-level \section entry.
	KindSection SectionKind = iota + 1
	// KindSubsection is a \subsection entry.
	KindSubsection
)

// String returns the lowercase name of the kind.
func (k SectionKind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindSubsection:
		return "subsection"
	default:
		return "unknown"
	}
}

// OutlineEntry describes one section of the document to generate: its
// position, kind, title and the retrieval query used to gather context.
// Outline order is the final document order.
type OutlineEntry struct {
	Order int // 0-based position in the document
	Kind  SectionKind
	Title string
	Query string
}

// SectionFragment is one generated section of the output document,
// persisted as an individual file so a partial failure loses at most
// one fragment.
type SectionFragment struct {
	Order       int
	Kind        SectionKind
	Title       string
	SourceQuery string
	Content     string
	Path        string // where the fragment was written
}

// ChunkRecord is the unit persisted in the vector index: one embedded
// slice of a transcript document.
type ChunkRecord struct {
	Id     ID
	Source string // transcript file the chunk came from
	Seq    int    // position of the chunk within its source
	Text   string
	Vector []float32
}

// ScoredChunk is a chunk returned from a similarity query together with
// its cosine similarity score.
type ScoredChunk struct {
	Chunk *ChunkRecord
	Score float32
}
