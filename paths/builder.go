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


package paths

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poiesic/d2r/core"
)

// ArtifactPaths holds every on-disk location a pipeline run reads or
// writes for one module.
type ArtifactPaths struct {
	// IndexDir is the directory of the persistent vector index for the
	// course. Namespacing within the index is by table name, so one
	// index dir serves all modules of a course.
	IndexDir string

	// SectionsDir is where generated section fragments are written,
	// one file per outline entry.
	SectionsDir string

	// MergedDocPath is the canonical location of the assembled LaTeX
	// document.
	MergedDocPath string
}

// Builder derives artifact paths under a fixed output base directory.
type Builder struct {
	outputBase string
}

// NewBuilder creates a Builder rooted at outputBase.
func NewBuilder(outputBase string) *Builder {
	return &Builder{outputBase: outputBase}
}

// OutputBase returns the configured output base directory.
func (b *Builder) OutputBase() string {
	return b.outputBase
}

// ForModule derives the artifact paths for a module. The layout is
//
//	<base>/<course>/index
//	<base>/<course>/<module_name>
//	<base>/<course>/Lecture Notes/Topic <n>/<module_name>/<module_name>.tex
//
// with every segment sanitized into a filesystem-safe form.
func (b *Builder) ForModule(ref core.ModuleRef) ArtifactPaths {
	course := Sanitize(ref.Course)
	module := Sanitize(ref.ModuleName)
	topic := Sanitize(ref.TopicLabel())

	return ArtifactPaths{
		IndexDir:    filepath.Join(b.outputBase, course, "index"),
		SectionsDir: filepath.Join(b.outputBase, course, module),
		MergedDocPath: filepath.Join(b.outputBase, course, "Lecture Notes",
			topic, module, module+".tex"),
	}
}

// FragmentPath returns the file path for one outline entry's fragment
// inside sectionsDir. The zero-padded order prefix encodes document
// order so assembly can sort lexically.
func FragmentPath(sectionsDir string, order int, title string) string {
	return filepath.Join(sectionsDir, FragmentName(order, title))
}

// FragmentName returns the file name for a fragment, e.g.
// "03_buffer_overflows.tex".
func FragmentName(order int, title string) string {
	slug := strings.ToLower(Sanitize(title))
	slug = strings.ReplaceAll(slug, " ", "_")
	return fmt.Sprintf("%02d_%s.tex", order, slug)
}

// Sanitize normalizes a name into a filesystem-safe path segment.
// Path separators and control characters are replaced, whitespace is
// collapsed, and the result is trimmed. The mapping is deterministic:
// the same input always produces the same segment.
func Sanitize(segment string) string {
	var sb strings.Builder
	for _, r := range segment {
		switch {
		case r == '/' || r == '\\' || r == ':':
			sb.WriteRune('-')
		case r == '\t' || r == '\n' || r == '\r':
			sb.WriteRune(' ')
		case r < 0x20 || r == 0x7f:
			// Drop control characters entirely.
		case strings.ContainsRune("<>\"|?*", r):
			sb.WriteRune('_')
		default:
			sb.WriteRune(r)
		}
	}

	cleaned := strings.Join(strings.Fields(sb.String()), " ")
	cleaned = strings.Trim(cleaned, ". ")
	if cleaned == "" {
		return "_"
	}
	return cleaned
}
