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


package assemble

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/poiesic/d2r/core"
)

var (
	// ErrAssembly indicates the assembly stage failed.
	ErrAssembly = errors.New("assembly failed")

	// ErrNoFragments is returned when the sections directory contains no
	// fragment files. Assembly never produces an empty document.
	ErrNoFragments = errors.New("no section fragments found")
)

// fragmentNameRe matches fragment files: a zero-padded order prefix,
// underscore, slug, ".tex".
var fragmentNameRe = regexp.MustCompile(`^(\d{2,})_.+\.tex$`)

// Stage merges generated fragments into the final document.
type Stage struct {
	header string
	footer string
	logger *slog.Logger
}

// Option configures a Stage.
type Option func(*Stage)

// WithHeaderTemplate overrides the embedded header template.
func WithHeaderTemplate(template string) Option {
	return func(s *Stage) {
		if template != "" {
			s.header = template
		}
	}
}

// WithFooterTemplate overrides the embedded footer template.
func WithFooterTemplate(template string) Option {
	return func(s *Stage) {
		if template != "" {
			s.footer = template
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stage) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewStage creates an assembly stage with the embedded templates.
func NewStage(opts ...Option) *Stage {
	s := &Stage{
		header: defaultHeader,
		footer: defaultFooter,
		logger: slog.Default().With("stage", "assemble"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStageFromFiles creates an assembly stage loading header and footer
// templates from files. An empty path keeps the embedded default.
func NewStageFromFiles(headerPath, footerPath string, opts ...Option) (*Stage, error) {
	header, err := loadTemplate(headerPath, defaultHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssembly, err)
	}
	footer, err := loadTemplate(footerPath, defaultFooter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssembly, err)
	}

	return NewStage(append([]Option{
		WithHeaderTemplate(header),
		WithFooterTemplate(footer),
	}, opts...)...), nil
}

// Result reports what one assembly run produced.
type Result struct {
	// SectionsIncluded is the number of fragments merged into the document.
	SectionsIncluded int
	// SectionsExpected is the outline size when known, otherwise equal
	// to SectionsIncluded. A shortfall means some sections failed to
	// generate and were tolerated.
	SectionsExpected int
	// OutputPath is where the merged document was written.
	OutputPath string
}

// Assemble merges every fragment in sectionsDir, sorted by order
// prefix, between the header and footer into mergedDocPath. expected
// is the outline size, or 0 when unknown.
//
// The document is written to a temp file in the target directory and
// renamed into place, so a crash never leaves a half-written document
// at the canonical path.
func (s *Stage) Assemble(ref core.ModuleRef, sectionsDir, mergedDocPath string, expected int) (*Result, error) {
	fragments, err := collectFragments(sectionsDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssembly, err)
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: %w in %s", ErrAssembly, ErrNoFragments, sectionsDir)
	}

	if expected <= 0 {
		expected = len(fragments)
	}
	if len(fragments) < expected {
		s.logger.Warn("assembling with missing sections",
			"included", len(fragments), "expected", expected)
	}

	var doc strings.Builder
	doc.WriteString(renderHeader(s.header, ref.Course, ref.ModuleName))
	doc.WriteString("\n")

	for _, fragment := range fragments {
		content, err := os.ReadFile(fragment.path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading fragment %s: %w", ErrAssembly, fragment.path, err)
		}
		doc.Write(content)
		doc.WriteString("\n\n")
	}

	doc.WriteString(s.footer)

	if err := writeAtomic(mergedDocPath, []byte(doc.String())); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssembly, err)
	}

	s.logger.Info("document assembled", "path", mergedDocPath,
		"included", len(fragments), "expected", expected)
	return &Result{
		SectionsIncluded: len(fragments),
		SectionsExpected: expected,
		OutputPath:       mergedDocPath,
	}, nil
}

type fragmentFile struct {
	order int
	path  string
}

// collectFragments lists the fragment files in sectionsDir sorted by
// their encoded order prefix. Non-fragment files are ignored.
func collectFragments(sectionsDir string) ([]fragmentFile, error) {
	entries, err := os.ReadDir(sectionsDir)
	if err != nil {
		return nil, fmt.Errorf("reading sections dir: %w", err)
	}

	var fragments []fragmentFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := fragmentNameRe.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}

		order := 0
		for _, c := range match[1] {
			order = order*10 + int(c-'0')
		}
		fragments = append(fragments, fragmentFile{
			order: order,
			path:  filepath.Join(sectionsDir, entry.Name()),
		})
	}

	sort.Slice(fragments, func(i, j int) bool {
		return fragments[i].order < fragments[j].order
	})
	return fragments, nil
}

// writeAtomic writes data to path via a temp file and rename. The temp
// file lives in the target directory so the rename stays on one
// filesystem.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
