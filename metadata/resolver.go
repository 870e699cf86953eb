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


package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/d2r/core"
)

// Resolver turns a metadata descriptor plus a topic number into a
// core.ModuleRef. A zero Resolver is usable; options adjust how relative
// transcript paths are resolved.
type Resolver struct {
	inputBaseDir string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithInputBaseDir sets the directory relative transcript paths are
// resolved against. Absolute paths and paths that already exist are
// left untouched.
func WithInputBaseDir(dir string) Option {
	return func(r *Resolver) {
		r.inputBaseDir = dir
	}
}

// NewResolver creates a Resolver with the provided options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load reads and parses a course metadata file.
func Load(metadataFile string) (*CourseMeta, error) {
	data, err := os.ReadFile(metadataFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolution, err)
	}

	var course CourseMeta
	if err := json.Unmarshal(data, &course); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrResolution, ErrMalformedMetadata, err)
	}

	return &course, nil
}

// Resolve loads the metadata file and resolves the 1-based topicNumber
// into a module reference. Transcript paths are the ".txt" transcript
// content entries of the selected module, resolved against the input
// base dir when relative.
func (r *Resolver) Resolve(metadataFile string, topicNumber int) (core.ModuleRef, error) {
	course, err := Load(metadataFile)
	if err != nil {
		return core.ModuleRef{}, err
	}

	if topicNumber < 1 || topicNumber > len(course.Modules) {
		return core.ModuleRef{}, fmt.Errorf("%w: %w: topic %d, %d modules",
			ErrResolution, ErrTopicOutOfRange, topicNumber, len(course.Modules))
	}

	module := course.Modules[topicNumber-1]

	ref := core.ModuleRef{
		Course:          course.CourseName,
		CourseSlug:      course.CourseSlug,
		TopicNumber:     topicNumber,
		ModuleName:      module.ModuleName,
		ModuleSlug:      module.ModuleSlug,
		TranscriptPaths: r.transcriptPaths(module),
	}

	if err := core.ValidateModuleRef(&ref); err != nil {
		return core.ModuleRef{}, fmt.Errorf("%w: %w", ErrResolution, err)
	}

	return ref, nil
}

// transcriptPaths collects the transcript text files of a module in
// metadata order.
func (r *Resolver) transcriptPaths(module ModuleMeta) []string {
	var paths []string
	for _, lesson := range module.Lessons {
		for _, item := range lesson.Items {
			for _, content := range item.Content {
				if content.ContentType != "transcript" || !strings.HasSuffix(content.Path, ".txt") {
					continue
				}
				paths = append(paths, r.resolvePath(content.Path))
			}
		}
	}
	return paths
}

// resolvePath joins relative paths with the input base dir. Paths that
// are absolute or already exist as given are kept unchanged.
func (r *Resolver) resolvePath(path string) string {
	if path == "" || r.inputBaseDir == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(r.inputBaseDir, path)
}
