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


package generate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/d2r/core"
)

// outlineFile is the YAML shape of an outline file:
//
//	sections:
//	  - kind: section
//	    title: Introduction
//	    query: Give a broad overview of ...
//	  - kind: subsection
//	    title: Threat Models
//	    query: Explain threat modeling ...
type outlineFile struct {
	Sections []outlineSection `yaml:"sections"`
}

type outlineSection struct {
	Kind  string `yaml:"kind"`
	Title string `yaml:"title"`
	Query string `yaml:"query"`
}

// LoadOutline reads an outline from a YAML file. Entry order follows
// file order; the first entry is expected to be the introduction but
// this is not enforced.
func LoadOutline(path string) ([]core.OutlineEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutlineFile, err)
	}

	var file outlineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutlineFile, err)
	}
	if len(file.Sections) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutlineFile, ErrEmptyOutline)
	}

	entries := make([]core.OutlineEntry, 0, len(file.Sections))
	for i, section := range file.Sections {
		kind, err := parseKind(section.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrInvalidOutlineFile, i, err)
		}

		entry := core.OutlineEntry{
			Order: i,
			Kind:  kind,
			Title: section.Title,
			Query: section.Query,
		}
		if err := core.ValidateOutlineEntry(&entry); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrInvalidOutlineFile, i, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parseKind(kind string) (core.SectionKind, error) {
	switch kind {
	case "section":
		return core.KindSection, nil
	case "subsection":
		return core.KindSubsection, nil
	default:
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidSectionKind, kind)
	}
}

// DefaultOutline returns the built-in outline used when no outline file
// is configured: an introduction section followed by subsections that
// walk the module from concepts to applications.
func DefaultOutline(moduleName string) []core.OutlineEntry {
	return []core.OutlineEntry{
		{
			Order: 0,
			Kind:  core.KindSection,
			Title: "Introduction",
			Query: fmt.Sprintf("Write an introduction to the module %q covering its main themes and why they matter.", moduleName),
		},
		{
			Order: 1,
			Kind:  core.KindSubsection,
			Title: "Key Concepts",
			Query: fmt.Sprintf("Define and explain the key concepts and terminology introduced in the module %q.", moduleName),
		},
		{
			Order: 2,
			Kind:  core.KindSubsection,
			Title: "Detailed Discussion",
			Query: fmt.Sprintf("Discuss in depth the main material of the module %q, including any techniques, mechanisms or processes the lectures describe.", moduleName),
		},
		{
			Order: 3,
			Kind:  core.KindSubsection,
			Title: "Examples and Applications",
			Query: fmt.Sprintf("Present concrete examples, case studies and practical applications from the module %q.", moduleName),
		},
		{
			Order: 4,
			Kind:  core.KindSubsection,
			Title: "Summary",
			Query: fmt.Sprintf("Summarize the essential takeaways of the module %q.", moduleName),
		},
	}
}
