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

import "fmt"

// ValidateModuleRef validates a ModuleRef according to domain rules.
//
// Validation rules:
//   - Course and ModuleName must not be empty
//   - TopicNumber must be positive (1-based)
//   - at least one transcript path must be present
//
// NOT validated:
//   - slugs (derived from metadata; may legitimately repeat the names)
//   - transcript file existence (checked by the ingestion stage on read)
func ValidateModuleRef(ref *ModuleRef) error {
	if ref == nil {
		return fmt.Errorf("%w: ref is nil", ErrInvalidModuleRef)
	}

	if ref.Course == "" {
		return fmt.Errorf("%w: %w", ErrInvalidModuleRef, ErrEmptyCourse)
	}

	if ref.ModuleName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidModuleRef, ErrEmptyModuleName)
	}

	if ref.TopicNumber < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidModuleRef, ErrInvalidTopicNumber)
	}

	if len(ref.TranscriptPaths) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidModuleRef, ErrNoTranscripts)
	}

	return nil
}

// ValidateOutlineEntry validates an OutlineEntry according to domain rules.
//
// Validation rules:
//   - Order must not be negative
//   - Kind must be valid (section or subsection)
//   - Title and Query must not be empty
func ValidateOutlineEntry(entry *OutlineEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidOutlineEntry)
	}

	if entry.Order < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOutlineEntry, ErrNegativeOrder)
	}

	if err := ValidateSectionKind(entry.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOutlineEntry, err)
	}

	if entry.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidOutlineEntry, ErrEmptyTitle)
	}

	if entry.Query == "" {
		return fmt.Errorf("%w: %w", ErrInvalidOutlineEntry, ErrEmptyQuery)
	}

	return nil
}

// ValidateSectionKind validates that a SectionKind has a valid value.
func ValidateSectionKind(kind SectionKind) error {
	if kind != KindSection && kind != KindSubsection {
		return fmt.Errorf("%w: value %d", ErrInvalidSectionKind, kind)
	}
	return nil
}
