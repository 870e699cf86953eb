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

import "errors"

// Domain validation errors
var (
	// ErrInvalidModuleRef indicates a ModuleRef failed validation.
	ErrInvalidModuleRef = errors.New("invalid module ref")

	// ErrInvalidOutlineEntry indicates an OutlineEntry failed validation.
	ErrInvalidOutlineEntry = errors.New("invalid outline entry")

	// ErrEmptyCourse indicates the Course field is empty.
	ErrEmptyCourse = errors.New("course must not be empty")

	// ErrEmptyModuleName indicates the ModuleName field is empty.
	ErrEmptyModuleName = errors.New("module name must not be empty")

	// ErrInvalidTopicNumber indicates a topic number that is not positive.
	ErrInvalidTopicNumber = errors.New("topic number must be positive")

	// ErrNoTranscripts indicates a module with no transcript content.
	ErrNoTranscripts = errors.New("module has no transcripts")

	// ErrEmptyTitle indicates an outline entry without a title.
	ErrEmptyTitle = errors.New("outline entry title must not be empty")

	// ErrEmptyQuery indicates an outline entry without a query.
	ErrEmptyQuery = errors.New("outline entry query must not be empty")

	// ErrInvalidSectionKind indicates an invalid SectionKind value.
	ErrInvalidSectionKind = errors.New("invalid section kind")

	// ErrNegativeOrder indicates an outline entry with a negative order.
	ErrNegativeOrder = errors.New("outline entry order must not be negative")
)
