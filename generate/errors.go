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
	"errors"
	"fmt"
)

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("ai provider required")

	// ErrGeneration indicates the generation stage failed as a whole,
	// as opposed to individual section failures which are recorded in
	// the result and do not abort the stage.
	ErrGeneration = errors.New("generation failed")

	// ErrEmptyOutline is returned when the outline has no entries.
	ErrEmptyOutline = errors.New("outline has no entries")

	// ErrInvalidOutlineFile is returned when an outline file cannot be
	// read or parsed.
	ErrInvalidOutlineFile = errors.New("invalid outline file")
)

// SectionFailure records one outline entry that could not be generated.
// It carries enough context to retry the section on a subsequent run.
type SectionFailure struct {
	Order int
	Title string
	Err   error
}

// Error implements the error interface.
func (f SectionFailure) Error() string {
	return fmt.Sprintf("section %d (%s): %v", f.Order, f.Title, f.Err)
}

// Unwrap returns the underlying cause.
func (f SectionFailure) Unwrap() error {
	return f.Err
}
