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


package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when the pipeline configuration is
	// incomplete or inconsistent.
	ErrInvalidConfig = errors.New("invalid pipeline config")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("ai provider required")
)

// StageError wraps a fatal stage failure with the name of the stage
// that caused it, for exit-code attribution.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

// MissingPrerequisiteError reports that a skipped stage's required
// artifacts are absent. The run fails before any downstream call.
type MissingPrerequisiteError struct {
	// Stage is the skipped stage whose output is missing.
	Stage string
	// Artifact describes the missing artifact.
	Artifact string
}

// Error implements the error interface.
func (e *MissingPrerequisiteError) Error() string {
	return fmt.Sprintf("skipped stage %s has no artifacts: %s", e.Stage, e.Artifact)
}
