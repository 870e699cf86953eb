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
	"fmt"
	"time"
)

// Config holds everything one pipeline run needs. Validate is called
// eagerly by New, so a misconfigured run fails before any stage work.
type Config struct {
	// MetadataFile is the path to the course metadata JSON file.
	MetadataFile string
	// TopicNumber selects the module, 1-based.
	TopicNumber int
	// OutputBase is the root directory for all artifacts.
	OutputBase string
	// InputBaseDir resolves relative transcript paths in the metadata.
	// Empty keeps paths exactly as written.
	InputBaseDir string

	// RunLoad, RunGenerate and RunAssemble select which stages execute.
	// A skipped stage's artifacts must already exist.
	RunLoad     bool
	RunGenerate bool
	RunAssemble bool

	// Overwrite forces skipped-artifact checks off: the index is rebuilt
	// and fragments are regenerated.
	Overwrite bool

	// OutlineFile is an optional YAML outline; empty uses the built-in
	// outline. PromptsDir is an optional prompt template directory.
	OutlineFile string
	PromptsDir  string

	// HeaderTemplate and FooterTemplate are optional LaTeX template
	// files for assembly.
	HeaderTemplate string
	FooterTemplate string

	// TopK is the number of context passages retrieved per section.
	TopK int
	// PoolSize bounds concurrent section generation.
	PoolSize int
	// MaxRetries and RetryBaseDelay shape the provider retry policy.
	MaxRetries     int
	RetryBaseDelay time.Duration
	// Timeout bounds the whole run. Zero means no timeout.
	Timeout time.Duration
}

// Config defaults.
const (
	DefaultOutputBase     = "outputs"
	DefaultTopK           = 20
	DefaultPoolSize       = 4
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 1 * time.Second
)

// DefaultConfig returns a Config with all stages enabled and default
// tuning. MetadataFile and TopicNumber must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		OutputBase:     DefaultOutputBase,
		RunLoad:        true,
		RunGenerate:    true,
		RunAssemble:    true,
		TopK:           DefaultTopK,
		PoolSize:       DefaultPoolSize,
		MaxRetries:     DefaultMaxRetries,
		RetryBaseDelay: DefaultRetryBaseDelay,
	}
}

// Validate checks the configuration and fills zero-valued tuning
// fields with defaults.
func (c *Config) Validate() error {
	if c.MetadataFile == "" {
		return fmt.Errorf("%w: metadata file is required", ErrInvalidConfig)
	}
	if c.TopicNumber < 1 {
		return fmt.Errorf("%w: topic number must be positive, got %d", ErrInvalidConfig, c.TopicNumber)
	}
	if !c.RunLoad && !c.RunGenerate && !c.RunAssemble {
		return fmt.Errorf("%w: every stage is skipped, nothing to do", ErrInvalidConfig)
	}

	if c.OutputBase == "" {
		c.OutputBase = DefaultOutputBase
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}

	return nil
}
