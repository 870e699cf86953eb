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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/d2r/ai"
	"github.com/poiesic/d2r/core"
	"github.com/poiesic/d2r/paths"
	"github.com/poiesic/d2r/retry"
	"github.com/poiesic/d2r/storage"
)

const (
	defaultTopK           = 20
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 1 * time.Second
)

// Stage generates one LaTeX fragment per outline entry using retrieval-
// augmented completion.
type Stage struct {
	index          storage.VectorIndex
	provider       ai.Provider
	prompts        Prompts
	pool           *ants.Pool
	topK           int
	maxRetries     int
	retryBaseDelay time.Duration
	progressWriter io.Writer
	logger         *slog.Logger
}

// Option configures a Stage.
type Option func(*Stage) error

// WithPoolSize sets the worker pool size for concurrent section
// generation. Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Stage) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithTopK sets the number of context passages retrieved per section.
func WithTopK(topK int) Option {
	return func(s *Stage) error {
		if topK > 0 {
			s.topK = topK
		}
		return nil
	}
}

// WithPrompts sets the prompt templates.
// Default is DefaultPrompts().
func WithPrompts(prompts Prompts) Option {
	return func(s *Stage) error {
		s.prompts = prompts
		return nil
	}
}

// WithRetryPolicy sets the bounded backoff policy for provider calls.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) Option {
	return func(s *Stage) error {
		if maxRetries > 0 {
			s.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			s.retryBaseDelay = baseDelay
		}
		return nil
	}
}

// WithProgressWriter sets where progress output is written.
// Default is io.Discard.
func WithProgressWriter(writer io.Writer) Option {
	return func(s *Stage) error {
		if writer == nil {
			writer = io.Discard
		}
		s.progressWriter = writer
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stage) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStage creates a generation stage.
func NewStage(index storage.VectorIndex, provider ai.Provider, opts ...Option) (*Stage, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Stage{
		index:          index,
		provider:       provider,
		prompts:        DefaultPrompts(),
		pool:           pool,
		topK:           defaultTopK,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		progressWriter: io.Discard,
		logger:         slog.Default().With("stage", "generate"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}
	return s, nil
}

// Release releases the worker pool.
// The stage should not be used after calling Release.
func (s *Stage) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Result reports what one generation run did.
type Result struct {
	// Written holds the fragments generated in this run, in outline order.
	Written []core.SectionFragment
	// SkippedOrders lists outline entries whose fragment file already
	// existed and was kept.
	SkippedOrders []int
	// Failed lists outline entries that could not be generated. The run
	// as a whole still succeeds; failed sections are simply absent from
	// the assembled document until a re-run fills them in.
	Failed []SectionFailure
}

// Generate produces one fragment file per outline entry under
// sectionsDir. Entries run concurrently on the worker pool; each
// failure is isolated to its own entry. The returned error is non-nil
// only for whole-stage problems such as an unusable sections directory
// or an invalid outline.
func (s *Stage) Generate(ctx context.Context, ref core.ModuleRef, table string, outline []core.OutlineEntry, sectionsDir string, overwrite bool) (*Result, error) {
	if err := core.ValidateModuleRef(&ref); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if len(outline) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, ErrEmptyOutline)
	}
	for i := range outline {
		if err := core.ValidateOutlineEntry(&outline[i]); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
		}
	}

	if err := os.MkdirAll(sectionsDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating sections dir: %w", ErrGeneration, err)
	}

	tracker := NewProgressTracker(s.progressWriter, len(outline))
	tracker.Start()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result Result
	)

	systemPrompt := s.prompts.systemPrompt(ref)

	for _, entry := range outline {
		fragmentPath := paths.FragmentPath(sectionsDir, entry.Order, entry.Title)

		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			defer tracker.Increment(1)

			if !overwrite {
				if _, err := os.Stat(fragmentPath); err == nil {
					s.logger.Info("fragment exists, skipping",
						"order", entry.Order, "title", entry.Title)
					mu.Lock()
					result.SkippedOrders = append(result.SkippedOrders, entry.Order)
					mu.Unlock()
					return
				}
			}

			fragment, err := s.generateSection(ctx, ref, table, entry, fragmentPath, systemPrompt)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("section generation failed",
					"order", entry.Order, "title", entry.Title, "err", err)
				result.Failed = append(result.Failed, SectionFailure{
					Order: entry.Order,
					Title: entry.Title,
					Err:   err,
				})
				return
			}
			result.Written = append(result.Written, *fragment)
		})
		if err != nil {
			wg.Done()
			return nil, fmt.Errorf("%w: submitting section %d: %w", ErrGeneration, entry.Order, err)
		}
	}

	wg.Wait()
	tracker.Finish()

	slices.SortFunc(result.Written, func(a, b core.SectionFragment) int {
		return a.Order - b.Order
	})
	slices.Sort(result.SkippedOrders)
	slices.SortFunc(result.Failed, func(a, b SectionFailure) int {
		return a.Order - b.Order
	})

	s.logger.Info("generation complete",
		"written", len(result.Written),
		"skipped", len(result.SkippedOrders),
		"failed", len(result.Failed),
		"elapsed", tracker.Elapsed())
	return &result, nil
}

// generateSection runs the retrieval-augmented completion for one
// outline entry and writes the fragment file.
func (s *Stage) generateSection(ctx context.Context, ref core.ModuleRef, table string, entry core.OutlineEntry, fragmentPath, systemPrompt string) (*core.SectionFragment, error) {
	var queryVector []float32
	err := retry.WithBackoff(ctx, func() error {
		var err error
		queryVector, err = s.provider.Embedder().EmbedText(ctx, entry.Query)
		return err
	}, s.maxRetries, s.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	scored, err := s.index.Query(ctx, table, queryVector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	passages := make([]string, len(scored))
	for i, sc := range scored {
		passages[i] = sc.Chunk.Text
	}

	prompt := systemPrompt + "\n\n" + s.prompts.buildPrompt(ref, entry)

	var response string
	err = retry.WithBackoff(ctx, func() error {
		var err error
		response, err = s.provider.Completer().Complete(ctx, prompt, passages)
		return err
	}, s.maxRetries, s.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	content := ScrubLaTeX(ExtractLaTeX(response))
	if content == "" {
		return nil, errors.New("model returned no usable content")
	}

	if err := os.WriteFile(fragmentPath, []byte(content+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("writing fragment: %w", err)
	}

	return &core.SectionFragment{
		Order:       entry.Order,
		Kind:        entry.Kind,
		Title:       entry.Title,
		SourceQuery: entry.Query,
		Content:     content,
		Path:        fragmentPath,
	}, nil
}
