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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/poiesic/d2r/ai"
	"github.com/poiesic/d2r/assemble"
	"github.com/poiesic/d2r/core"
	"github.com/poiesic/d2r/generate"
	"github.com/poiesic/d2r/ingest"
	"github.com/poiesic/d2r/metadata"
	"github.com/poiesic/d2r/paths"
	"github.com/poiesic/d2r/storage"
	"github.com/poiesic/d2r/storage/badger"
)

// Stage names used in failure attribution.
const (
	StageLoad     = "load"
	StageGenerate = "generate"
	StageAssemble = "assemble"
	StageResolve  = "resolve"
)

// State is the pipeline state machine position.
type State int

const (
	// StatePending is the initial state, before any stage completed.
	StatePending State = iota
	// StateLoaded means the vector index holds this module's chunks.
	StateLoaded
	// StateGenerated means the fragment files exist.
	StateGenerated
	// StateMerged means the final document was written. Terminal.
	StateMerged
	// StateFailed is the terminal failure state.
	StateFailed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoaded:
		return "loaded"
	case StateGenerated:
		return "generated"
	case StateMerged:
		return "merged"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Report describes the outcome of one pipeline run.
type Report struct {
	// State is the final state machine position.
	State State
	// FailedStage names the stage that caused a StateFailed outcome.
	FailedStage string
	// Module is the resolved module the run operated on.
	Module core.ModuleRef
	// Per-stage results; nil for stages that did not run.
	Ingest     *ingest.Result
	Generation *generate.Result
	Assembly   *assemble.Result
}

// Orchestrator runs the stages strictly in sequence for one module.
type Orchestrator struct {
	config         Config
	provider       ai.Provider
	index          storage.VectorIndex // injected for tests; nil means open badger at IndexDir
	progressWriter io.Writer
	logger         *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithVectorIndex injects a vector index instead of opening the badger
// index under the module's artifact layout. The caller keeps ownership
// and must close it.
func WithVectorIndex(index storage.VectorIndex) Option {
	return func(o *Orchestrator) {
		o.index = index
	}
}

// WithProgressWriter sets where generation progress is written.
// Default is io.Discard.
func WithProgressWriter(writer io.Writer) Option {
	return func(o *Orchestrator) {
		if writer == nil {
			writer = io.Discard
		}
		o.progressWriter = writer
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// New creates an orchestrator. The config is validated eagerly.
func New(config Config, provider ai.Provider, opts ...Option) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	o := &Orchestrator{
		config:         config,
		provider:       provider,
		progressWriter: io.Discard,
		logger:         slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run executes the configured stages in sequence and returns a report.
// On failure the report is still returned with StateFailed and the
// failing stage name; the error wraps the cause as a *StageError.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	if o.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()
	}

	report := &Report{State: StatePending}

	ref, err := o.resolve()
	if err != nil {
		return o.fail(report, StageResolve, err)
	}
	report.Module = ref
	table := ref.TableName()

	builder := paths.NewBuilder(o.config.OutputBase)
	artifacts := builder.ForModule(ref)
	o.logger.Info("module resolved",
		"course", ref.Course, "module", ref.ModuleName,
		"topic", ref.TopicNumber, "transcripts", len(ref.TranscriptPaths))

	index, ownIndex, err := o.openIndex(artifacts.IndexDir)
	if err != nil {
		return o.fail(report, StageLoad, err)
	}
	if ownIndex {
		defer index.Close()
	}

	outline, err := o.loadOutline(ref)
	if err != nil {
		return o.fail(report, StageGenerate, err)
	}

	// Stage 1: load transcripts into the vector index.
	if o.config.RunLoad {
		result, err := o.runLoad(ctx, ref, table, index)
		if err != nil {
			return o.fail(report, StageLoad, err)
		}
		report.Ingest = result
	} else {
		count, err := index.Count(ctx, table)
		if err != nil {
			return o.fail(report, StageLoad, err)
		}
		if count == 0 {
			return o.fail(report, StageLoad, &MissingPrerequisiteError{
				Stage:    StageLoad,
				Artifact: fmt.Sprintf("vector index table %q is empty", table),
			})
		}
	}
	report.State = StateLoaded

	// Stage 2: generate one fragment per outline entry.
	if o.config.RunGenerate {
		result, err := o.runGenerate(ctx, ref, table, outline, artifacts.SectionsDir, index)
		if err != nil {
			return o.fail(report, StageGenerate, err)
		}
		report.Generation = result
	} else {
		if !hasFragments(artifacts.SectionsDir) {
			return o.fail(report, StageGenerate, &MissingPrerequisiteError{
				Stage:    StageGenerate,
				Artifact: fmt.Sprintf("no fragment files in %s", artifacts.SectionsDir),
			})
		}
	}
	report.State = StateGenerated

	// Stage 3: merge fragments into the final document.
	if o.config.RunAssemble {
		result, err := o.runAssemble(ref, artifacts, len(outline))
		if err != nil {
			return o.fail(report, StageAssemble, err)
		}
		report.Assembly = result
		report.State = StateMerged
	}

	o.logger.Info("pipeline finished", "state", report.State.String())
	return report, nil
}

func (o *Orchestrator) resolve() (core.ModuleRef, error) {
	var opts []metadata.Option
	if o.config.InputBaseDir != "" {
		opts = append(opts, metadata.WithInputBaseDir(o.config.InputBaseDir))
	}
	resolver := metadata.NewResolver(opts...)
	return resolver.Resolve(o.config.MetadataFile, o.config.TopicNumber)
}

func (o *Orchestrator) openIndex(indexDir string) (storage.VectorIndex, bool, error) {
	if o.index != nil {
		return o.index, false, nil
	}
	index, err := badger.OpenIndex(indexDir)
	if err != nil {
		return nil, false, fmt.Errorf("opening vector index: %w", err)
	}
	return index, true, nil
}

func (o *Orchestrator) loadOutline(ref core.ModuleRef) ([]core.OutlineEntry, error) {
	if o.config.OutlineFile == "" {
		return generate.DefaultOutline(ref.ModuleName), nil
	}
	return generate.LoadOutline(o.config.OutlineFile)
}

func (o *Orchestrator) runLoad(ctx context.Context, ref core.ModuleRef, table string, index storage.VectorIndex) (*ingest.Result, error) {
	stage, err := ingest.NewStage(index, o.provider.Embedder(),
		ingest.WithRetryPolicy(o.config.MaxRetries, o.config.RetryBaseDelay),
		ingest.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}
	return stage.Ingest(ctx, ref, table, o.config.Overwrite)
}

func (o *Orchestrator) runGenerate(ctx context.Context, ref core.ModuleRef, table string, outline []core.OutlineEntry, sectionsDir string, index storage.VectorIndex) (*generate.Result, error) {
	prompts := generate.DefaultPrompts()
	if o.config.PromptsDir != "" {
		loaded, err := generate.LoadPrompts(o.config.PromptsDir)
		if err != nil {
			return nil, err
		}
		prompts = loaded
	}

	stage, err := generate.NewStage(index, o.provider,
		generate.WithPoolSize(o.config.PoolSize),
		generate.WithTopK(o.config.TopK),
		generate.WithPrompts(prompts),
		generate.WithRetryPolicy(o.config.MaxRetries, o.config.RetryBaseDelay),
		generate.WithProgressWriter(o.progressWriter),
		generate.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}
	defer stage.Release()

	result, err := stage.Generate(ctx, ref, table, outline, sectionsDir, o.config.Overwrite)
	if err != nil {
		return nil, err
	}
	for _, failure := range result.Failed {
		o.logger.Warn("section failed, continuing",
			"order", failure.Order, "title", failure.Title, "err", failure.Err)
	}
	return result, nil
}

func (o *Orchestrator) runAssemble(ref core.ModuleRef, artifacts paths.ArtifactPaths, expected int) (*assemble.Result, error) {
	stage, err := assemble.NewStageFromFiles(
		o.config.HeaderTemplate, o.config.FooterTemplate,
		assemble.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}
	return stage.Assemble(ref, artifacts.SectionsDir, artifacts.MergedDocPath, expected)
}

func (o *Orchestrator) fail(report *Report, stage string, err error) (*Report, error) {
	report.State = StateFailed
	report.FailedStage = stage
	o.logger.Error("pipeline failed", "stage", stage, "err", err)
	return report, &StageError{Stage: stage, Err: err}
}

// hasFragments reports whether dir contains at least one .tex fragment.
func hasFragments(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(name) > 4 && name[len(name)-4:] == ".tex" {
			return true
		}
	}
	return false
}
