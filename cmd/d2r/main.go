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


package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/d2r/ai"
	"github.com/poiesic/d2r/ai/openai"
	"github.com/poiesic/d2r/pipeline"
)

func main() {
	app := &cli.App{
		Name:  "d2r",
		Usage: "Turn lecture transcripts into LaTeX lecture notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the transcript-to-notes pipeline for one module",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "metadata-file",
						Aliases:  []string{"m"},
						Usage:    "Path to the course metadata JSON file",
						EnvVars:  []string{"METADATA_FILE"},
						Required: true,
					},
					&cli.IntFlag{
						Name:     "topic",
						Aliases:  []string{"t"},
						Usage:    "Module to process, 1-based index into the metadata module list",
						EnvVars:  []string{"TOPIC_NUMBER"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output-base",
						Usage:   "Base directory for all generated artifacts",
						EnvVars: []string{"D2R_OUTPUT_BASE"},
						Value:   pipeline.DefaultOutputBase,
					},
					&cli.StringFlag{
						Name:    "input-base",
						Usage:   "Directory relative transcript paths are resolved against",
						EnvVars: []string{"INPUT_BASE_DIR"},
					},
					&cli.BoolFlag{
						Name:  "overwrite",
						Usage: "Rebuild the index and regenerate fragments even when they exist",
					},
					&cli.BoolFlag{
						Name:  "skip-load",
						Usage: "Skip ingestion; the vector index must already hold this module",
					},
					&cli.BoolFlag{
						Name:  "skip-generate",
						Usage: "Skip generation; fragment files must already exist",
					},
					&cli.BoolFlag{
						Name:  "skip-assemble",
						Usage: "Skip assembly; stop after generating fragments",
					},
					&cli.StringFlag{
						Name:  "outline",
						Usage: "YAML outline file (default: built-in outline)",
					},
					&cli.StringFlag{
						Name:  "prompts-dir",
						Usage: "Directory with prompt template files (default: embedded prompts)",
					},
					&cli.StringFlag{
						Name:  "header-template",
						Usage: "LaTeX header template file (default: embedded template)",
					},
					&cli.StringFlag{
						Name:  "footer-template",
						Usage: "LaTeX footer template file (default: embedded template)",
					},
					&cli.StringFlag{
						Name:    "host",
						Usage:   "AI service host URL for both embeddings and completions",
						EnvVars: []string{"D2R_AI_HOST"},
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (overrides --host)",
					},
					&cli.StringFlag{
						Name:  "completion-host",
						Usage: "Completion service host URL (overrides --host)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.StringFlag{
						Name:  "completion-model",
						Usage: "Completion model name",
					},
					&cli.StringFlag{
						Name:    "token",
						Usage:   "API token for the AI service",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Context passages retrieved per section",
						Value: pipeline.DefaultTopK,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent section generation workers",
						Value: pipeline.DefaultPoolSize,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for provider calls",
						Value: pipeline.DefaultMaxRetries,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: pipeline.DefaultRetryBaseDelay,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Overall run timeout (0 = no timeout)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "d2r: %v\n", err)
		os.Exit(1)
	}
}

func runCommand(c *cli.Context) error {
	provider, err := buildProvider(c)
	if err != nil {
		return err
	}
	defer provider.Close()

	config := pipeline.Config{
		MetadataFile:   c.String("metadata-file"),
		TopicNumber:    c.Int("topic"),
		OutputBase:     c.String("output-base"),
		InputBaseDir:   c.String("input-base"),
		RunLoad:        !c.Bool("skip-load"),
		RunGenerate:    !c.Bool("skip-generate"),
		RunAssemble:    !c.Bool("skip-assemble"),
		Overwrite:      c.Bool("overwrite"),
		OutlineFile:    c.String("outline"),
		PromptsDir:     c.String("prompts-dir"),
		HeaderTemplate: c.String("header-template"),
		FooterTemplate: c.String("footer-template"),
		TopK:           c.Int("top-k"),
		PoolSize:       c.Int("pool-size"),
		MaxRetries:     c.Int("max-retries"),
		RetryBaseDelay: c.Duration("retry-delay"),
		Timeout:        c.Duration("timeout"),
	}

	orch, err := pipeline.New(config, provider,
		pipeline.WithProgressWriter(os.Stderr),
	)
	if err != nil {
		return err
	}

	report, err := orch.Run(c.Context)
	if err != nil {
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			return cli.Exit(fmt.Sprintf("pipeline failed in stage %s: %v", stageErr.Stage, stageErr.Err), 1)
		}
		return err
	}

	printReport(report)
	return nil
}

// buildProvider creates the langchaingo-backed AI provider from flags.
func buildProvider(c *cli.Context) (ai.Provider, error) {
	var opts []ai.ConfigOption
	if host := c.String("host"); host != "" {
		opts = append(opts, ai.WithHost(host))
	}
	if host := c.String("embedding-host"); host != "" {
		opts = append(opts, ai.WithEmbeddingHost(host))
	}
	if host := c.String("completion-host"); host != "" {
		opts = append(opts, ai.WithCompletionHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("completion-model"); model != "" {
		opts = append(opts, ai.WithCompletionModel(model))
	}
	if token := c.String("token"); token != "" {
		opts = append(opts, ai.WithToken(token))
	}

	config := ai.NewConfig(opts...)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := openai.NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}
	return provider, nil
}

func printReport(report *pipeline.Report) {
	fmt.Fprintf(os.Stderr, "Module: %s (topic %d)\n",
		report.Module.ModuleName, report.Module.TopicNumber)

	if report.Ingest != nil {
		if report.Ingest.Skipped {
			fmt.Fprintln(os.Stderr, "Load: skipped, index already populated")
		} else {
			fmt.Fprintf(os.Stderr, "Load: %d documents, %d chunks\n",
				report.Ingest.DocumentsIndexed, report.Ingest.ChunksUpserted)
		}
	}
	if report.Generation != nil {
		fmt.Fprintf(os.Stderr, "Generate: %d written, %d skipped, %d failed\n",
			len(report.Generation.Written),
			len(report.Generation.SkippedOrders),
			len(report.Generation.Failed))
		for _, failure := range report.Generation.Failed {
			fmt.Fprintf(os.Stderr, "  failed section %d: %s\n", failure.Order, failure.Title)
		}
	}
	if report.Assembly != nil {
		fmt.Fprintf(os.Stderr, "Assemble: %d/%d sections -> %s\n",
			report.Assembly.SectionsIncluded,
			report.Assembly.SectionsExpected,
			report.Assembly.OutputPath)
	}
	fmt.Fprintf(os.Stderr, "State: %s\n", report.State)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
