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


package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/d2r/ai"
)

// Completer implements ai.Completer using OpenAI-compatible chat APIs.
type Completer struct {
	client       llms.Model
	systemPrompt string
	temperature  float64
	logger       *slog.Logger
}

// CompleterOption configures a Completer.
type CompleterOption func(*Completer)

// WithSystemPrompt sets the system message sent with every completion.
// Typically the assistant-role prompt template.
func WithSystemPrompt(prompt string) CompleterOption {
	return func(c *Completer) {
		c.systemPrompt = prompt
	}
}

// newCompleter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCompleter(config *ai.Config, opts ...CompleterOption) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat completions
	client, err := openai.New(
		openai.WithBaseURL(config.CompletionHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.CompletionModel),
	)
	if err != nil {
		return nil, err
	}

	c := &Completer{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-completer"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config, opts ...CompleterOption) (ai.Completer, error) {
	return newCompleter(config, opts...)
}

// Complete sends the prompt and retrieved passages to the model and
// returns the raw response text. Passages are appended to the human
// message in relevance order so the model sees the most relevant
// transcript excerpts first.
func (c *Completer) Complete(ctx context.Context, prompt string, passages []string) (string, error) {
	parts := []llms.ContentPart{llms.TextPart(prompt)}
	if len(passages) > 0 {
		var sb strings.Builder
		sb.WriteString("\n\nContext information from the lecture transcripts:\n")
		for _, passage := range passages {
			sb.WriteString("\n---\n")
			sb.WriteString(passage)
		}
		parts = append(parts, llms.TextPart(sb.String()))
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: parts,
		},
	}
	if c.systemPrompt != "" {
		content = append([]llms.MessageContent{
			{
				Role:  llms.ChatMessageTypeSystem,
				Parts: []llms.ContentPart{
					llms.TextPart(c.systemPrompt),
				},
			},
		}, content...)
	}

	response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(c.temperature))
	if err != nil {
		c.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		c.logger.Debug("no choices returned from model")
		return "", errors.New("no completion choices returned")
	}

	return response.Choices[0].Content, nil
}
