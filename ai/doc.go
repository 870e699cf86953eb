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


// Package ai provides abstractions for the AI services the pipeline
// depends on: text embeddings for ingestion and retrieval, and LLM
// completions for section generation.
//
// The package defines three interfaces:
//
//   - Embedder: generates vector embeddings from text
//   - Completer: produces text from a prompt plus retrieved context
//   - Provider: aggregates both for convenient initialization
//
// Two implementation sub-packages exist:
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors in ai/openai return interface types to prevent
// coupling to implementation details; mock constructors return concrete
// types so tests can inject behavior and assert call counts.
package ai
