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


// Package storage provides the vector index abstraction for d2r.
//
// The VectorIndex interface decouples the pipeline stages from the
// index implementation. Chunks live in named tables so that each course
// module gets its own retrieval namespace; the index itself is a single
// on-disk database that outlives individual pipeline runs.
//
// # Constructor Return Type Pattern
//
// Public constructors return the VectorIndex interface to enforce
// abstraction and enable alternative backends:
//
//	index, err := badger.OpenIndex(dir)  // returns storage.VectorIndex
//
// # Thread Safety
//
// All implementations must be thread-safe: the generation stage queries
// the index from multiple workers concurrently.
//
// # Context Support
//
// All methods accept context.Context for cancellation and timeout
// support.
package storage
