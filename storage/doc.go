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


// Package storage provides the storage abstraction layer for scout.
//
// Two contracts are defined here. VectorIndex serves filtered nearest-neighbor
// queries over named collections (candidates and professional standards).
// FeedbackRepository persists user votes and serves per-candidate counts and
// tag statistics over them.
//
// # Backends
//
//   - storage/badger: embedded index and feedback store, used for local runs and tests
//   - storage/qdrant: production vector index
//   - storage/postgres: production feedback store
//   - storage/cache: redis read-through decorator for a FeedbackRepository
//
// # Filters
//
// Filter is a backend-neutral conjunction of match, range and geo-radius
// conditions over payload keys. Backends with native filtering translate it;
// the others evaluate Filter.Matches against each payload.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	index := badger.NewVectorIndex(backend)
//
// # Thread Safety
//
// All implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
