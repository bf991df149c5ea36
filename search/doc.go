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
// Package search implements the candidate search pipeline.
//
// A search runs in stages:
//   - the professional standard of the requested industry is looked up
//     and folded into the query text (EnrichQuery)
//   - a broad retrieval pass collects up to BroadLimit candidates
//   - feedback weights are computed for the broad set
//   - a narrow, weighted pass returns the requested number of candidates,
//     which are stably re-sorted by adjusted score
//   - a generator writes one explanation per candidate, which is aligned
//     back to the candidates by name
//
// Searcher wires the stages together. The stages are exported so callers
// can run them individually.
package search
