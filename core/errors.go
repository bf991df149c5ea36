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


package core

import "errors"

// Pipeline errors
var (
	// ErrNotFound indicates a retrieval pass returned no candidates.
	ErrNotFound = errors.New("no candidates found")

	// ErrUpstreamUnavailable indicates the vector index, embedder or feedback store failed.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrGenerationDegraded indicates explanations could not be generated.
	// It is never returned to callers; explanations fall back to empty strings.
	ErrGenerationDegraded = errors.New("explanation generation degraded")
)

// Domain validation errors
var (
	// ErrValidation is wrapped by every request validation failure.
	ErrValidation = errors.New("invalid request")

	// ErrEmptyQuery indicates the search query is blank.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrTopKOutOfRange indicates top_k is outside [1, MaxTopK].
	ErrTopKOutOfRange = errors.New("top_k out of range")

	// ErrInvalidSalaryRange indicates a malformed salary range.
	ErrInvalidSalaryRange = errors.New("invalid salary range")

	// ErrInvalidRadius indicates a non-positive location radius.
	ErrInvalidRadius = errors.New("location radius must be positive")

	// ErrEmptyCandidateID indicates feedback without a candidate.
	ErrEmptyCandidateID = errors.New("candidate id cannot be empty")

	// ErrInvalidFeedbackType indicates a feedback type other than up or down.
	ErrInvalidFeedbackType = errors.New("invalid feedback type")
)
