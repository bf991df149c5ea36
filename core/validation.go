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

import (
	"fmt"
	"strings"
)

// ValidateSearchRequest validates a SearchRequest according to domain rules.
// A zero TopK is replaced with DefaultTopK before range checking.
//
// Validation rules:
//   - Query must not be blank
//   - TopK must be between 1 and MaxTopK
//   - SalaryRange, when present, must have 0 <= Min <= Max
//   - LocationFilter, when present, must be positive
func ValidateSearchRequest(req *SearchRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrValidation)
	}

	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyQuery)
	}

	if req.TopK == 0 {
		req.TopK = DefaultTopK
	}
	if req.TopK < 1 || req.TopK > MaxTopK {
		return fmt.Errorf("%w: %w: %d (max %d)", ErrValidation, ErrTopKOutOfRange, req.TopK, MaxTopK)
	}

	if err := ValidateSalaryRange(req.SalaryRange); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if req.LocationFilter != nil && *req.LocationFilter <= 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidRadius)
	}

	return nil
}

// ValidateSalaryRange checks that a salary range is well formed.
// A nil range is valid.
func ValidateSalaryRange(r *SalaryRange) error {
	if r == nil {
		return nil
	}
	if r.Min < 0 || r.Max < 0 || r.Min > r.Max {
		return fmt.Errorf("%w: min %d, max %d", ErrInvalidSalaryRange, r.Min, r.Max)
	}
	return nil
}

// ValidateFeedback validates a feedback event before it is stored.
func ValidateFeedback(event *FeedbackEvent) error {
	if event == nil {
		return fmt.Errorf("%w: feedback is nil", ErrValidation)
	}
	if strings.TrimSpace(event.CandidateID) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyCandidateID)
	}
	if err := ValidateFeedbackType(event.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// ValidateFeedbackType validates that a FeedbackType has a valid value.
func ValidateFeedbackType(t FeedbackType) error {
	if t != FeedbackUp && t != FeedbackDown {
		return fmt.Errorf("%w: %q", ErrInvalidFeedbackType, t)
	}
	return nil
}
