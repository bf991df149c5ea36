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

// Package feedback turns recruiter votes into ranking signals.
//
// Service records votes with keyword-derived tags. Scorer converts the vote
// counts of a candidate set into a multiplicative weight map for the
// two-stage ranker. PromptAdjustment turns recurring down-vote reasons into
// extra instructions for the explanation prompt.
package feedback
