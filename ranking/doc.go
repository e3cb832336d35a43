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

// Package ranking selects and orders candidates from a pool.
//
// Select runs three stages:
//
//  1. Relevance: a Relevance implementation keeps the candidates that match
//     the query and assigns each a score. KeywordRelevance is the default.
//  2. Stability: candidates whose ΔG is above SearchParams.MinDeltaG are
//     dropped. How a missing ΔG is treated is a MissingStabilityPolicy.
//  3. Ordering: at or below DiversityThreshold results are sorted by score.
//     Above it, maximal marginal relevance re-ranks the same set so that
//     near-duplicates are spread apart.
//
// Select never fails and never modifies the pool it is given.
package ranking
