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

package analysis

import "errors"

var (
	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrAnalyzerRequired is returned when a dispatcher is built without an analyzer.
	ErrAnalyzerRequired = errors.New("analyzer required")

	// ErrNilCandidate is returned when there is nothing to analyze.
	ErrNilCandidate = errors.New("candidate is nil")

	// ErrMalformedReply is returned when a model reply is not a JSON object.
	ErrMalformedReply = errors.New("malformed analysis reply")

	// ErrDispatcherClosed is returned by Submit after Release.
	ErrDispatcherClosed = errors.New("dispatcher released")
)
