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

// Package analysis turns a candidate into a short research summary with
// suggested next steps and a risk level.
//
// Analyzer.Analyze always returns an Analysis. Without a credential it
// returns a fixed offline analysis and performs no I/O. With one it asks
// the configured ai.Generator for JSON and parses the reply leniently.
// Any failure along the way yields a fixed failure analysis instead of an
// error.
//
// Dispatcher runs analyses in the background. Each request for a candidate
// supersedes the previous one, and a result is delivered only if no newer
// request for that candidate was issued in the meantime.
package analysis
