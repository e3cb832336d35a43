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

// Package ai provides abstractions for AI services used in BioOrbit.
//
// The ranking and analysis packages depend on these interfaces rather than
// on any particular model vendor.
//
//   - Embedder: Generates vector embeddings from text
//   - Generator: Produces JSON-formatted completions from a system
//     instruction and a prompt
//   - AIProvider: Aggregates the two and builds per-credential generators
//
// # Implementation Packages
//
//   - ai/googleai: Gemini text generation (the default analysis backend)
//   - ai/openai: OpenAI-compatible embeddings and text generation
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors return interface types. Mock constructors return
// concrete types so tests can inject behavior and inspect call counts.
//
// # Usage Example
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	gen, err := provider.Generator(ctx, apiKey)
//	defer gen.Close()
//	reply, err := gen.GenerateJSON(ctx, "You are a research assistant.", prompt)
package ai
