// Package googleai provides Gemini-backed text generation through
// langchaingo's googleai client.
//
// Gemini does not take embeddings from this package; pass an ai.Embedder
// (usually from ai/openai) to NewProvider when semantic relevance is wanted.
package googleai
