// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Generator,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Canned generator reply
//	gen := mock.NewMockGenerator(`{"summary":"S","nextSteps":["a"],"riskLevel":"Low"}`)
//	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), gen)
//
//	// Custom behavior injection
//	gen.GenerateJSONFunc = func(ctx context.Context, system, prompt string) (string, error) {
//	    return "", errors.New("unavailable")
//	}
//
//	// Check call counts
//	count := gen.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockGenerator: Returns its configured Response
//   - MockProvider: Aggregates the two; rejects empty credentials
package mock
