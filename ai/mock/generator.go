package mock

import (
	"context"
	"sync"
)

// GenerateCall records the arguments of one GenerateJSON call.
type GenerateCall struct {
	SystemInstruction string
	Prompt            string
}

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateJSONFunc is called by GenerateJSON if set.
	// If nil, Response is returned.
	GenerateJSONFunc func(ctx context.Context, systemInstruction, prompt string) (string, error)

	// Response is the default reply when GenerateJSONFunc is nil.
	Response string

	mu     sync.Mutex
	calls  []GenerateCall
	closes int
}

// NewMockGenerator creates a mock generator that replies with response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

func (m *MockGenerator) GenerateJSON(ctx context.Context, systemInstruction, prompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, GenerateCall{SystemInstruction: systemInstruction, Prompt: prompt})
	fn := m.GenerateJSONFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, systemInstruction, prompt)
	}
	return m.Response, nil
}

// Close records the call and always succeeds.
func (m *MockGenerator) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

// CloseCount returns the number of Close calls.
func (m *MockGenerator) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// CallCount returns the number of GenerateJSON calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls.
func (m *MockGenerator) Calls() []GenerateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GenerateCall(nil), m.calls...)
}

// Reset clears recorded calls and the custom function.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.closes = 0
	m.GenerateJSONFunc = nil
}
