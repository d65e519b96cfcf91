package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZaguanLabs/transroute"
)

// MockDispatcher is a mock dispatcher for testing.
type MockDispatcher struct {
	mu        sync.Mutex
	Responses map[string]string // Map of model to answer
	Errors    map[string]error  // Map of model to failure; checked first
	CallCount int               // Number of times Dispatch was called
	Calls     []Candidate       // Candidates in call order
	LastReq   *Request          // Last request received
}

// NewMockDispatcher creates a mock that answers the default models of a few providers.
func NewMockDispatcher() *MockDispatcher {
	return &MockDispatcher{
		Responses: map[string]string{
			"gemini-2.0-flash": "Bonjour",
			"gpt-4o-mini":      "Hola",
		},
		Errors: map[string]error{},
	}
}

// Dispatch returns the scripted answer for the candidate's model.
func (m *MockDispatcher) Dispatch(ctx context.Context, c Candidate, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.Calls = append(m.Calls, c)
	m.LastReq = &req

	if err, ok := m.Errors[c.Model]; ok {
		return "", err
	}
	if text, ok := m.Responses[c.Model]; ok {
		return text, nil
	}
	return "", &ProviderError{
		Kind:       transroute.KindProtocol,
		Provider:   c.Provider,
		Model:      c.Model,
		StatusCode: 404,
		Message:    fmt.Sprintf("model %s not found", c.Model),
	}
}

// Reset clears the recorded calls.
func (m *MockDispatcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.Calls = nil
	m.LastReq = nil
}

// Verify MockDispatcher implements transroute.Dispatcher
var _ transroute.Dispatcher = (*MockDispatcher)(nil)
