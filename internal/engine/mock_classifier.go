package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/geopulse/coherence/internal/model"
	"github.com/geopulse/coherence/internal/service"
)

// MockClassifier is a test implementation of the Classifier interface. It
// returns scripted results keyed by article title, or a fixed default.
type MockClassifier struct {
	results map[string]service.ClassifierResult
	failOn  map[string]bool
	calls   []string
	mu      sync.Mutex
}

// NewMockClassifier creates a mock classifier with an empty script.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{
		results: make(map[string]service.ClassifierResult),
		failOn:  make(map[string]bool),
	}
}

// Script sets the result returned for a given title.
func (m *MockClassifier) Script(title string, score, confidence float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[title] = service.ClassifierResult{
		Score:      score,
		Confidence: confidence,
		Model:      "mock",
	}
}

// FailOn makes Analyze return an error for the given title.
func (m *MockClassifier) FailOn(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[title] = true
}

// Calls returns the titles analyzed so far.
func (m *MockClassifier) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Analyze returns the scripted result for the title, a neutral default when
// unscripted, or an error when the title is marked to fail.
func (m *MockClassifier) Analyze(_ context.Context, title, _ string) (*service.ClassifierResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, title)

	if m.failOn[title] {
		return nil, fmt.Errorf("mock classifier failure for %q", title)
	}

	result, ok := m.results[title]
	if !ok {
		result = service.ClassifierResult{Score: 0, Confidence: 0.5, Model: "mock"}
	}
	result.Type = model.TypeForScore(result.Score)

	return &result, nil
}
