package mocks

import "net/http"

// MockHelper runs background tasks inline so tests can assert their
// side effects without synchronisation.
type MockHelper struct{}

func (m *MockHelper) NewEmailData() map[string]any {
	return map[string]any{
		"BaseURL": "http://localhost:4444",
	}
}

func (m *MockHelper) BackgroundTask(r *http.Request, fn func() error) {
	fn()
}
