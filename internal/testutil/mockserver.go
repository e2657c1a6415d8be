package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockServer wraps httptest.Server with request tracking. The watch
// engine fetches from multiple goroutines, so tracking is locked.
type MockServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []*http.Request
}

// NewMockServer creates a new mock HTTP server
func NewMockServer(handler http.HandlerFunc) *MockServer {
	ms := &MockServer{}

	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ms.mu.Lock()
		ms.requests = append(ms.requests, r)
		ms.mu.Unlock()
		handler(w, r)
	}))

	return ms
}

// ScriptedResponse is one canned response for NewSequenceServer.
type ScriptedResponse struct {
	Status int // 0 means 200
	Body   string
}

// NewSequenceServer creates a mock server that replays scripted
// responses in order; the last response repeats once the script runs
// out. Used to drive the wait engine through per-tick scenarios.
func NewSequenceServer(responses ...ScriptedResponse) *MockServer {
	var step int
	var mu sync.Mutex
	return NewMockServer(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := responses[step]
		if step < len(responses)-1 {
			step++
		}
		mu.Unlock()
		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp.Body))
	})
}

// LastRequest returns the most recent request
func (ms *MockServer) LastRequest() *http.Request {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.requests) == 0 {
		return nil
	}
	return ms.requests[len(ms.requests)-1]
}

// RequestCount returns the number of requests received
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requests)
}

// Reset clears the request history
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = nil
}
