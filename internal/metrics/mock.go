package metrics

import (
	"sync"
	"time"
)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu          sync.Mutex
	upstream    map[string]int
	retries     map[string]int
	storeWrites map[string]int
	tasks       map[string]int
	httpCalls   int
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		upstream:    make(map[string]int),
		retries:     make(map[string]int),
		storeWrites: make(map[string]int),
		tasks:       make(map[string]int),
	}
}

func (m *Mock) ObserveUpstream(endpoint, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upstream[endpoint+"/"+outcome]++
}

func (m *Mock) IncUpstreamRetries(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries[endpoint]++
}

func (m *Mock) AddStoreWrites(collection, result string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeWrites[collection+"/"+result] += n
}

func (m *Mock) ObserveTask(name, state string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[name+"/"+state]++
}

func (m *Mock) ObserveHTTP(string, string, int, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.httpCalls++
}

// Upstream returns how many requests to endpoint ended with outcome.
func (m *Mock) Upstream(endpoint, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upstream[endpoint+"/"+outcome]
}

// Retries returns the retry count recorded for endpoint.
func (m *Mock) Retries(endpoint string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retries[endpoint]
}

// StoreWrites returns the write count recorded for collection and result.
func (m *Mock) StoreWrites(collection, result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storeWrites[collection+"/"+result]
}

// Tasks returns how many runs of name finished in state.
func (m *Mock) Tasks(name, state string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks[name+"/"+state]
}

// HTTPCalls returns the number of observed API requests.
func (m *Mock) HTTPCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.httpCalls
}
