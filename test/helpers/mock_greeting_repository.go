package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/andrescamacho/grpc-mediator-go/internal/domain/greeting"
)

// MockGreetingRepository is a test double for GreetingRepository interface
type MockGreetingRepository struct {
	mu        sync.RWMutex
	greetings map[string]*greeting.Greeting
	createErr error
	listCalls int
}

// NewMockGreetingRepository creates a new mock greeting repository
func NewMockGreetingRepository() *MockGreetingRepository {
	return &MockGreetingRepository{
		greetings: make(map[string]*greeting.Greeting),
	}
}

// SetCreateError makes every subsequent Create fail with err
func (m *MockGreetingRepository) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = err
}

// Create stores a greeting
func (m *MockGreetingRepository) Create(ctx context.Context, g *greeting.Greeting) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	m.greetings[g.ID().String()] = g
	return nil
}

// FindByID retrieves a greeting by id
func (m *MockGreetingRepository) FindByID(ctx context.Context, id greeting.GreetingID) (*greeting.Greeting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.greetings[id.String()]
	if !ok {
		return nil, &greeting.ErrGreetingNotFound{ID: id.String()}
	}
	return g, nil
}

// List returns greetings newest first
func (m *MockGreetingRepository) List(ctx context.Context, opts greeting.ListOptions) ([]*greeting.Greeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++

	opts = opts.Normalize()
	var result []*greeting.Greeting
	for _, g := range m.greetings {
		if opts.Name == "" || g.Name() == opts.Name {
			result = append(result, g)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt().After(result[j].CreatedAt())
	})
	if len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// Count returns the number of stored greetings
func (m *MockGreetingRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.greetings)
}

// ListCalls returns how many times List ran
func (m *MockGreetingRepository) ListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}
