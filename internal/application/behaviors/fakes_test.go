package behaviors_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

type helloRequest struct {
	mediator.Returns[*helloReply]
	Name string `validate:"required,max=8"`
}

type helloReply struct {
	Message string
}

type recordCommand struct {
	mediator.Command[*helloReply]
	Name string
}

func (recordCommand) InvalidatedQueries() []mediator.Request {
	return []mediator.Request{&listQuery{}}
}

type listQuery struct {
	mediator.Query[*listResult]
	Name string
}

func (q *listQuery) CacheKey() string { return q.Name }

type listResult struct {
	Names []string
	Total int
}

type temporaryError struct{}

func (temporaryError) Error() string   { return "try again" }
func (temporaryError) Temporary() bool { return true }

// recordingTransactionManager records begin/commit/rollback in order
type recordingTransactionManager struct {
	mu        sync.Mutex
	events    []string
	beginErr    error
	commitErr   error
	rollbackErr error
}

type txKey struct{}

func (m *recordingTransactionManager) Begin(ctx context.Context) (context.Context, common.Transaction, error) {
	m.record("begin")
	if m.beginErr != nil {
		return nil, nil, m.beginErr
	}
	return context.WithValue(ctx, txKey{}, true), &recordingTransaction{manager: m}, nil
}

func (m *recordingTransactionManager) record(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *recordingTransactionManager) Events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.events...)
}

type recordingTransaction struct {
	manager *recordingTransactionManager
}

func (t *recordingTransaction) Commit() error {
	t.manager.record("commit")
	return t.manager.commitErr
}

func (t *recordingTransaction) Rollback() error {
	t.manager.record("rollback")
	return t.manager.rollbackErr
}

// mapCache is an in-memory common.Cache
type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return nil, false, errors.New("cache offline")
	}
	value, ok := c.entries[key]
	return value, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *mapCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *mapCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// recordingSink collects audit entries
type recordingSink struct {
	mu      sync.Mutex
	entries []common.AuditEntry
	err     error
}

func (s *recordingSink) Record(ctx context.Context, entry common.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return s.err
}

func (s *recordingSink) Entries() []common.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]common.AuditEntry{}, s.entries...)
}

func buildMediator(register func(b *mediator.Builder) error, behaviors ...mediator.Behavior) (*mediator.Dispatcher, error) {
	b := mediator.NewBuilder()
	if err := register(b); err != nil {
		return nil, err
	}
	b.Use(behaviors...)
	return b.Build()
}
