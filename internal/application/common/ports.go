package common

import (
	"context"
	"errors"
	"time"
)

// ErrTransactionDone is returned by Rollback when the transaction already ended
var ErrTransactionDone = errors.New("transaction already committed or rolled back")

// TransactionManager opens units of work for commands.
// Begin returns a context carrying the transaction; repositories resolve it from there.
type TransactionManager interface {
	Begin(ctx context.Context) (context.Context, Transaction, error)
}

// Transaction is a unit of work opened by a TransactionManager.
// Rollback after a failed Commit releases whatever Commit left behind; it returns
// ErrTransactionDone when the transaction had already ended.
type Transaction interface {
	Commit() error
	Rollback() error
}

// Cache stores encoded query responses
type Cache interface {
	// Get returns the entry for key; found is false on a miss
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeletePrefix removes every entry whose key starts with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// AuditEntry is the outcome of one command dispatch
type AuditEntry struct {
	RequestID   string
	RequestType string
	Kind        string
	Succeeded   bool
	ErrorKind   string
	Error       string
	Duration    time.Duration
	Timestamp   time.Time
}

// AuditSink persists audit entries
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}
