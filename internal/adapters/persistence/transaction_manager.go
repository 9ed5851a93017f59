package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
)

type txContextKey struct{}

// GormTransactionManager opens database transactions and carries them in the context.
// Repositories in this package pick the transaction up through dbFromContext.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GORM transaction manager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Begin implements common.TransactionManager.
// A context that already carries a transaction joins it; the returned handle is then a no-op.
func (m *GormTransactionManager) Begin(ctx context.Context) (context.Context, common.Transaction, error) {
	if _, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return ctx, joinedTransaction{}, nil
	}

	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	return context.WithValue(ctx, txContextKey{}, tx), &gormTransaction{tx: tx}, nil
}

type gormTransaction struct {
	tx *gorm.DB
}

func (t *gormTransaction) Commit() error {
	return t.tx.Commit().Error
}

func (t *gormTransaction) Rollback() error {
	err := t.tx.Rollback().Error
	if errors.Is(err, sql.ErrTxDone) {
		return common.ErrTransactionDone
	}
	return err
}

type joinedTransaction struct{}

func (joinedTransaction) Commit() error   { return nil }
func (joinedTransaction) Rollback() error { return nil }

// dbFromContext returns the transaction carried by ctx, or db bound to ctx
func dbFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
