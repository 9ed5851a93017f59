package behaviors

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

// TransactionBehavior runs every non-query request inside a unit of work.
//
// The transaction is committed only when the rest of the chain succeeds and the
// dispatch has not been cancelled. Failures, cancellation and panics roll it back.
// Queries pass straight through without opening a transaction.
type TransactionBehavior struct {
	manager common.TransactionManager
}

// NewTransactionBehavior creates the behavior around a transaction manager
func NewTransactionBehavior(manager common.TransactionManager) *TransactionBehavior {
	if manager == nil {
		manager = NopTransactionManager{}
	}
	return &TransactionBehavior{manager: manager}
}

// Name implements the mediator's behavior naming
func (b *TransactionBehavior) Name() string { return "transaction" }

// Handle implements mediator.Behavior
func (b *TransactionBehavior) Handle(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (response mediator.Response, err error) {
	if mediator.IsQuery(request) {
		return next(ctx, request)
	}

	txCtx, tx, err := b.manager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	response, err = next(txCtx, request)
	if err != nil {
		done = true
		if rbErr := tx.Rollback(); rbErr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to roll back transaction: %w", rbErr))
		}
		return nil, err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		done = true
		_ = tx.Rollback()
		return nil, ctxErr
	}

	done = true
	if err := tx.Commit(); err != nil {
		commitErr := fmt.Errorf("failed to commit transaction: %w", err)
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, common.ErrTransactionDone) {
			return nil, errors.Join(commitErr, fmt.Errorf("failed to roll back transaction: %w", rbErr))
		}
		return nil, commitErr
	}

	common.LoggerFromContext(ctx).DebugContext(ctx, "transaction committed",
		"request_type", fmt.Sprintf("%T", request))
	return response, nil
}

// NopTransactionManager opens transactions that do nothing
type NopTransactionManager struct{}

// Begin implements common.TransactionManager
func (NopTransactionManager) Begin(ctx context.Context) (context.Context, common.Transaction, error) {
	return ctx, nopTransaction{}, nil
}

type nopTransaction struct{}

func (nopTransaction) Commit() error   { return nil }
func (nopTransaction) Rollback() error { return nil }
