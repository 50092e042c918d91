// Package commands contains the operations that modify order state.
// Every command follows the same pattern: validation, transaction management
// and persistence, with the lifecycle rules delegated to the state machine.
package commands

import (
	"context"
	"errors"

	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles the store transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// OrderUoW manages transactions for order operations.
	//
	// Example:
	//   uow := factory.Create()
	//   if err := uow.Begin(ctx); err != nil {
	//       return err
	//   }
	//   defer func() { _ = uow.Rollback(ctx) }()
	//
	//   repo := uow.OrderRepository()
	//   // ... perform operations
	//
	//   return uow.Commit(ctx)
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}
)

// OrderUoWFactoryFunc adapts a function to OrderUoWFactory. It bridges a
// ports.UnitOfWorkFactory, whose Create returns ports.UnitOfWork:
//
//	f := OrderUoWFactoryFunc(func() OrderUoW { return storeFactory.Create() })
type OrderUoWFactoryFunc func() OrderUoW

func (f OrderUoWFactoryFunc) Create() OrderUoW {
	return f()
}

// storeFailure wraps err as a store failure unless an adapter already did.
func storeFailure(operation string, err error) error {
	if errors.Is(err, errs.ErrStoreFailure) {
		return err
	}
	return errs.NewStoreFailureError(operation, err)
}
