// Package ports defines the contracts between the order lifecycle core and
// its infrastructure: the order store, its transaction boundary and the
// publisher of committed state changes.
package ports

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Errors:
//   - *errs.ObjectNotFoundError when no order has the requested id
//   - *errs.ValueIsInvalidError when a stored row holds an unknown state name
//   - *errs.StoreFailureError for driver, I/O and constraint failures
type OrderRepository interface {
	// Add persists a new order and assigns its store-generated id.
	// The order must be valid and must not have an id yet.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update overwrites the stored state of an existing order.
	// Updating an id that does not exist yields *errs.ObjectNotFoundError.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by its id.
	Get(ctx context.Context, id order.ID) (*order.Order, error)

	// GetForUpdate retrieves an order by its id and, inside a transaction,
	// locks it until the transaction ends. Concurrent state changes of the
	// same order are serialised through this lock.
	//
	// Example:
	//   if err := uow.Begin(ctx); err != nil {
	//       return err
	//   }
	//   defer func() { _ = uow.Rollback(ctx) }()
	//
	//   o, err := uow.OrderRepository().GetForUpdate(ctx, id)
	//   if err != nil {
	//       return err
	//   }
	GetForUpdate(ctx context.Context, id order.ID) (*order.Order, error)

	// CountByState returns the number of stored orders per state.
	// States without orders are absent from the map.
	CountByState(ctx context.Context) (map[order.State]int64, error)
}
