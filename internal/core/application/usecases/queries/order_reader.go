// Package queries contains read-only operations over stored orders.
package queries

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// OrderReader is the read side of the order store. Any ports.OrderRepository
// satisfies it; queries run outside a transaction.
type OrderReader interface {
	Get(ctx context.Context, id order.ID) (*order.Order, error)
	CountByState(ctx context.Context) (map[order.State]int64, error)
}
