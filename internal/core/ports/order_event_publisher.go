package ports

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// OrderEventPublisher hands committed state changes to the outside world.
// It is called only after the change is durable, so a failure here never
// undoes the transition.
type OrderEventPublisher interface {
	PublishStateChanged(ctx context.Context, event order.StateChanged) error
}
