package commands

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

var _ ports.OrderEventPublisher = OrderEventPublishers(nil)

// OrderEventPublishers hands a committed change to every publisher in order.
// A failing publisher does not stop the rest; their errors are joined.
type OrderEventPublishers []ports.OrderEventPublisher

func (p OrderEventPublishers) PublishStateChanged(ctx context.Context, event order.StateChanged) error {
	var errList []error
	for _, publisher := range p {
		if err := publisher.PublishStateChanged(ctx, event); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
