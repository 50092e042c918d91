package commands

import (
	"errors"
	"maps"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/statemachine"
	"orderflow/internal/pkg/guard"
)

var ErrChangeOrderStateCommandIsNotConstructed = errors.New(
	"ChangeOrderStateCommand must be created via NewChangeOrderStateCommand constructor",
)

// ChangeOrderStateCommand requests that event be applied to an order.
//
// Example:
//
//	cmd, err := NewChangeOrderStateCommand(42, order.Pay, statemachine.Headers{
//	    PaymentConfirmationNumber: kernel.NewUUID().String(),
//	})
//	if err != nil {
//	    return err
//	}
//	outcome, err := handler.Handle(ctx, cmd)
type ChangeOrderStateCommand struct { //nolint:recvcheck //using for validation
	orderID order.ID
	event   order.Event
	headers statemachine.Headers

	guard guard.ConstructorGuard
}

// NewChangeOrderStateCommand validates the order id and event. The orderId
// header is always set to orderID; any other headers are sent as given.
func NewChangeOrderStateCommand(
	orderID order.ID,
	event order.Event,
	headers statemachine.Headers,
) (ChangeOrderStateCommand, error) {
	cmd := ChangeOrderStateCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setEvent(event),
	); err != nil {
		return ChangeOrderStateCommand{}, err
	}

	cmd.headers = statemachine.Headers{
		OrderID:                   orderID,
		PaymentConfirmationNumber: headers.PaymentConfirmationNumber,
		Extra:                     maps.Clone(headers.Extra),
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ChangeOrderStateCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStateCommandIsNotConstructed)
}

// OrderID returns the order to change.
func (c ChangeOrderStateCommand) OrderID() order.ID {
	return c.orderID
}

// Event returns the event to apply.
func (c ChangeOrderStateCommand) Event() order.Event {
	return c.event
}

// Headers returns the headers sent with the event, orderId included.
func (c ChangeOrderStateCommand) Headers() statemachine.Headers {
	return c.headers
}

func (c *ChangeOrderStateCommand) setOrderID(orderID order.ID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ChangeOrderStateCommand) setEvent(event order.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	c.event = event
	return nil
}
