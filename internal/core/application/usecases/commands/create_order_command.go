package commands

import (
	"errors"
	"time"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a request to register a new order.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(time.Now())
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	o, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
//	fmt.Printf("Order %d created in %s", o.ID(), o.State())
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	createdAt time.Time

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register an order created at createdAt.
func NewCreateOrderCommand(createdAt time.Time) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setCreatedAt(createdAt); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// CreatedAt returns the creation timestamp of the order.
func (c CreateOrderCommand) CreatedAt() time.Time {
	return c.createdAt
}

func (c *CreateOrderCommand) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}

	c.createdAt = createdAt
	return nil
}
