package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves one order together with the events it currently accepts.
//
// Example:
//
//	query, err := NewGetOrderQuery(42)
//	if err != nil {
//	    return err
//	}
//	resp, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    return echo.NewHTTPError(http.StatusNotFound)
//	}
type GetOrderQuery struct {
	orderID order.ID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for the order with the given id.
func NewGetOrderQuery(orderID order.ID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the requested order id.
func (q GetOrderQuery) OrderID() order.ID {
	return q.orderID
}

// GetOrderQueryResponse is the read model of one order.
type GetOrderQueryResponse struct {
	ID              order.ID
	CreatedAt       time.Time
	State           order.State
	Terminal        bool
	AvailableEvents []order.Event
}
