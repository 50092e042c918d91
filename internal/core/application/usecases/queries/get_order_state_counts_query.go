package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderStateCountsQueryIsNotConstructed = errors.New(
	"GetOrderStateCountsQuery must be created via NewGetOrderStateCountsQuery constructor",
)

// GetOrderStateCountsQuery counts stored orders per lifecycle state.
// It backs the periodic state report.
type GetOrderStateCountsQuery struct {
	guard guard.ConstructorGuard
}

// NewGetOrderStateCountsQuery creates the parameterless counting query.
func NewGetOrderStateCountsQuery() GetOrderStateCountsQuery {
	return GetOrderStateCountsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetOrderStateCountsQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStateCountsQueryIsNotConstructed)
}

// GetOrderStateCountsQueryResponse holds a count for every known state,
// zero included, and their sum.
type GetOrderStateCountsQueryResponse struct {
	Counts map[order.State]int64
	Total  int64
}
