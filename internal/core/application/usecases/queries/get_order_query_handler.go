package queries

import (
	"context"

	"orderflow/internal/core/domain/statemachine"
)

// GetOrderQueryHandler loads an order and describes where it stands in its lifecycle.
type GetOrderQueryHandler struct {
	reader     OrderReader
	definition *statemachine.Definition
}

// NewGetOrderQueryHandler creates a handler reading through reader.
func NewGetOrderQueryHandler(reader OrderReader) GetOrderQueryHandler {
	return GetOrderQueryHandler{
		reader:     reader,
		definition: statemachine.OrderDefinition(),
	}
}

// Handle returns the order or *errs.ObjectNotFoundError.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	o, err := h.reader.Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	return GetOrderQueryResponse{
		ID:              o.ID(),
		CreatedAt:       o.CreatedAt(),
		State:           o.State(),
		Terminal:        h.definition.IsTerminal(o.State()),
		AvailableEvents: h.definition.AvailableEvents(o.State()),
	}, nil
}
