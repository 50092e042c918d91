package queries

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// GetOrderStateCountsQueryHandler aggregates order counts per state.
type GetOrderStateCountsQueryHandler struct {
	reader OrderReader
}

// NewGetOrderStateCountsQueryHandler creates a handler reading through reader.
func NewGetOrderStateCountsQueryHandler(reader OrderReader) GetOrderStateCountsQueryHandler {
	return GetOrderStateCountsQueryHandler{reader: reader}
}

// Handle returns the per-state counts.
func (h GetOrderStateCountsQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStateCountsQuery,
) (GetOrderStateCountsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderStateCountsQueryResponse{}, err
	}

	stored, err := h.reader.CountByState(ctx)
	if err != nil {
		return GetOrderStateCountsQueryResponse{}, err
	}

	resp := GetOrderStateCountsQueryResponse{Counts: make(map[order.State]int64, len(order.States()))}
	for _, s := range order.States() {
		resp.Counts[s] = stored[s]
		resp.Total += stored[s]
	}

	return resp, nil
}
