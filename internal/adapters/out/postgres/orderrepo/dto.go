// Package orderrepo maps the order aggregate onto the "orders" table through GORM.
package orderrepo

import (
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/order"
)

// OrderDTO is the row layout of the "orders" table. The state column holds
// the symbolic state name, never an ordinal.
type OrderDTO struct {
	ID       int64     `gorm:"primaryKey;autoIncrement"`
	Datetime time.Time `gorm:"column:datetime;not null"`
	State    string    `gorm:"type:varchar(16);not null;index"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	return OrderDTO{
		ID:       int64(aggregate.ID()),
		Datetime: aggregate.CreatedAt().UTC(),
		State:    aggregate.State().String(),
	}
}

// toDomain rebuilds the aggregate. An unknown state name is reported as an
// invariant violation rather than mapped to a default.
func toDomain(dto OrderDTO) (*order.Order, error) {
	state, err := order.ParseState(dto.State)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", dto.ID, err)
	}

	return order.RestoreOrder(order.ID(dto.ID), dto.Datetime, state)
}
