package orderrepo

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository. db may be a
// transaction handle, in which case every call runs inside that transaction.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add inserts a new order and assigns the generated id to it.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if aggregate.ID() != 0 {
		return order.ErrOrderIDAlreadyAssigned
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewStoreFailureError("insert order", err)
	}

	return aggregate.AssignID(order.ID(dto.ID))
}

// Update writes the current state of an existing order.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID).Update("state", dto.State)
	if result.Error != nil {
		return errs.NewStoreFailureError("update order", result.Error)
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID())
	}

	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id order.ID) (*order.Order, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves an order with SELECT ... FOR UPDATE. The row lock is
// held until the surrounding transaction commits or rolls back.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id order.ID) (*order.Order, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// CountByState groups the stored orders by state.
func (r *GormOrderRepository) CountByState(ctx context.Context) (map[order.State]int64, error) {
	var rows []struct {
		State string
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Select("state, count(*) AS count").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, errs.NewStoreFailureError("count orders", err)
	}

	counts := make(map[order.State]int64, len(rows))
	for _, row := range rows {
		state, err := order.ParseState(row.State)
		if err != nil {
			return nil, err
		}
		counts[state] = row.Count
	}

	return counts, nil
}

func (r *GormOrderRepository) first(db *gorm.DB, id order.ID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := db.First(&dto, "id = ?", int64(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundErrorWithCause("order", id, err)
		}
		return nil, errs.NewStoreFailureError("select order", err)
	}

	return toDomain(dto)
}
