package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// OrderRepository implements ports.OrderRepository on SQLite.
type OrderRepository struct {
	db dbtx
}

// NewOrderRepository creates a repository running its statements on db.
func NewOrderRepository(db dbtx) *OrderRepository {
	return &OrderRepository{db: db}
}

// Add inserts a new order and assigns the generated id to it.
func (r *OrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if aggregate.ID() != 0 {
		return order.ErrOrderIDAlreadyAssigned
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (datetime, state) VALUES (?, ?)`,
		formatTime(aggregate.CreatedAt()), aggregate.State().String(),
	)
	if err != nil {
		return errs.NewStoreFailureError("insert order", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return errs.NewStoreFailureError("insert order", err)
	}

	return aggregate.AssignID(order.ID(id))
}

// Update writes the current state of an existing order.
func (r *OrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET state = ? WHERE id = ?`,
		aggregate.State().String(), int64(aggregate.ID()),
	)
	if err != nil {
		return errs.NewStoreFailureError("update order", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errs.NewStoreFailureError("update order", err)
	}
	if n == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID())
	}

	return nil
}

// Get retrieves an order by ID.
func (r *OrderRepository) Get(ctx context.Context, id order.ID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var (
		rawID    int64
		datetime string
		state    string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, datetime, state FROM orders WHERE id = ?`, int64(id),
	).Scan(&rawID, &datetime, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewObjectNotFoundErrorWithCause("order", id, err)
	}
	if err != nil {
		return nil, errs.NewStoreFailureError("select order", err)
	}

	return restore(rawID, datetime, state)
}

// GetForUpdate is Get: SQLite has no row locks, and the single connection
// already serialises transactions.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id order.ID) (*order.Order, error) {
	return r.Get(ctx, id)
}

// CountByState groups the stored orders by state.
func (r *OrderRepository) CountByState(ctx context.Context) (map[order.State]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT state, COUNT(*) FROM orders GROUP BY state`)
	if err != nil {
		return nil, errs.NewStoreFailureError("count orders", err)
	}
	defer rows.Close()

	counts := make(map[order.State]int64)
	for rows.Next() {
		var (
			name  string
			count int64
		)
		if err = rows.Scan(&name, &count); err != nil {
			return nil, errs.NewStoreFailureError("count orders", err)
		}
		state, parseErr := order.ParseState(name)
		if parseErr != nil {
			return nil, parseErr
		}
		counts[state] = count
	}
	if err = rows.Err(); err != nil {
		return nil, errs.NewStoreFailureError("count orders", err)
	}

	return counts, nil
}

func restore(id int64, datetime, stateName string) (*order.Order, error) {
	state, err := order.ParseState(stateName)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", id, err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, datetime)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("datetime", err)
	}

	return order.RestoreOrder(order.ID(id), createdAt, state)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
