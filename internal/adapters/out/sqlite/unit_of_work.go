package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ErrNoActiveTransaction is returned by Commit without a preceding Begin.
var ErrNoActiveTransaction = errors.New("no active transaction")

// UnitOfWorkFactory creates UnitOfWork instances over one *sql.DB.
type UnitOfWorkFactory struct {
	db *sql.DB
}

// NewUnitOfWorkFactory creates a factory for SQLite unit of work instances.
func NewUnitOfWorkFactory(db *sql.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork with no active transaction.
func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{db: f.db}
}

// UnitOfWork wraps at most one *sql.Tx.
type UnitOfWork struct {
	db *sql.DB
	tx *sql.Tx
}

// Begin starts a transaction. A second Begin on an active unit of work is a no-op.
func (uow *UnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx, err := uow.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.NewStoreFailureError("begin transaction", err)
	}

	uow.tx = tx
	return nil
}

// Commit commits the active transaction.
func (uow *UnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return ErrNoActiveTransaction
	}

	err := uow.tx.Commit()
	uow.tx = nil
	if err != nil {
		return errs.NewStoreFailureError("commit transaction", err)
	}
	return nil
}

// Rollback discards the active transaction; without one it does nothing.
func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return nil
	}

	err := uow.tx.Rollback()
	uow.tx = nil
	return err
}

// OrderRepository returns a repository bound to the active transaction, or
// to the plain connection when there is none.
func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	if uow.tx != nil {
		return NewOrderRepository(uow.tx)
	}
	return NewOrderRepository(uow.db)
}
