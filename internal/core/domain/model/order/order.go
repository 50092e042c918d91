package order

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrOrderIDAlreadyAssigned is returned when a store tries to assign an id twice.
	ErrOrderIDAlreadyAssigned = errors.New("order id is already assigned")
)

// ID identifies an order. Ids are assigned by the store on create and are
// always positive; the zero value means "not yet persisted".
type ID int64

// Validate checks that the id was assigned by a store.
func (id ID) Validate() error {
	if id <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("%d is not a positive id", int64(id)))
	}
	return nil
}

// Order is the aggregate root whose lifecycle the state machine manages.
//
// Order follows these invariants:
//   - state is always a recognised State
//   - createdAt is never the zero time
//   - id is zero until the store assigns it, positive afterwards, and never changes
//   - Can only be created through NewOrder or RestoreOrder
//
// Order does not decide which transitions are legal. The state machine
// definition does, and the persistence interceptor is the only caller of
// ChangeState.
type Order struct {
	// id is assigned by the store on create
	id ID

	// createdAt is the wall-clock time of creation
	createdAt time.Time

	// state is the current lifecycle state
	state State

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates a not yet persisted order in the Submitted state.
//
// Parameters:
//   - createdAt: wall-clock time of creation (must not be zero)
//
// Returns:
//   - *Order: the new order with a zero ID
//   - error: validation error if createdAt is zero
//
// Example:
//
//	o, err := order.NewOrder(time.Now())
//	if err != nil {
//	    return err
//	}
//	if err := repo.Add(ctx, o); err != nil { // assigns o.ID()
//	    return err
//	}
func NewOrder(createdAt time.Time) (*Order, error) {
	o := &Order{
		state:         Submitted,
		isConstructed: true,
	}

	if err := o.setCreatedAt(createdAt); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds an order from its persisted snapshot.
//
// Unlike NewOrder it accepts any recognised state, and it requires a positive id.
// Repositories call it after parsing the stored state name with ParseState.
func RestoreOrder(id ID, createdAt time.Time, state State) (*Order, error) {
	o := &Order{isConstructed: true}

	if err := errors.Join(
		o.setID(id),
		o.setCreatedAt(createdAt),
		o.setState(state),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// ID returns the store-assigned identifier, zero before the first Add.
func (o *Order) ID() ID {
	return o.id
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// State returns the current lifecycle state.
func (o *Order) State() State {
	return o.state
}

// AssignID records the identifier generated by the store on insert.
// It fails if the order already has an id or if id is not positive.
func (o *Order) AssignID(id ID) error {
	if o.id != 0 {
		return ErrOrderIDAlreadyAssigned
	}
	return o.setID(id)
}

// ChangeState overwrites the current state with target.
//
// The transition itself has already been validated by the state machine; this
// method only guards the state invariant. It is called by the persistence
// interceptor right before the order is saved.
func (o *Order) ChangeState(target State) error {
	return o.setState(target)
}

func (o *Order) setID(id ID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	o.createdAt = createdAt
	return nil
}

func (o *Order) setState(state State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	o.state = state
	return nil
}
