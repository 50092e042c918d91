// Package guard provides the constructor guard embedded by value objects and
// commands so that zero values can be told apart from properly built ones.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by ConstructorGuard.Validate when the
// caller does not supply a more specific error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks a struct as built through its constructor.
//
// Embed it in commands and queries whose zero value is meaningless:
//
//	type PayOrderCommand struct {
//	    orderID order.ID
//	    guard   guard.ConstructorGuard
//	}
//
//	func (c PayOrderCommand) Validate() error {
//	    return c.guard.Validate(ErrPayOrderCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard that passes validation.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
