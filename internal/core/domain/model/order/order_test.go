package order_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNewOrder(t *testing.T) {
	t.Run("should start in SUBMITTED without an id", func(t *testing.T) {
		o, err := order.NewOrder(createdAt)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.Equal(t, order.Submitted, o.State())
		assert.Equal(t, order.ID(0), o.ID())
		assert.Equal(t, createdAt, o.CreatedAt())
	})

	t.Run("should require a creation time", func(t *testing.T) {
		_, err := order.NewOrder(time.Time{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestRestoreOrder(t *testing.T) {
	t.Run("should restore any known state", func(t *testing.T) {
		for _, s := range order.States() {
			o, err := order.RestoreOrder(42, createdAt, s)

			require.NoError(t, err)
			assert.Equal(t, order.ID(42), o.ID())
			assert.Equal(t, s, o.State())
		}
	})

	t.Run("should collect every validation error", func(t *testing.T) {
		_, err := order.RestoreOrder(0, time.Time{}, order.State("SHIPPED"))

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "0 is not a positive id")
		assert.Contains(t, err.Error(), `"SHIPPED" is not a known order state`)
	})
}

func TestOrder_Validate(t *testing.T) {
	var nilOrder *order.Order
	assert.Equal(t, order.ErrOrderIsNotConstructed, nilOrder.Validate())
	assert.Equal(t, order.ErrOrderIsNotConstructed, (&order.Order{}).Validate())
}

func TestOrder_AssignID(t *testing.T) {
	t.Run("should assign once", func(t *testing.T) {
		o, _ := order.NewOrder(createdAt)

		require.NoError(t, o.AssignID(1))
		assert.Equal(t, order.ID(1), o.ID())
		assert.Equal(t, order.ErrOrderIDAlreadyAssigned, o.AssignID(2))
		assert.Equal(t, order.ID(1), o.ID())
	})

	t.Run("should reject non positive ids", func(t *testing.T) {
		o, _ := order.NewOrder(createdAt)

		require.ErrorIs(t, o.AssignID(-3), errs.ErrValueIsInvalid)
		assert.Equal(t, order.ID(0), o.ID())
	})
}

func TestOrder_ChangeState(t *testing.T) {
	t.Run("should overwrite the state", func(t *testing.T) {
		o, _ := order.RestoreOrder(1, createdAt, order.Paid)

		require.NoError(t, o.ChangeState(order.Cancelled))
		assert.Equal(t, order.Cancelled, o.State())
	})

	t.Run("should keep the state on unknown target", func(t *testing.T) {
		o, _ := order.RestoreOrder(1, createdAt, order.Paid)

		require.ErrorIs(t, o.ChangeState(order.State("")), errs.ErrValueIsInvalid)
		assert.Equal(t, order.Paid, o.State())
	})
}
