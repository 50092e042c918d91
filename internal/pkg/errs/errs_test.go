package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("order", int64(9999))

		assert.Equal(t, "order", err.ParamName)
		assert.Equal(t, int64(9999), err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: order 9999", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("record not found")
		err := errs.NewObjectNotFoundErrorWithCause("order", int64(1), cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "object not found: order 1 (cause: record not found)", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("NewValueIsInvalidError", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("state")

		assert.Equal(t, "state", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: state", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("NewValueIsInvalidErrorWithCause", func(t *testing.T) {
		cause := errors.New(`"SHIPPED" is not a known order state`)
		err := errs.NewValueIsInvalidErrorWithCause("state", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, `value is invalid: state (cause: "SHIPPED" is not a known order state)`, err.Error())
	})

	t.Run("cause with newlines is kept on one line", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("state", errors.New("first\nsecond"))

		assert.Contains(t, err.Error(), "first second")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	t.Run("NewValueIsRequiredError", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("paymentConfirmationNumber")

		assert.Equal(t, "paymentConfirmationNumber", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is required: paymentConfirmationNumber", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})

	t.Run("NewValueIsRequiredErrorWithCause", func(t *testing.T) {
		cause := errors.New("empty string")
		err := errs.NewValueIsRequiredErrorWithCause("createdAt", cause)

		assert.Equal(t, "value is required: createdAt (cause: empty string)", err.Error())
	})
}

func TestStoreFailureError(t *testing.T) {
	t.Run("NewStoreFailureError", func(t *testing.T) {
		cause := errors.New("connection reset by peer")
		err := errs.NewStoreFailureError("update order", cause)

		assert.Equal(t, "update order", err.Operation)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "store failure: update order (cause: connection reset by peer)", err.Error())
		assert.Equal(t, errs.ErrStoreFailure, err.Unwrap())
	})

	t.Run("without cause", func(t *testing.T) {
		err := errs.NewStoreFailureError("commit", nil)

		assert.Equal(t, "store failure: commit", err.Error())
	})
}

func TestErrorsCanBeClassified(t *testing.T) {
	wrapped := fmt.Errorf("pay order: %w", errs.NewObjectNotFoundError("order", int64(7)))
	require.ErrorIs(t, wrapped, errs.ErrObjectNotFound)

	var notFound *errs.ObjectNotFoundError
	require.ErrorAs(t, wrapped, &notFound)
	assert.Equal(t, int64(7), notFound.ID)

	require.ErrorIs(t, errs.NewStoreFailureError("save", errors.New("disk full")), errs.ErrStoreFailure)
	require.ErrorIs(t, errs.NewValueIsInvalidError("state"), errs.ErrValueIsInvalid)
	require.ErrorIs(t, errs.NewValueIsRequiredError("id"), errs.ErrValueIsRequired)
	assert.NotErrorIs(t, errs.NewValueIsRequiredError("id"), errs.ErrValueIsInvalid)
}
