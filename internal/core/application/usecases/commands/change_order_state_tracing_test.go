package commands_test

import (
	"errors"
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/statemachine"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordSpans installs a recording tracer provider. Handlers built after the
// call trace into it.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })
	return recorder
}

func changeSpan(t *testing.T, recorder *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, "ChangeOrderState", ended[0].Name())
	return ended[0]
}

func TestChangeOrderStateCommandHandler_Handle_TracesStoreFailure(t *testing.T) {
	recorder := recordSpans(t)
	f := newChangeFixture()
	cmd, _ := commands.NewChangeOrderStateCommand(1, order.Pay, statemachine.Headers{PaymentConfirmationNumber: "ref-1"})
	saveErr := errs.NewStoreFailureError("update order", errors.New("disk I/O error"))

	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.uow.On("OrderRepository").Return(f.repo).Once()
	f.repo.On("GetForUpdate", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Submitted), nil).Once()
	f.repo.On("Get", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Submitted), nil).Once()
	f.repo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).Return(saveErr).Once()
	f.uow.On("Rollback", mock.Anything).Return(nil).Once()

	_, err := f.handler.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrStoreFailure)

	span := changeSpan(t, recorder)
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, saveErr.Error(), span.Status().Description)
	assert.Contains(t, span.Attributes(), attribute.Int64("order.id", 1))
	assert.Contains(t, span.Attributes(), attribute.String("order.event", "PAY"))
	require.NotEmpty(t, span.Events())
	assert.Equal(t, "exception", span.Events()[0].Name)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_TracesOutcome(t *testing.T) {
	recorder := recordSpans(t)
	f := newChangeFixture()
	cmd, _ := commands.NewChangeOrderStateCommand(1, order.Fulfill, statemachine.Headers{})

	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.uow.On("OrderRepository").Return(f.repo).Once()
	f.repo.On("GetForUpdate", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Submitted), nil).Once()
	f.uow.On("Rollback", mock.Anything).Return(nil).Once()

	outcome, err := f.handler.Handle(t.Context(), cmd)
	require.NoError(t, err)
	require.True(t, outcome.Rejected())

	span := changeSpan(t, recorder)
	assert.Equal(t, codes.Unset, span.Status().Code)
	assert.Contains(t, span.Attributes(), attribute.String("order.outcome", "REJECTED"))
	assert.Contains(t, span.Attributes(), attribute.String("order.state", "SUBMITTED"))
	f.assertExpectations(t)
}
