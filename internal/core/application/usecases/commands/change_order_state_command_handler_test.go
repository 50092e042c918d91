package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/statemachine"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type changeRecorder struct {
	statemachine.NopListener
	changes []string
}

func (r *changeRecorder) StateChanged(_ context.Context, _ order.ID, from, to order.State) {
	r.changes = append(r.changes, from.String()+"->"+to.String())
}

type changeFixture struct {
	repo      *MockOrderRepository
	uow       *MockOrderUoW
	factory   *MockOrderUoWFactory
	publisher *MockOrderEventPublisher
	listener  *changeRecorder
	handler   commands.ChangeOrderStateCommandHandler
}

func newChangeFixture() *changeFixture {
	f := &changeFixture{
		repo:      new(MockOrderRepository),
		uow:       new(MockOrderUoW),
		factory:   new(MockOrderUoWFactory),
		publisher: new(MockOrderEventPublisher),
		listener:  &changeRecorder{},
	}
	f.factory.On("Create").Return(f.uow).Once()
	f.handler = commands.NewChangeOrderStateCommandHandler(f.factory, f.publisher, discardLogger(), f.listener)
	return f
}

func (f *changeFixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.repo.AssertExpectations(t)
	f.uow.AssertExpectations(t)
	f.factory.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func stored(t *testing.T, id order.ID, state order.State) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(id, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), state)
	require.NoError(t, err)
	return o
}

func TestChangeOrderStateCommandHandler_Handle_Accepted(t *testing.T) {
	f := newChangeFixture()
	cmd, _ := commands.NewChangeOrderStateCommand(1, order.Pay, statemachine.Headers{PaymentConfirmationNumber: "ref-1"})

	mock.InOrder(
		f.uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("GetForUpdate", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Submitted), nil).Once(),
		f.repo.On("Get", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Submitted), nil).Once(),
		f.repo.On("Update", mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
			return o.ID() == 1 && o.State() == order.Paid
		})).Return(nil).Once(),
		f.uow.On("Commit", mock.Anything).Return(nil).Once(),
		f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
		f.publisher.On("PublishStateChanged", mock.Anything, mock.MatchedBy(func(e order.StateChanged) bool {
			return e.OrderID == 1 && e.Event == order.Pay &&
				e.From == order.Submitted && e.To == order.Paid && !e.OccurredAt.IsZero()
		})).Return(nil).Once(),
	)

	outcome, err := f.handler.Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.True(t, outcome.Accepted())
	assert.Equal(t, order.Submitted, outcome.Source)
	assert.Equal(t, order.Paid, outcome.State())
	assert.Equal(t, []string{"SUBMITTED->PAID"}, f.listener.changes)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_Rejected(t *testing.T) {
	f := newChangeFixture()
	cmd, _ := commands.NewChangeOrderStateCommand(1, order.Pay, statemachine.Headers{})

	mock.InOrder(
		f.uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("GetForUpdate", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Fulfilled), nil).Once(),
		f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	outcome, err := f.handler.Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.True(t, outcome.Rejected())
	assert.Equal(t, order.Fulfilled, outcome.State())
	require.ErrorIs(t, outcome.Err(), statemachine.ErrRejected)
	assert.Empty(t, f.listener.changes)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.publisher.AssertNotCalled(t, "PublishStateChanged", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_NotFound(t *testing.T) {
	f := newChangeFixture()
	cmd, _ := commands.NewChangeOrderStateCommand(9999, order.Pay, statemachine.Headers{})

	mock.InOrder(
		f.uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("GetForUpdate", mock.Anything, order.ID(9999)).
			Return(nil, errs.NewObjectNotFoundError("order", order.ID(9999))).Once(),
		f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	_, err := f.handler.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_StoreFailureOnSave(t *testing.T) {
	f := newChangeFixture()
	cmd, _ := commands.NewChangeOrderStateCommand(1, order.Fulfill, statemachine.Headers{})
	saveErr := errs.NewStoreFailureError("update order", errors.New("connection reset by peer"))

	mock.InOrder(
		f.uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("GetForUpdate", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Paid), nil).Once(),
		f.repo.On("Get", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Paid), nil).Once(),
		f.repo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).Return(saveErr).Once(),
		f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	outcome, err := f.handler.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrStoreFailure)
	assert.Same(t, saveErr, err)
	assert.Equal(t, statemachine.Outcome{}, outcome)
	assert.Empty(t, f.listener.changes)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.publisher.AssertNotCalled(t, "PublishStateChanged", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_CommitError(t *testing.T) {
	f := newChangeFixture()
	cmd, _ := commands.NewChangeOrderStateCommand(1, order.Cancel, statemachine.Headers{})

	mock.InOrder(
		f.uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("GetForUpdate", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Paid), nil).Once(),
		f.repo.On("Get", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Paid), nil).Once(),
		f.repo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		f.uow.On("Commit", mock.Anything).Return(errors.New("commit error")).Once(),
		f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	_, err := f.handler.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrStoreFailure)
	assert.Contains(t, err.Error(), "commit error")
	f.publisher.AssertNotCalled(t, "PublishStateChanged", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_BeginError(t *testing.T) {
	f := newChangeFixture()
	cmd, _ := commands.NewChangeOrderStateCommand(1, order.Cancel, statemachine.Headers{})

	f.uow.On("Begin", mock.Anything).Return(errors.New("too many connections")).Once()

	_, err := f.handler.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrStoreFailure)
	f.uow.AssertNotCalled(t, "OrderRepository")
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_PublishFailureIsNotReturned(t *testing.T) {
	f := newChangeFixture()
	cmd, _ := commands.NewChangeOrderStateCommand(1, order.Cancel, statemachine.Headers{})

	f.uow.On("Begin", mock.Anything).Return(nil).Once()
	f.uow.On("OrderRepository").Return(f.repo).Once()
	f.repo.On("GetForUpdate", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Fulfilled), nil).Once()
	f.repo.On("Get", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Fulfilled), nil).Once()
	f.repo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()
	f.uow.On("Commit", mock.Anything).Return(nil).Once()
	f.uow.On("Rollback", mock.Anything).Return(nil).Once()
	f.publisher.On("PublishStateChanged", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	outcome, err := f.handler.Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, outcome.State())
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_WithoutPublisher(t *testing.T) {
	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(repo).Once()
	repo.On("GetForUpdate", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Submitted), nil).Once()
	repo.On("Get", mock.Anything, order.ID(1)).Return(stored(t, 1, order.Submitted), nil).Once()
	repo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()
	uow.On("Commit", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()

	h := commands.NewChangeOrderStateCommandHandler(factory, nil, discardLogger())
	outcome, err := h.Handle(t.Context(), mustChangeCommand(t, 1, order.Pay))

	require.NoError(t, err)
	assert.True(t, outcome.Accepted())
	uow.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockOrderUoWFactory)
	h := commands.NewChangeOrderStateCommandHandler(factory, nil, discardLogger())

	_, err := h.Handle(t.Context(), commands.ChangeOrderStateCommand{})

	require.ErrorIs(t, err, commands.ErrChangeOrderStateCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func mustChangeCommand(t *testing.T, id order.ID, event order.Event) commands.ChangeOrderStateCommand {
	t.Helper()
	cmd, err := commands.NewChangeOrderStateCommand(id, event, statemachine.Headers{})
	require.NoError(t, err)
	return cmd
}
