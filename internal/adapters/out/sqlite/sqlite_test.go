package sqlite_test

import (
	"bytes"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"orderflow/internal/adapters/out/sqlite"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	db      *sql.DB
	factory ports.UnitOfWorkFactory
}

func (s *StoreTestSuite) SetupTest() {
	db, err := sqlite.Open(filepath.Join(s.T().TempDir(), "orders.db"))
	s.Require().NoError(err)
	s.Require().NoError(sqlite.Migrate(db, discardLogger()))
	s.db = db
	s.factory = sqlite.NewUnitOfWorkFactory(db)
}

func (s *StoreTestSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *StoreTestSuite) repo() ports.OrderRepository {
	return s.factory.Create().OrderRepository()
}

func (s *StoreTestSuite) addOrder(state order.State) *order.Order {
	o, err := order.NewOrder(time.Date(2024, 1, 1, 9, 0, 0, 123456789, time.UTC))
	s.Require().NoError(err)
	s.Require().NoError(s.repo().Add(s.T().Context(), o))
	if state != order.Submitted {
		s.Require().NoError(o.ChangeState(state))
		s.Require().NoError(s.repo().Update(s.T().Context(), o))
	}
	return o
}

func (s *StoreTestSuite) TestAdd_AssignsIDsAndRoundTrips() {
	ctx := s.T().Context()
	first := s.addOrder(order.Submitted)
	second := s.addOrder(order.Submitted)

	s.Equal(order.ID(1), first.ID())
	s.Equal(order.ID(2), second.ID())

	got, err := s.repo().Get(ctx, first.ID())
	s.Require().NoError(err)
	s.Equal(first.ID(), got.ID())
	s.Equal(order.Submitted, got.State())
	s.True(first.CreatedAt().Equal(got.CreatedAt()))
}

func (s *StoreTestSuite) TestAdd_RejectsOrdersWithID() {
	o, err := order.RestoreOrder(3, time.Now(), order.Paid)
	s.Require().NoError(err)

	s.Require().ErrorIs(s.repo().Add(s.T().Context(), o), order.ErrOrderIDAlreadyAssigned)
}

func (s *StoreTestSuite) TestGet_NotFound() {
	_, err := s.repo().Get(s.T().Context(), 9999)

	var notFound *errs.ObjectNotFoundError
	s.Require().ErrorAs(err, &notFound)
	s.Equal(order.ID(9999), notFound.ID)
}

func (s *StoreTestSuite) TestGet_UnknownStateFailsLoudly() {
	_, err := s.db.Exec(`INSERT INTO orders (datetime, state) VALUES (?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), "3")
	s.Require().NoError(err)

	_, err = s.repo().Get(s.T().Context(), 1)

	s.Require().ErrorIs(err, errs.ErrValueIsInvalid)
	s.Contains(err.Error(), "order 1")
}

func (s *StoreTestSuite) TestUpdate_StoresStateName() {
	o := s.addOrder(order.Fulfilled)

	var raw string
	s.Require().NoError(s.db.QueryRow(`SELECT state FROM orders WHERE id = ?`, int64(o.ID())).Scan(&raw))
	s.Equal("FULFILLED", raw)
}

func (s *StoreTestSuite) TestUpdate_NotFound() {
	o, err := order.RestoreOrder(42, time.Now(), order.Paid)
	s.Require().NoError(err)

	s.Require().ErrorIs(s.repo().Update(s.T().Context(), o), errs.ErrObjectNotFound)
}

func (s *StoreTestSuite) TestCountByState() {
	s.addOrder(order.Submitted)
	s.addOrder(order.Paid)
	s.addOrder(order.Paid)
	s.addOrder(order.Cancelled)

	counts, err := s.repo().CountByState(s.T().Context())

	s.Require().NoError(err)
	s.Equal(map[order.State]int64{
		order.Submitted: 1,
		order.Paid:      2,
		order.Cancelled: 1,
	}, counts)
}

func (s *StoreTestSuite) TestUnitOfWork_CommitAndRollback() {
	ctx := s.T().Context()
	o := s.addOrder(order.Submitted)

	uow := s.factory.Create()
	s.Require().NoError(uow.Begin(ctx))
	s.Require().NoError(uow.Begin(ctx))
	locked, err := uow.OrderRepository().GetForUpdate(ctx, o.ID())
	s.Require().NoError(err)
	s.Require().NoError(locked.ChangeState(order.Paid))
	s.Require().NoError(uow.OrderRepository().Update(ctx, locked))
	s.Require().NoError(uow.Rollback(ctx))

	got, err := s.repo().Get(ctx, o.ID())
	s.Require().NoError(err)
	s.Equal(order.Submitted, got.State())

	s.Require().NoError(uow.Begin(ctx))
	s.Require().NoError(uow.OrderRepository().Update(ctx, locked))
	s.Require().NoError(uow.Commit(ctx))
	s.Require().NoError(uow.Rollback(ctx), "rollback after commit is a no-op")

	got, err = s.repo().Get(ctx, o.ID())
	s.Require().NoError(err)
	s.Equal(order.Paid, got.State())
}

func (s *StoreTestSuite) TestUnitOfWork_CommitWithoutBegin() {
	err := s.factory.Create().Commit(s.T().Context())

	s.Require().ErrorIs(err, sqlite.ErrNoActiveTransaction)
}

func (s *StoreTestSuite) TestMigrate_IsIdempotent() {
	s.Require().NoError(sqlite.Migrate(s.db, discardLogger()))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestMigrate_LogsThroughSlog(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	require.NoError(t, sqlite.Migrate(db, logger))
	assert.Contains(t, buf.String(), "component=goose")
	assert.Contains(t, buf.String(), "00001_create_orders.sql")

	buf.Reset()
	require.NoError(t, sqlite.Migrate(db, logger))
	assert.Contains(t, buf.String(), "no migrations to run")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
