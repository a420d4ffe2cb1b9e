package repos_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fandomia/internal/domain"
	"fandomia/internal/repos"
)

type cartItemRepoSuite struct {
	suite.Suite

	dsn  string
	db   *sqlx.DB
	repo *repos.CartItemRepo
}

func TestCartItemRepoSuite(t *testing.T) {
	suite.Run(t, &cartItemRepoSuite{dsn: ":memory:"})
}

func (s *cartItemRepoSuite) SetupSuite() {
	db, err := repos.OpenDB(s.dsn)
	s.Require().NoError(err)
	s.db = db
	s.repo = repos.NewCartItemRepo(db)
}

func (s *cartItemRepoSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *cartItemRepoSuite) TestUpsertUpdatesInPlace() {
	t := s.T()
	ctx := t.Context()
	customer, sid := gofakeit.UUID(), gofakeit.UUID()
	defer s.deleteCustomer(customer)

	row := domain.RemoteCartRow{CustomerID: customer, SessionID: sid, ProductID: 3, Quantity: 1}
	require.NoError(t, s.repo.Upsert(ctx, []domain.RemoteCartRow{row}))

	row.Quantity = 4
	require.NoError(t, s.repo.Upsert(ctx, []domain.RemoteCartRow{row}))

	got, err := s.repo.ByCustomer(ctx, customer)
	require.NoError(t, err)
	require.Len(t, got, 1, "null variant must still hit the unique key")
	assert.Equal(t, 4, got[0].Quantity)
	assert.Nil(t, got[0].VariantID)
	assert.False(t, got[0].AddedAt.IsZero())
}

func (s *cartItemRepoSuite) TestVariantsAndSessionsAreSeparateRows() {
	t := s.T()
	ctx := t.Context()
	customer := gofakeit.UUID()
	defer s.deleteCustomer(customer)

	rows := []domain.RemoteCartRow{
		{CustomerID: customer, SessionID: "s1", ProductID: 7, Quantity: 1},
		{CustomerID: customer, SessionID: "s1", ProductID: 7, VariantID: domain.Int64(3), Quantity: 2},
		{CustomerID: customer, SessionID: "s2", ProductID: 7, Quantity: 5},
	}
	require.NoError(t, s.repo.Upsert(ctx, rows))

	got, err := s.repo.ByCustomer(ctx, customer)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(3), *got[1].VariantID)
}

func (s *cartItemRepoSuite) TestByCustomerOrderedByAddedAtAndScoped() {
	t := s.T()
	ctx := t.Context()
	customer, other := gofakeit.UUID(), gofakeit.UUID()
	defer s.deleteCustomer(customer)
	defer s.deleteCustomer(other)

	require.NoError(t, s.repo.Upsert(ctx, []domain.RemoteCartRow{{CustomerID: customer, SessionID: "a", ProductID: 2, Quantity: 1}}))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.repo.Upsert(ctx, []domain.RemoteCartRow{{CustomerID: customer, SessionID: "a", ProductID: 1, Quantity: 1}}))
	require.NoError(t, s.repo.Upsert(ctx, []domain.RemoteCartRow{{CustomerID: other, SessionID: "b", ProductID: 9, Quantity: 1}}))

	// Updating the older row must not move it to the end.
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.repo.Upsert(ctx, []domain.RemoteCartRow{{CustomerID: customer, SessionID: "a", ProductID: 2, Quantity: 6}}))

	got, err := s.repo.ByCustomer(ctx, customer)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ProductID)
	assert.Equal(t, 6, got[0].Quantity)
	assert.Equal(t, int64(1), got[1].ProductID)
}

func (s *cartItemRepoSuite) TestUpsertRejectsZeroQuantity() {
	t := s.T()
	customer := gofakeit.UUID()
	defer s.deleteCustomer(customer)

	err := s.repo.Upsert(t.Context(), []domain.RemoteCartRow{
		{CustomerID: customer, SessionID: "a", ProductID: 1, Quantity: 2},
		{CustomerID: customer, SessionID: "a", ProductID: 2, Quantity: 0},
	})
	require.Error(t, err)

	got, err := s.repo.ByCustomer(t.Context(), customer)
	require.NoError(t, err)
	assert.Empty(t, got, "batch is all or nothing")
}

func (s *cartItemRepoSuite) deleteCustomer(id string) {
	_, err := s.db.ExecContext(s.T().Context(), s.db.Rebind(`DELETE FROM cart_items WHERE customer_id = ?`), id)
	s.Require().NoError(err)
}
