package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"duit/internal/core"
)

// RepositoryTestSuite runs every test against a fresh in-memory database.
type RepositoryTestSuite struct {
	suite.Suite
	repo *SQLiteRepository
	ctx  context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(s.T(), err, "failed to create test database")
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RepositoryTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *RepositoryTestSuite) mustCreateUser(username string) core.User {
	user, err := s.repo.CreateUser(s.ctx, username, "$2a$10$fakehashfakehashfakehash")
	require.NoError(s.T(), err, "failed to create user %s", username)
	return user
}

func (s *RepositoryTestSuite) mustRecord(userID int64, nominal string, occurredAt time.Time, direction core.Direction, desc string) core.Transaction {
	tx, err := s.repo.CreateTransaction(s.ctx, core.Transaction{
		UserID:      userID,
		Nominal:     decimal.RequireFromString(nominal),
		OccurredAt:  occurredAt,
		Direction:   direction,
		Description: desc,
	})
	require.NoError(s.T(), err)
	return tx
}

func (s *RepositoryTestSuite) TestCreateUser() {
	user := s.mustCreateUser("tester")

	assert.NotZero(s.T(), user.ID)
	assert.Equal(s.T(), "tester", user.Username)
	assert.NotEmpty(s.T(), user.PasswordHash)
}

func (s *RepositoryTestSuite) TestCreateUser_DuplicateUsername() {
	s.mustCreateUser("tester")

	_, err := s.repo.CreateUser(s.ctx, "tester", "another-hash")
	assert.ErrorIs(s.T(), err, core.ErrDuplicateUsername)

	// Exactly one row survives.
	user, err := s.repo.GetUserByUsername(s.ctx, "tester")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "tester", user.Username)
}

func (s *RepositoryTestSuite) TestGetUserByUsername_NotFound() {
	_, err := s.repo.GetUserByUsername(s.ctx, "ghost")
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *RepositoryTestSuite) TestUsernamesAreCaseSensitive() {
	s.mustCreateUser("tester")

	_, err := s.repo.CreateUser(s.ctx, "Tester", "hash")
	assert.NoError(s.T(), err, "different casing is a different username")
}

func (s *RepositoryTestSuite) TestCreateTransaction_RoundTrip() {
	user := s.mustCreateUser("tester")
	occurred := time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)

	created := s.mustRecord(user.ID, "500000.00", occurred, core.Income, "Gaji")
	assert.NotZero(s.T(), created.ID)

	entries, err := s.repo.ListTransactions(s.ctx, user.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), entries, 1)

	got := entries[0]
	assert.Equal(s.T(), created.ID, got.ID)
	assert.Equal(s.T(), user.ID, got.UserID)
	assert.True(s.T(), got.Nominal.Equal(decimal.RequireFromString("500000.00")),
		"nominal = %s", got.Nominal)
	assert.True(s.T(), got.OccurredAt.Equal(occurred), "occurred_at = %v", got.OccurredAt)
	assert.Equal(s.T(), core.Income, got.Direction)
	assert.Equal(s.T(), "Gaji", got.Description)
}

func (s *RepositoryTestSuite) TestListTransactions_DescendingByOccurredAt() {
	user := s.mustCreateUser("tester")

	s.mustRecord(user.ID, "10.00", time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC), core.Income, "first")
	s.mustRecord(user.ID, "20.00", time.Date(2025, 10, 5, 15, 30, 0, 0, time.UTC), core.Outcome, "latest")
	s.mustRecord(user.ID, "30.00", time.Date(2025, 10, 3, 9, 0, 0, 0, time.UTC), core.Income, "middle")

	entries, err := s.repo.ListTransactions(s.ctx, user.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), entries, 3)

	assert.Equal(s.T(), "latest", entries[0].Description)
	assert.Equal(s.T(), "middle", entries[1].Description)
	assert.Equal(s.T(), "first", entries[2].Description)
}

func (s *RepositoryTestSuite) TestListTransactionsInRange_HalfOpenInterval() {
	user := s.mustCreateUser("tester")

	s.mustRecord(user.ID, "1.00", time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), core.Income, "first instant of october")
	s.mustRecord(user.ID, "2.00", time.Date(2025, 10, 31, 23, 59, 59, 0, time.UTC), core.Income, "last second of october")
	s.mustRecord(user.ID, "3.00", time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), core.Income, "first instant of november")

	start, end := core.MonthInterval(2025, 10)
	october, err := s.repo.ListTransactionsInRange(s.ctx, user.ID, start, end)
	require.NoError(s.T(), err)
	require.Len(s.T(), october, 2)
	for _, tx := range october {
		assert.NotEqual(s.T(), "first instant of november", tx.Description)
	}

	start, end = core.MonthInterval(2025, 11)
	november, err := s.repo.ListTransactionsInRange(s.ctx, user.ID, start, end)
	require.NoError(s.T(), err)
	require.Len(s.T(), november, 1)
	assert.Equal(s.T(), "first instant of november", november[0].Description)
}

func (s *RepositoryTestSuite) TestListTransactions_ScopedToOwner() {
	alice := s.mustCreateUser("alice")
	bob := s.mustCreateUser("bob")

	s.mustRecord(alice.ID, "100.00", time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), core.Income, "alice salary")
	s.mustRecord(bob.ID, "50.00", time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC), core.Outcome, "bob groceries")

	aliceEntries, err := s.repo.ListTransactions(s.ctx, alice.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), aliceEntries, 1)
	assert.Equal(s.T(), "alice salary", aliceEntries[0].Description)

	start, end := core.MonthInterval(2025, 10)
	bobEntries, err := s.repo.ListTransactionsInRange(s.ctx, bob.ID, start, end)
	require.NoError(s.T(), err)
	require.Len(s.T(), bobEntries, 1)
	assert.Equal(s.T(), "bob groceries", bobEntries[0].Description)
}

func (s *RepositoryTestSuite) TestListTransactions_EmptyLedger() {
	user := s.mustCreateUser("tester")

	entries, err := s.repo.ListTransactions(s.ctx, user.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), entries)
}

func (s *RepositoryTestSuite) TestNominalPrecisionSurvivesStorage() {
	user := s.mustCreateUser("tester")

	// Values that are not representable exactly in binary floating point.
	for i := 0; i < 10; i++ {
		s.mustRecord(user.ID, "0.10", time.Date(2025, 10, 1, 0, i, 0, 0, time.UTC), core.Income, "")
	}

	entries, err := s.repo.ListTransactions(s.ctx, user.ID)
	require.NoError(s.T(), err)

	sum := core.Summarize(entries)
	assert.Equal(s.T(), "1.00", sum.TotalIncome.StringFixed(2))
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
