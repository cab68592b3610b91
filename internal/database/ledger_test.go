package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeboard/suggestion-service/internal/models"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &DB{conn: conn}, mock
}

func TestAward_OneShot_Inserts(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO ledger_entries`).
		WithArgs("user-1", 50, models.ReasonApproved, "sugg-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), time.Now()))

	entry, err := db.Award("user-1", 50, models.ReasonApproved, "sugg-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), entry.ID)
	assert.Equal(t, 50, entry.Amount)
	assert.Equal(t, models.ReasonApproved, entry.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAward_OneShot_Conflict_ReturnsAlreadyAwarded(t *testing.T) {
	db, mock := newMockDB(t)

	// ON CONFLICT DO NOTHING yields no RETURNING row for the loser
	mock.ExpectQuery(`INSERT INTO ledger_entries`).
		WithArgs("user-1", 100, models.ReasonApplied, "sugg-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	entry, err := db.Award("user-1", 100, models.ReasonApplied, "sugg-1")
	assert.ErrorIs(t, err, models.ErrAlreadyAwarded)
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAward_NonOneShotReason_AlwaysAppends(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO ledger_entries`).
		WithArgs("user-1", 5, models.ReasonLogin, "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(8), time.Now()))

	entry, err := db.Award("user-1", 5, models.ReasonLogin, "")
	require.NoError(t, err)
	assert.Equal(t, int64(8), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceOf_SumsEntries(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM ledger_entries`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(160))

	balance, err := db.BalanceOf("user-1")
	require.NoError(t, err)
	assert.Equal(t, 160, balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceOf_NoEntries_IsZero(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM ledger_entries`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

	balance, err := db.BalanceOf("ghost")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestHasAward(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", models.ReasonApproved, "sugg-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := db.HasAward("user-1", models.ReasonApproved, "sugg-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestListEntriesByUser(t *testing.T) {
	db, mock := newMockDB(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "amount", "reason", "coalesce", "created_at"}).
		AddRow(int64(2), "user-1", 100, models.ReasonApplied, "sugg-1", now).
		AddRow(int64(1), "user-1", 10, models.ReasonCreated, "sugg-1", now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT id, user_id, amount, reason`).
		WithArgs("user-1", 10).
		WillReturnRows(rows)

	entries, err := db.ListEntriesByUser("user-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ReasonApplied, entries[0].Reason)
	assert.Equal(t, 100, entries[0].Amount)
	assert.Equal(t, "sugg-1", entries[0].ReferenceID)
}
