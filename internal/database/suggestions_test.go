package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeboard/suggestion-service/internal/models"
)

func TestCreateSuggestion_InitializesPending(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO suggestions`).
		WithArgs("sugg-1", "user-1", "model-7", models.CategoryRiskManagement,
			"cap position size at two percent", "", models.StatusPending,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	s := &models.Suggestion{
		ID:            "sugg-1",
		AuthorID:      "user-1",
		TargetModelID: "model-7",
		Category:      models.CategoryRiskManagement,
		Content:       "cap position size at two percent",
	}
	err := db.CreateSuggestion(s)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, s.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatus_CASWins(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE suggestions SET status`).
		WithArgs("sugg-1", models.StatusPending, models.StatusReviewing, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := db.TransitionStatus("sugg-1", models.StatusPending, models.StatusReviewing)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatus_StaleStatus_InvalidTransition(t *testing.T) {
	db, mock := newMockDB(t)

	// CAS misses: the row exists but its persisted status changed under us
	mock.ExpectExec(`UPDATE suggestions SET status`).
		WithArgs("sugg-1", models.StatusReviewing, models.StatusApproved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("sugg-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := db.TransitionStatus("sugg-1", models.StatusReviewing, models.StatusApproved)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatus_MissingRow_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE suggestions SET status`).
		WithArgs("nope", models.StatusPending, models.StatusReviewing, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := db.TransitionStatus("nope", models.StatusPending, models.StatusReviewing)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMarkApplied_RequiresApproved(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE suggestions SET status`).
		WithArgs("sugg-1", models.StatusApproved, models.StatusApplied, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("sugg-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := db.MarkApplied("sugg-1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestRevertToPending(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE suggestions SET status`).
		WithArgs("sugg-1", models.StatusPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := db.RevertToPending("sugg-1")
	assert.NoError(t, err)
}

func TestGetSuggestion_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := db.GetSuggestion("nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecordVote_ReplayReturnsFalse(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO suggestion_votes`).
		WithArgs("vote-1", "sugg-1", "voter-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO suggestion_votes`).
		WithArgs("vote-1", "sugg-1", "voter-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	fresh, err := db.RecordVote("vote-1", "sugg-1", "voter-1")
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = db.RecordVote("vote-1", "sugg-1", "voter-1")
	require.NoError(t, err)
	assert.False(t, fresh)
}
