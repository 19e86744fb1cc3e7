package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSignupRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func signupRowColumns() []string {
	return []string{"id", "position_id", "volunteer_name", "email", "phone", "start_time", "end_time", "arrived", "created_at", "updated_at"}
}

func TestSignupRepositoryListEligibleOrdering(t *testing.T) {
	db, mock, cleanup := newSignupRepoMock(t)
	defer cleanup()
	repo := NewSignupRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(signupRowColumns()).
		AddRow("su-1", "pos-1", "Alice", nil, nil, now, now.Add(4*time.Hour), false, now, now).
		AddRow("su-2", "pos-1", "Bob", nil, nil, now.Add(time.Hour), now.Add(5*time.Hour), false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE position_id = $1 AND arrived = false\nORDER BY start_time ASC, id ASC")).
		WithArgs("pos-1").
		WillReturnRows(rows)

	list, err := repo.ListEligibleByPosition(context.Background(), "pos-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "su-1", list[0].ID)
	assert.Equal(t, "su-2", list[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupRepositoryMarkArrived(t *testing.T) {
	db, mock, cleanup := newSignupRepoMock(t)
	defer cleanup()
	repo := NewSignupRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE signups SET arrived = true")).
		WithArgs("su-1", "pos-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("su-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE positions SET filled =")).
		WithArgs("pos-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkArrived(context.Background(), "su-1", "pos-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupRepositoryMarkArrivedAlready(t *testing.T) {
	db, mock, cleanup := newSignupRepoMock(t)
	defer cleanup()
	repo := NewSignupRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE signups SET arrived = true")).
		WithArgs("su-1", "pos-1", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT arrived FROM signups WHERE id = $1 AND position_id = $2")).
		WithArgs("su-1", "pos-1").
		WillReturnRows(sqlmock.NewRows([]string{"arrived"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.MarkArrived(context.Background(), "su-1", "pos-1")
	assert.ErrorIs(t, err, ErrAlreadyArrived)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupRepositoryMarkArrivedUnknownSignup(t *testing.T) {
	db, mock, cleanup := newSignupRepoMock(t)
	defer cleanup()
	repo := NewSignupRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE signups SET arrived = true")).
		WithArgs("su-missing", "pos-1", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT arrived FROM signups WHERE id = $1 AND position_id = $2")).
		WithArgs("su-missing", "pos-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.MarkArrived(context.Background(), "su-missing", "pos-1")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupRepositoryRosterByEvent(t *testing.T) {
	db, mock, cleanup := newSignupRepoMock(t)
	defer cleanup()
	repo := NewSignupRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"position_name", "volunteer_name", "email", "phone", "start_time", "end_time", "arrived"}).
		AddRow("Registration", "Alice", nil, nil, now, now.Add(4*time.Hour), true).
		AddRow("Water Station", "Bob", nil, nil, now, now.Add(4*time.Hour), false)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN positions p ON p.id = s.position_id")).
		WithArgs("event-1").
		WillReturnRows(rows)

	roster, err := repo.RosterByEvent(context.Background(), "event-1")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Registration", roster[0].PositionName)
	assert.True(t, roster[0].Arrived)
	assert.NoError(t, mock.ExpectationsWereMet())
}
