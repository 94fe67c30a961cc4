package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/videotec/internal/identityd/models"
)

const (
	insertQ  = `(?s)^INSERT\s+INTO\s+reset_tokens\s*\(user_id,\s*token,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`
	consumeQ = `(?s)^DELETE\s+FROM\s+reset_tokens\s+WHERE\s+token\s*=\s*\$1\s+RETURNING\s+token,\s*user_id,\s*expires_at,\s*created_at\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestPostgresCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQ).
		WithArgs("u-1", "tok", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), "u-1", "tok", time.Hour))

	mock.ExpectExec(insertQ).WillReturnError(errors.New("db down"))
	err := repo.Create(context.Background(), "u-1", "tok2", time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConsume(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(time.Hour)
	mock.ExpectQuery(consumeQ).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at", "created_at"}).
			AddRow("tok", "u-1", exp, time.Now()))

	got, err := repo.Consume(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, exp, got.ExpiresAt)

	mock.ExpectQuery(consumeQ).WithArgs("tok").WillReturnError(sql.ErrNoRows)
	_, err = repo.Consume(context.Background(), "tok")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryRepository_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	require.NoError(t, r.Create(ctx, "u-1", "tok", time.Minute))

	got, err := r.Consume(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.True(t, got.ExpiresAt.After(time.Now()))

	_, err = r.Consume(ctx, "tok")
	require.ErrorIs(t, err, models.ErrNotFound)
}
