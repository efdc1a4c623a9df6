package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	dom "github.com/birlikkoshan/todo-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var todoCols = []string{"id", "user_id", "title", "description", "status", "created_at", "updated_at"}

func newTodoRepoWithMock(t *testing.T) (*PGTodoRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPGTodoRepo(mock), mock
}

func strPtr(s string) *string { return &s }

func TestPGTodoRepo_Create(t *testing.T) {
	repo, mock := newTodoRepoWithMock(t)
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO todos (user_id, title, description, status, created_at, updated_at)`)).
		WithArgs(int64(3), "Buy milk", (*string)(nil), "pending", ts, ts).
		WillReturnRows(pgxmock.NewRows(todoCols).
			AddRow(int64(11), int64(3), "Buy milk", (*string)(nil), "pending", ts, ts))

	got, err := repo.Create(context.Background(), dom.Todo{
		UserID: 3, Title: "Buy milk", Status: dom.StatusPending, CreatedAt: ts, UpdatedAt: ts,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, int64(3), got.UserID)
	assert.Equal(t, dom.StatusPending, got.Status)
	assert.Nil(t, got.Description)
	assert.Equal(t, ts, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTodoRepo_Create_DBError(t *testing.T) {
	repo, mock := newTodoRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO todos`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), dom.Todo{UserID: 1, Title: "x", Status: dom.StatusPending})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestPGTodoRepo_GetByID_ScopedToOwner(t *testing.T) {
	repo, mock := newTodoRepoWithMock(t)
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM todos WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(11), int64(3)).
		WillReturnRows(pgxmock.NewRows(todoCols).
			AddRow(int64(11), int64(3), "Buy milk", strPtr("2l"), "completed", ts, ts))

	got, err := repo.GetByID(context.Background(), 3, 11)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusCompleted, got.Status)
	require.NotNil(t, got.Description)
	assert.Equal(t, "2l", *got.Description)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM todos WHERE id = $1 AND user_id = $2`)).
		WithArgs(int64(11), int64(4)).
		WillReturnRows(pgxmock.NewRows(todoCols))

	_, err = repo.GetByID(context.Background(), 4, 11)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTodoRepo_List(t *testing.T) {
	repo, mock := newTodoRepoWithMock(t)
	t1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	mock.ExpectQuery(`ORDER BY created_at ASC, id ASC`).
		WithArgs(int64(3), "").
		WillReturnRows(pgxmock.NewRows(todoCols).
			AddRow(int64(1), int64(3), "first", (*string)(nil), "pending", t1, t1).
			AddRow(int64(2), int64(3), "second", (*string)(nil), "completed", t2, t2))

	list, err := repo.List(context.Background(), 3, dom.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Title)
	assert.Equal(t, "second", list[1].Title)

	mock.ExpectQuery(`FROM todos`).
		WithArgs(int64(3), "completed").
		WillReturnRows(pgxmock.NewRows(todoCols))

	list, err = repo.List(context.Background(), 3, dom.ListFilter{Status: dom.StatusCompleted})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTodoRepo_Update(t *testing.T) {
	repo, mock := newTodoRepoWithMock(t)
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE todos SET title = $3, description = $4, status = $5, updated_at = $6`)).
		WithArgs(int64(11), int64(3), "Buy milk", (*string)(nil), "completed", updated).
		WillReturnRows(pgxmock.NewRows(todoCols).
			AddRow(int64(11), int64(3), "Buy milk", (*string)(nil), "completed", created, updated))

	got, err := repo.Update(context.Background(), dom.Todo{
		ID: 11, UserID: 3, Title: "Buy milk", Status: dom.StatusCompleted, CreatedAt: created, UpdatedAt: updated,
	})
	require.NoError(t, err)
	assert.Equal(t, updated, got.UpdatedAt)
	assert.Equal(t, created, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGTodoRepo_Delete(t *testing.T) {
	repo, mock := newTodoRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM todos`).
		WithArgs(int64(11), int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Delete(context.Background(), 3, 11))

	mock.ExpectExec(`DELETE FROM todos`).
		WithArgs(int64(11), int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4, 11), pgx.ErrNoRows)

	require.NoError(t, mock.ExpectationsWereMet())
}
