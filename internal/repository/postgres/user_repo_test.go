package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
)

var userCols = []string{"id", "email", "username", "first_name", "last_name", "password_hash", "is_staff", "created_at"}

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	now := time.Now()
	u := &model.User{Email: "a@b.c", Username: "ann", FirstName: "Ann", LastName: "Lee", PasswordHash: "h"}

	mock.ExpectQuery(q("INSERT INTO users (email, username, first_name, last_name, password_hash, is_staff)")).
		WithArgs(u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash, false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	require.NoError(t, r.Create(ctx, u))
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, now, u.CreatedAt)

	mock.ExpectQuery(q("INSERT INTO users")).
		WithArgs(u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash, false).
		WillReturnError(&pgconn.PgError{Code: codeUniqueViolation})
	err := r.Create(ctx, u)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(q("FROM users WHERE email=$1")).
		WithArgs("a@b.c").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(3), "a@b.c", "ann", "Ann", "Lee", "h", true, time.Now()))
	u, err := r.GetByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	require.Equal(t, int64(3), u.ID)
	require.True(t, u.IsStaff)

	mock.ExpectQuery(q("FROM users WHERE email=$1")).
		WithArgs("x@b.c").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "x@b.c")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_GetByID_Canceled(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	mock.ExpectQuery(q("FROM users WHERE id=$1")).
		WithArgs(int64(3)).
		WillReturnError(context.Canceled)
	_, err := r.GetByID(context.Background(), 3)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_UpdatePassword(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	mock.ExpectExec(q("UPDATE users SET password_hash=$2 WHERE id=$1")).
		WithArgs(int64(3), "h2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.UpdatePassword(ctx, 3, "h2"))

	mock.ExpectExec(q("UPDATE users SET password_hash=$2 WHERE id=$1")).
		WithArgs(int64(4), "h2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.UpdatePassword(ctx, 4, "h2"), errs.ErrNotFound)
}

func TestUserRepo_SetStaff_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)

	mock.ExpectExec(q("UPDATE users SET is_staff=$2 WHERE email=$1")).
		WithArgs("nobody@b.c", true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.SetStaff(context.Background(), "nobody@b.c", true), errs.ErrNotFound)
}

func TestUserRepo_Profile_and_List(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	cols := []string{"id", "email", "username", "first_name", "last_name", "is_subscribed"}

	mock.ExpectQuery(q("WHERE u.id=$2")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(2), "b@b.c", "bob", "Bob", "B", true))
	p, err := r.Profile(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, p.IsSubscribed)
	require.Equal(t, "bob", p.Username)

	mock.ExpectQuery(q("SELECT count(*) FROM users")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(q("ORDER BY u.username")).
		WithArgs(int64(0), 6, 0).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(1), "a@b.c", "ann", "", "", false).
			AddRow(int64(2), "b@b.c", "bob", "", "", false))
	list, total, err := r.List(ctx, 0, model.Page{Number: 1, Limit: 6})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, list, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepo_Create_Errors(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFollowRepo(db)
	ctx := context.Background()
	ins := q("INSERT INTO follows (user_id, author_id) VALUES ($1, $2)")

	mock.ExpectExec(ins).WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, 1, 2))

	mock.ExpectExec(ins).WithArgs(int64(1), int64(2)).
		WillReturnError(&pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "unique_follow"})
	require.ErrorIs(t, r.Create(ctx, 1, 2), errs.ErrAlreadyExists)

	mock.ExpectExec(ins).WithArgs(int64(1), int64(1)).
		WillReturnError(&pgconn.PgError{Code: codeCheckViolation, ConstraintName: "no_self_follow"})
	require.ErrorIs(t, r.Create(ctx, 1, 1), errs.ErrSelfFollow)

	mock.ExpectExec(ins).WithArgs(int64(1), int64(99)).
		WillReturnError(&pgconn.PgError{Code: codeForeignKeyViolation})
	require.ErrorIs(t, r.Create(ctx, 1, 99), errs.ErrNotFound)
}

func TestFollowRepo_Delete_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFollowRepo(db)

	mock.ExpectExec(q("DELETE FROM follows WHERE user_id=$1 AND author_id=$2")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(context.Background(), 1, 2), errs.ErrNotFound)
}

func TestFollowRepo_ListAuthors(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewFollowRepo(db)

	mock.ExpectQuery(q("SELECT count(*) FROM follows WHERE user_id=$1")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(q("ORDER BY f.created_at DESC, f.id DESC")).
		WithArgs(int64(1), 6, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "first_name", "last_name", "is_subscribed"}).
			AddRow(int64(2), "b@b.c", "bob", "", "", true))

	list, total, err := r.ListAuthors(context.Background(), 1, model.Page{Number: 1, Limit: 6})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, list, 1)
	require.True(t, list[0].IsSubscribed)
}
