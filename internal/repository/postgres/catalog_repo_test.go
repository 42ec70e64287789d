package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
)

func TestCatalogRepo_Tags(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCatalogRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(q("SELECT id, name, color, slug FROM tags ORDER BY name")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "color", "slug"}).
			AddRow(int64(1), "Breakfast", "#E26C2D", "breakfast").
			AddRow(int64(2), "Dinner", "#49B64E", "dinner"))
	tags, err := r.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	mock.ExpectQuery(q("SELECT id, name, color, slug FROM tags WHERE id=$1")).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetTag(ctx, 9)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCatalogRepo_ListIngredients_EscapesPrefix(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCatalogRepo(db)

	mock.ExpectQuery(q("WHERE lower(name) LIKE $1")).
		WithArgs(`sa\%%`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "measurement_unit"}))
	out, err := r.ListIngredients(context.Background(), "Sa%")
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestCatalogRepo_GetIngredient(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCatalogRepo(db)

	mock.ExpectQuery(q("SELECT id, name, measurement_unit FROM ingredients WHERE id=$1")).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "measurement_unit"}).AddRow(int64(3), "salt", "g"))
	in, err := r.GetIngredient(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, model.Ingredient{ID: 3, Name: "salt", MeasurementUnit: "g"}, *in)
}

func TestCatalogRepo_ImportIngredients_CountsInserted(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCatalogRepo(db)
	items := []model.Ingredient{{Name: "salt", MeasurementUnit: "g"}, {Name: "egg", MeasurementUnit: "pcs"}}

	mock.ExpectBegin()
	mock.ExpectExec(q("ON CONFLICT (name, measurement_unit) DO NOTHING")).
		WithArgs("salt", "g").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(q("ON CONFLICT (name, measurement_unit) DO NOTHING")).
		WithArgs("egg", "pcs").WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectCommit()

	n, err := r.ImportIngredients(context.Background(), items)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_ImportTags_BadColorRollsBack(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCatalogRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO tags (name, color, slug)")).
		WithArgs("Lunch", "red", "lunch").
		WillReturnError(&pgconn.PgError{Code: codeCheckViolation, ConstraintName: "tag_color_hex"})
	mock.ExpectRollback()

	_, err := r.ImportTags(context.Background(), []model.Tag{{Name: "Lunch", Color: "red", Slug: "lunch"}})
	require.ErrorIs(t, err, errs.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_ImportTags_CommitErr(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCatalogRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO tags")).
		WithArgs("Lunch", "#FFF", "lunch").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit-fail"))

	_, err := r.ImportTags(context.Background(), []model.Tag{{Name: "Lunch", Color: "#FFF", Slug: "lunch"}})
	require.Error(t, err)
}

func TestLikePrefix(t *testing.T) {
	require.Equal(t, "sal%", likePrefix("Sal"))
	require.Equal(t, `a\_b\\%`, likePrefix(`A_b\`))
	require.Equal(t, "%", likePrefix(""))
}

func TestTranslate(t *testing.T) {
	require.NoError(t, translate(nil, "x"))
	require.ErrorIs(t, translate(pgx.ErrNoRows, "x"), errs.ErrNotFound)
	require.ErrorIs(t, translate(&pgconn.PgError{Code: codeUniqueViolation}, "x"), errs.ErrAlreadyExists)
	require.ErrorIs(t, translate(&pgconn.PgError{Code: codeForeignKeyViolation}, "x"), errs.ErrNotFound)

	err := translate(&pgconn.PgError{Code: codeCheckViolation, ConstraintName: "recipe_cooking_time_range"}, "recipe")
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "recipe_cooking_time_range", ve.Field)

	plain := errors.New("boom")
	require.Equal(t, plain, translate(plain, "x"))
}
