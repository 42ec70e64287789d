package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
)

func TestMarkService(t *testing.T) {
	recipes := newFakeRecipes()
	id, err := recipes.Create(context.Background(), 2, model.RecipeInput{Name: "Soup", Image: "recipes/s.png", CookingTime: 30})
	require.NoError(t, err)
	marks := &fakeMarks{recipe: map[int64]bool{id: true}}
	s := NewMarkService(marks, recipes)
	ctx := context.Background()
	me := model.Viewer{ID: 1}

	for _, kind := range []model.MarkKind{model.MarkFavorite, model.MarkCart} {
		t.Run(kind.String(), func(t *testing.T) {
			short, err := s.Add(ctx, kind, me, id)
			require.NoError(t, err)
			assert.Equal(t, model.RecipeShort{ID: id, Name: "Soup", Image: "recipes/s.png", CookingTime: 30}, *short)

			_, err = s.Add(ctx, kind, me, id)
			require.ErrorIs(t, err, errs.ErrAlreadyExists)

			_, err = s.Add(ctx, kind, me, 404)
			require.ErrorIs(t, err, errs.ErrNotFound)

			require.NoError(t, s.Remove(ctx, kind, me, id))
			require.ErrorIs(t, s.Remove(ctx, kind, me, id), errs.ErrNotFound)

			_, err = s.Add(ctx, kind, model.Anonymous, id)
			require.ErrorIs(t, err, errs.ErrUnauthorized)
			require.ErrorIs(t, s.Remove(ctx, kind, model.Anonymous, id), errs.ErrUnauthorized)
		})
	}
}
