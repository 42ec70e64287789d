package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
)

func TestRenderShoppingList(t *testing.T) {
	date := time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)
	// Flour from two recipes (200 g + 300 g) arrives already summed.
	lines := []model.ShoppingLine{
		{Name: "Flour", Amount: 500, Unit: "g"},
		{Name: "Milk", Amount: 1, Unit: "l"},
	}
	want := "Shopping list for alice\n" +
		"Date: 2024-03-08\n" +
		"\n" +
		"- Flour - 500 g\n" +
		"- Milk - 1 l\n"
	assert.Equal(t, want, string(RenderShoppingList("alice", date, lines)))
}

func TestShoppingService_Download(t *testing.T) {
	users := newFakeUsers(&model.User{ID: 1, Email: "a@example.com", Username: "alice"})
	repo := &fakeShopping{}
	s := NewShoppingService(repo, users)
	s.now = func() time.Time { return time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	me := model.Viewer{ID: 1}

	_, err := s.Download(ctx, model.Anonymous)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = s.Download(ctx, me)
	require.ErrorIs(t, err, errs.ErrEmptyCart)

	repo.lines = []model.ShoppingLine{{Name: "Flour", Amount: 500, Unit: "g"}, {Name: "Milk", Amount: 1, Unit: "l"}}
	list, err := s.Download(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, "alice_shopping_list.txt", list.Filename)
	assert.Contains(t, string(list.Body), "Date: 2024-03-08")
	assert.Contains(t, string(list.Body), "- Flour - 500 g\n- Milk - 1 l\n")

	repo.err = errors.New("db down")
	_, err = s.Download(ctx, me)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errs.ErrEmptyCart)
}
