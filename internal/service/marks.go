package service

import (
	"context"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/repository"
)

// MarkService adds recipes to and removes them from favorites and the cart.
type MarkService interface {
	// Add marks a recipe and returns its short form.
	Add(ctx context.Context, kind model.MarkKind, viewer model.Viewer, recipeID int64) (*model.RecipeShort, error)
	Remove(ctx context.Context, kind model.MarkKind, viewer model.Viewer, recipeID int64) error
}

type MarkServiceImpl struct {
	marks   repository.MarkRepository
	recipes repository.RecipeRepository
}

var _ MarkService = (*MarkServiceImpl)(nil)

// NewMarkService constructs MarkService.
func NewMarkService(marks repository.MarkRepository, recipes repository.RecipeRepository) *MarkServiceImpl {
	return &MarkServiceImpl{marks: marks, recipes: recipes}
}

// Add inserts without a pre-check; the unique constraint reports duplicates.
func (s *MarkServiceImpl) Add(ctx context.Context, kind model.MarkKind, viewer model.Viewer, recipeID int64) (*model.RecipeShort, error) {
	if !viewer.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	if err := s.marks.Add(ctx, kind, viewer.ID, recipeID); err != nil {
		return nil, err
	}
	return s.recipes.Short(ctx, recipeID)
}

func (s *MarkServiceImpl) Remove(ctx context.Context, kind model.MarkKind, viewer model.Viewer, recipeID int64) error {
	if !viewer.Authenticated() {
		return errs.ErrUnauthorized
	}
	return s.marks.Remove(ctx, kind, viewer.ID, recipeID)
}
