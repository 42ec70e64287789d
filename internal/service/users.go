package service

import (
	"context"
	"fmt"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/repository"
)

// UserService exposes profiles and subscriptions.
type UserService interface {
	// List returns a page of users with the viewer's subscription flags.
	List(ctx context.Context, viewer model.Viewer, page model.Page) ([]model.Profile, int, error)
	// Get returns one user as seen by the viewer.
	Get(ctx context.Context, viewer model.Viewer, id int64) (*model.Profile, error)
	// Me returns the viewer's own profile.
	Me(ctx context.Context, viewer model.Viewer) (*model.Profile, error)
	// Subscribe follows an author and returns it with up to recipesLimit recipes.
	Subscribe(ctx context.Context, viewer model.Viewer, authorID int64, recipesLimit int) (*model.Author, error)
	// Unsubscribe removes a follow edge.
	Unsubscribe(ctx context.Context, viewer model.Viewer, authorID int64) error
	// Subscriptions returns a page of followed authors with their recipes.
	Subscriptions(ctx context.Context, viewer model.Viewer, page model.Page, recipesLimit int) ([]model.Author, int, error)
}

type UserServiceImpl struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	recipes repository.RecipeRepository
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService constructs UserService.
func NewUserService(users repository.UserRepository, follows repository.FollowRepository, recipes repository.RecipeRepository) *UserServiceImpl {
	return &UserServiceImpl{users: users, follows: follows, recipes: recipes}
}

func (s *UserServiceImpl) List(ctx context.Context, viewer model.Viewer, page model.Page) ([]model.Profile, int, error) {
	return s.users.List(ctx, viewer.ID, page)
}

func (s *UserServiceImpl) Get(ctx context.Context, viewer model.Viewer, id int64) (*model.Profile, error) {
	return s.users.Profile(ctx, viewer.ID, id)
}

func (s *UserServiceImpl) Me(ctx context.Context, viewer model.Viewer) (*model.Profile, error) {
	if !viewer.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	return s.users.Profile(ctx, viewer.ID, viewer.ID)
}

// Subscribe inserts the follow edge directly; duplicates and unknown authors are
// reported by the store.
func (s *UserServiceImpl) Subscribe(ctx context.Context, viewer model.Viewer, authorID int64, recipesLimit int) (*model.Author, error) {
	if !viewer.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	if viewer.ID == authorID {
		return nil, errs.ErrSelfFollow
	}
	if err := s.follows.Create(ctx, viewer.ID, authorID); err != nil {
		return nil, err
	}
	p, err := s.users.Profile(ctx, viewer.ID, authorID)
	if err != nil {
		return nil, err
	}
	authors, err := s.withRecipes(ctx, []model.Profile{*p}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &authors[0], nil
}

func (s *UserServiceImpl) Unsubscribe(ctx context.Context, viewer model.Viewer, authorID int64) error {
	if !viewer.Authenticated() {
		return errs.ErrUnauthorized
	}
	return s.follows.Delete(ctx, viewer.ID, authorID)
}

func (s *UserServiceImpl) Subscriptions(ctx context.Context, viewer model.Viewer, page model.Page, recipesLimit int) ([]model.Author, int, error) {
	if !viewer.Authenticated() {
		return nil, 0, errs.ErrUnauthorized
	}
	profiles, total, err := s.follows.ListAuthors(ctx, viewer.ID, page)
	if err != nil {
		return nil, 0, err
	}
	authors, err := s.withRecipes(ctx, profiles, recipesLimit)
	return authors, total, err
}

// withRecipes attaches recipe previews and counts to profiles, keeping their order.
func (s *UserServiceImpl) withRecipes(ctx context.Context, profiles []model.Profile, limit int) ([]model.Author, error) {
	out := make([]model.Author, len(profiles))
	if len(profiles) == 0 {
		return out, nil
	}
	ids := make([]int64, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	recipes, counts, err := s.recipes.ShortByAuthors(ctx, ids, limit)
	if err != nil {
		return nil, fmt.Errorf("author recipes: %w", err)
	}
	for i, p := range profiles {
		rs := recipes[p.ID]
		if rs == nil {
			rs = []model.RecipeShort{}
		}
		out[i] = model.Author{Profile: p, Recipes: rs, RecipesCount: counts[p.ID]}
	}
	return out, nil
}
