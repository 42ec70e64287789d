package repository

import (
	"context"

	"github.com/and161185/foodgram/internal/model"
)

// RecipeRepository stores recipes together with their tag and ingredient sets.
type RecipeRepository interface {
	// Create writes the recipe, its tags and ingredient amounts atomically.
	Create(ctx context.Context, authorID int64, in model.RecipeInput) (int64, error)
	// Update rewrites the recipe and replaces its tag and ingredient sets atomically.
	// It returns the previous image key.
	Update(ctx context.Context, id int64, in model.RecipeInput) (string, error)
	// Delete removes the recipe and returns its image key.
	Delete(ctx context.Context, id int64) (string, error)
	// AuthorOf returns the author ID of a recipe.
	AuthorOf(ctx context.Context, id int64) (int64, error)
	// Get returns the read model of a recipe for viewerID.
	Get(ctx context.Context, viewerID, id int64) (*model.Recipe, error)
	// List returns recipes matching f, newest first, and the total count.
	List(ctx context.Context, viewerID int64, f model.RecipeFilter, page model.Page) ([]model.Recipe, int, error)
	// Short returns the compact form of a recipe.
	Short(ctx context.Context, id int64) (*model.RecipeShort, error)
	// ShortByAuthors returns up to limit newest recipes per author (limit <= 0: all)
	// and the total recipe count per author.
	ShortByAuthors(ctx context.Context, authorIDs []int64, limit int) (map[int64][]model.RecipeShort, map[int64]int, error)
}

// MarkRepository manages favorites and shopping cart entries.
type MarkRepository interface {
	// Add stores a mark; duplicates yield errs.ErrAlreadyExists, unknown recipes errs.ErrNotFound.
	Add(ctx context.Context, kind model.MarkKind, userID, recipeID int64) error
	// Remove deletes a mark or returns errs.ErrNotFound.
	Remove(ctx context.Context, kind model.MarkKind, userID, recipeID int64) error
}

// ShoppingRepository aggregates ingredients of the recipes in a user's cart.
type ShoppingRepository interface {
	// ShoppingList sums amounts per (ingredient name, unit), ordered by name.
	ShoppingList(ctx context.Context, userID int64) ([]model.ShoppingLine, error)
}
