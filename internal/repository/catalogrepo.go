package repository

import (
	"context"

	"github.com/and161185/foodgram/internal/model"
)

// CatalogRepository provides tags and ingredients.
type CatalogRepository interface {
	// ListTags returns all tags ordered by name.
	ListTags(ctx context.Context) ([]model.Tag, error)
	// GetTag loads a tag by ID.
	GetTag(ctx context.Context, id int64) (*model.Tag, error)
	// ListIngredients returns ingredients whose name starts with prefix (case-insensitive).
	ListIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error)
	// GetIngredient loads an ingredient by ID.
	GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error)
	// ImportIngredients inserts ingredients, skipping existing (name, unit) pairs.
	ImportIngredients(ctx context.Context, items []model.Ingredient) (int, error)
	// ImportTags inserts tags, skipping ones that clash with existing names, colors or slugs.
	ImportTags(ctx context.Context, items []model.Tag) (int, error)
}
