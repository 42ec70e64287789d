package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/repository"
	"github.com/and161185/foodgram/internal/validation"
)

// CatalogService serves tags and ingredients and bulk-loads them for admins.
type CatalogService interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTag(ctx context.Context, id int64) (*model.Tag, error)
	// ListIngredients filters by a case-insensitive name prefix; empty returns all.
	ListIngredients(ctx context.Context, namePrefix string) ([]model.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error)
	// ImportIngredients validates every entry, then inserts the new ones and returns their count.
	ImportIngredients(ctx context.Context, items []model.Ingredient) (int, error)
	// ImportTags validates every entry, then inserts the new ones and returns their count.
	ImportTags(ctx context.Context, items []model.Tag) (int, error)
}

type CatalogServiceImpl struct {
	repo repository.CatalogRepository
}

var _ CatalogService = (*CatalogServiceImpl)(nil)

// NewCatalogService constructs CatalogService.
func NewCatalogService(repo repository.CatalogRepository) *CatalogServiceImpl {
	return &CatalogServiceImpl{repo: repo}
}

func (s *CatalogServiceImpl) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.repo.ListTags(ctx)
}

func (s *CatalogServiceImpl) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	return s.repo.GetTag(ctx, id)
}

func (s *CatalogServiceImpl) ListIngredients(ctx context.Context, namePrefix string) ([]model.Ingredient, error) {
	return s.repo.ListIngredients(ctx, strings.TrimSpace(namePrefix))
}

func (s *CatalogServiceImpl) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	return s.repo.GetIngredient(ctx, id)
}

func (s *CatalogServiceImpl) ImportIngredients(ctx context.Context, items []model.Ingredient) (int, error) {
	for i := range items {
		items[i].Name = strings.TrimSpace(items[i].Name)
		items[i].MeasurementUnit = strings.TrimSpace(items[i].MeasurementUnit)
		if err := validation.Struct(items[i]); err != nil {
			return 0, fmt.Errorf("ingredient #%d: %w", i+1, err)
		}
	}
	if len(items) == 0 {
		return 0, nil
	}
	return s.repo.ImportIngredients(ctx, items)
}

func (s *CatalogServiceImpl) ImportTags(ctx context.Context, items []model.Tag) (int, error) {
	for i := range items {
		items[i].Name = strings.TrimSpace(items[i].Name)
		items[i].Slug = strings.TrimSpace(items[i].Slug)
		items[i].Color = strings.ToUpper(strings.TrimSpace(items[i].Color))
		if err := validation.Struct(items[i]); err != nil {
			return 0, fmt.Errorf("tag #%d: %w", i+1, err)
		}
	}
	if len(items) == 0 {
		return 0, nil
	}
	return s.repo.ImportTags(ctx, items)
}
