package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/metrics"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/repository"
	"github.com/and161185/foodgram/internal/storage"
	"github.com/and161185/foodgram/internal/validation"
)

// RecipeService defines recipe writes with ownership checks and filtered reads.
type RecipeService interface {
	// Create validates the input, stores its image and writes the recipe atomically.
	Create(ctx context.Context, viewer model.Viewer, in model.RecipeInput) (*model.Recipe, error)
	// Update replaces the recipe and its tag and ingredient sets. Author or staff only.
	Update(ctx context.Context, viewer model.Viewer, id int64, in model.RecipeInput) (*model.Recipe, error)
	// Delete removes the recipe and its image. Author or staff only.
	Delete(ctx context.Context, viewer model.Viewer, id int64) error
	Get(ctx context.Context, viewer model.Viewer, id int64) (*model.Recipe, error)
	List(ctx context.Context, viewer model.Viewer, f model.RecipeFilter, page model.Page) ([]model.Recipe, int, error)
}

type RecipeServiceImpl struct {
	recipes repository.RecipeRepository
	images  storage.ImageStore
	log     *zap.Logger
}

var _ RecipeService = (*RecipeServiceImpl)(nil)

// NewRecipeService constructs RecipeService.
func NewRecipeService(recipes repository.RecipeRepository, images storage.ImageStore, log *zap.Logger) *RecipeServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecipeServiceImpl{recipes: recipes, images: images, log: log}
}

// ValidateRecipeInput checks the write rules in order and returns the first failure:
//  1. at least one tag
//  2. tags are distinct
//  3. at least one ingredient
//  4. ingredients are distinct
//  5. every amount >= 1
//  6. cooking time >= 1
func ValidateRecipeInput(in model.RecipeInput) error {
	if len(in.TagIDs) == 0 {
		return errs.Invalid("tags", "at least one tag is required")
	}
	seenTags := make(map[int64]struct{}, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if _, dup := seenTags[id]; dup {
			return errs.Invalid("tags", fmt.Sprintf("tag %d is listed twice", id))
		}
		seenTags[id] = struct{}{}
	}
	if len(in.Ingredients) == 0 {
		return errs.Invalid("ingredients", "at least one ingredient is required")
	}
	seenIngredients := make(map[int64]struct{}, len(in.Ingredients))
	for _, a := range in.Ingredients {
		if _, dup := seenIngredients[a.IngredientID]; dup {
			return errs.Invalid("ingredients", fmt.Sprintf("ingredient %d is listed twice", a.IngredientID))
		}
		seenIngredients[a.IngredientID] = struct{}{}
	}
	for _, a := range in.Ingredients {
		if a.Amount < 1 {
			return errs.Invalid("ingredients", fmt.Sprintf("amount of ingredient %d must be at least 1", a.IngredientID))
		}
	}
	if in.CookingTime < 1 {
		return errs.Invalid("cooking_time", "cooking time must be at least 1 minute")
	}
	return nil
}

func validateRecipe(in model.RecipeInput, imageRequired bool) error {
	if err := ValidateRecipeInput(in); err != nil {
		return err
	}
	if err := validation.Struct(in); err != nil {
		return err
	}
	if imageRequired && in.Image == "" {
		return errs.Invalid("image", "this field is required")
	}
	return nil
}

var (
	truthy = map[string]bool{"1": true, "true": true, "t": true, "yes": true, "y": true, "on": true}
	falsy  = map[string]bool{"0": true, "false": true, "f": true, "no": true, "n": true, "off": true}
)

func parseFlag(v url.Values, key string) *bool {
	if !v.Has(key) {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(v.Get(key)))
	var b bool
	switch {
	case truthy[s]:
		b = true
	case falsy[s]:
		b = false
	default:
		return nil
	}
	return &b
}

// ParseRecipeFilter reads is_favorited, is_in_shopping_cart, author and tags from
// query parameters. Unrecognized flag values count as absent; an author that is not
// an integer matches nothing.
func ParseRecipeFilter(v url.Values) model.RecipeFilter {
	f := model.RecipeFilter{
		IsFavorited:      parseFlag(v, "is_favorited"),
		IsInShoppingCart: parseFlag(v, "is_in_shopping_cart"),
	}
	if s := strings.TrimSpace(v.Get("author")); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			f.MatchNone = true
		} else {
			f.AuthorID = &id
		}
	}
	seen := map[string]struct{}{}
	for _, raw := range v["tags"] {
		for _, slug := range strings.Split(raw, ",") {
			slug = strings.TrimSpace(slug)
			if slug == "" {
				continue
			}
			if _, ok := seen[slug]; ok {
				continue
			}
			seen[slug] = struct{}{}
			f.TagSlugs = append(f.TagSlugs, slug)
		}
	}
	return f
}

func (s *RecipeServiceImpl) Create(ctx context.Context, viewer model.Viewer, in model.RecipeInput) (*model.Recipe, error) {
	if !viewer.Authenticated() {
		return nil, errs.ErrUnauthorized
	}
	if err := validateRecipe(in, true); err != nil {
		return nil, err
	}
	key, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}
	in.Image = key
	id, err := s.recipes.Create(ctx, viewer.ID, in)
	if err != nil {
		s.dropImage(ctx, key)
		return nil, err
	}
	metrics.RecipeWrites.WithLabelValues("create").Inc()
	s.log.Debug("recipe created", zap.Int64("recipe_id", id), zap.Int64("author_id", viewer.ID))
	return s.recipes.Get(ctx, viewer.ID, id)
}

func (s *RecipeServiceImpl) Update(ctx context.Context, viewer model.Viewer, id int64, in model.RecipeInput) (*model.Recipe, error) {
	if err := s.authorize(ctx, viewer, id); err != nil {
		return nil, err
	}
	if err := validateRecipe(in, false); err != nil {
		return nil, err
	}
	var key string
	if in.Image != "" {
		var err error
		if key, err = s.saveImage(ctx, in.Image); err != nil {
			return nil, err
		}
	}
	in.Image = key
	old, err := s.recipes.Update(ctx, id, in)
	if err != nil {
		s.dropImage(ctx, key)
		return nil, err
	}
	if key != "" && old != key {
		s.dropImage(ctx, old)
	}
	metrics.RecipeWrites.WithLabelValues("update").Inc()
	return s.recipes.Get(ctx, viewer.ID, id)
}

func (s *RecipeServiceImpl) Delete(ctx context.Context, viewer model.Viewer, id int64) error {
	if err := s.authorize(ctx, viewer, id); err != nil {
		return err
	}
	key, err := s.recipes.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.dropImage(ctx, key)
	metrics.RecipeWrites.WithLabelValues("delete").Inc()
	return nil
}

func (s *RecipeServiceImpl) Get(ctx context.Context, viewer model.Viewer, id int64) (*model.Recipe, error) {
	return s.recipes.Get(ctx, viewer.ID, id)
}

func (s *RecipeServiceImpl) List(ctx context.Context, viewer model.Viewer, f model.RecipeFilter, page model.Page) ([]model.Recipe, int, error) {
	return s.recipes.List(ctx, viewer.ID, f, page)
}

// authorize lets the author and staff users modify a recipe.
func (s *RecipeServiceImpl) authorize(ctx context.Context, viewer model.Viewer, id int64) error {
	if !viewer.Authenticated() {
		return errs.ErrUnauthorized
	}
	author, err := s.recipes.AuthorOf(ctx, id)
	if err != nil {
		return err
	}
	if author != viewer.ID && !viewer.IsStaff {
		return fmt.Errorf("only the author can change this recipe: %w", errs.ErrForbidden)
	}
	return nil
}

func (s *RecipeServiceImpl) saveImage(ctx context.Context, dataURI string) (string, error) {
	img, err := storage.DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	key, err := storage.NewKey("recipes", img.Ext)
	if err != nil {
		return "", err
	}
	if err := s.images.Save(ctx, key, img.Data, img.ContentType); err != nil {
		metrics.ImageStoreErrors.WithLabelValues("save").Inc()
		return "", fmt.Errorf("save image: %w", err)
	}
	return key, nil
}

// dropImage removes an object best-effort; failures are logged and counted.
func (s *RecipeServiceImpl) dropImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		metrics.ImageStoreErrors.WithLabelValues("delete").Inc()
		s.log.Warn("delete image", zap.String("key", key), zap.Error(err))
	}
}
