// Package convert maps domain models to the JSON representations of the REST API
// and back. Read (To*) and write (From*) directions are separate functions.
package convert

import (
	"strings"

	"github.com/and161185/foodgram/internal/model"
)

// URLFunc resolves a stored image key to its public address.
type URLFunc func(key string) string

// --- read representations (server -> client) ---

// UserDTO is a user as seen by the viewer.
type UserDTO struct {
	Email        string `json:"email"`
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// CreatedUserDTO answers a registration; it carries no subscription flag.
type CreatedUserDTO struct {
	Email     string `json:"email"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type TagDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type IngredientDTO struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// IngredientAmountDTO is an ingredient of a recipe with its quantity.
type IngredientAmountDTO struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeDTO struct {
	ID               int64                 `json:"id"`
	Tags             []TagDTO              `json:"tags"`
	Author           UserDTO               `json:"author"`
	Ingredients      []IngredientAmountDTO `json:"ingredients"`
	IsFavorited      bool                  `json:"is_favorited"`
	IsInShoppingCart bool                  `json:"is_in_shopping_cart"`
	Name             string                `json:"name"`
	Image            string                `json:"image"`
	Text             string                `json:"text"`
	CookingTime      int                   `json:"cooking_time"`
}

// RecipeShortDTO is used by favorites, the cart and subscriptions.
type RecipeShortDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// AuthorDTO is a followed user with a preview of their recipes.
type AuthorDTO struct {
	UserDTO
	Recipes      []RecipeShortDTO `json:"recipes"`
	RecipesCount int              `json:"recipes_count"`
}

// TokenDTO answers a login.
type TokenDTO struct {
	AuthToken string `json:"auth_token"`
}

// PageDTO is a page of results with links to its neighbours.
type PageDTO[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func ToUser(p model.Profile) UserDTO {
	return UserDTO{
		Email:        p.Email,
		ID:           p.ID,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		IsSubscribed: p.IsSubscribed,
	}
}

func ToUsers(ps []model.Profile) []UserDTO {
	out := make([]UserDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, ToUser(p))
	}
	return out
}

func ToCreatedUser(u model.User) CreatedUserDTO {
	return CreatedUserDTO{Email: u.Email, ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

func ToTag(t model.Tag) TagDTO {
	return TagDTO{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func ToTags(ts []model.Tag) []TagDTO {
	out := make([]TagDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, ToTag(t))
	}
	return out
}

func ToIngredient(i model.Ingredient) IngredientDTO {
	return IngredientDTO{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func ToIngredients(is []model.Ingredient) []IngredientDTO {
	out := make([]IngredientDTO, 0, len(is))
	for _, i := range is {
		out = append(out, ToIngredient(i))
	}
	return out
}

// ToRecipe builds the full read representation; image keys become URLs.
func ToRecipe(r model.Recipe, url URLFunc) RecipeDTO {
	ings := make([]IngredientAmountDTO, 0, len(r.Ingredients))
	for _, a := range r.Ingredients {
		ings = append(ings, IngredientAmountDTO{
			ID:              a.ID,
			Name:            a.Name,
			MeasurementUnit: a.MeasurementUnit,
			Amount:          a.Amount,
		})
	}
	return RecipeDTO{
		ID:               r.ID,
		Tags:             ToTags(r.Tags),
		Author:           ToUser(r.Author),
		Ingredients:      ings,
		IsFavorited:      r.IsFavorited,
		IsInShoppingCart: r.IsInShoppingCart,
		Name:             r.Name,
		Image:            imageURL(r.Image, url),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func ToRecipes(rs []model.Recipe, url URLFunc) []RecipeDTO {
	out := make([]RecipeDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToRecipe(r, url))
	}
	return out
}

func ToRecipeShort(r model.RecipeShort, url URLFunc) RecipeShortDTO {
	return RecipeShortDTO{ID: r.ID, Name: r.Name, Image: imageURL(r.Image, url), CookingTime: r.CookingTime}
}

func ToAuthor(a model.Author, url URLFunc) AuthorDTO {
	rs := make([]RecipeShortDTO, 0, len(a.Recipes))
	for _, r := range a.Recipes {
		rs = append(rs, ToRecipeShort(r, url))
	}
	return AuthorDTO{UserDTO: ToUser(a.Profile), Recipes: rs, RecipesCount: a.RecipesCount}
}

func ToAuthors(as []model.Author, url URLFunc) []AuthorDTO {
	out := make([]AuthorDTO, 0, len(as))
	for _, a := range as {
		out = append(out, ToAuthor(a, url))
	}
	return out
}

func imageURL(key string, url URLFunc) string {
	if key == "" || url == nil {
		return key
	}
	return url(key)
}

// --- write representations (client -> server) ---

// AmountWriteDTO references a catalog ingredient by id.
type AmountWriteDTO struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// RecipeWriteDTO is the body of recipe create and update requests.
type RecipeWriteDTO struct {
	Ingredients []AmountWriteDTO `json:"ingredients"`
	Tags        []int64          `json:"tags"`
	Image       string           `json:"image"`
	Name        string           `json:"name"`
	Text        string           `json:"text"`
	CookingTime int              `json:"cooking_time"`
}

// UserCreateDTO is the registration body.
type UserCreateDTO struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// LoginDTO is the token login body.
type LoginDTO struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SetPasswordDTO is the password change body.
type SetPasswordDTO struct {
	NewPassword     string `json:"new_password"`
	CurrentPassword string `json:"current_password"`
}

// IngredientImportDTO is one entry of a JSON ingredient import file.
type IngredientImportDTO struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// TagImportDTO is one entry of a JSON tag import file.
type TagImportDTO struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

func FromRecipeWrite(in RecipeWriteDTO) model.RecipeInput {
	amounts := make([]model.AmountInput, 0, len(in.Ingredients))
	for _, a := range in.Ingredients {
		amounts = append(amounts, model.AmountInput{IngredientID: a.ID, Amount: a.Amount})
	}
	return model.RecipeInput{
		Name:        strings.TrimSpace(in.Name),
		Text:        in.Text,
		Image:       strings.TrimSpace(in.Image),
		CookingTime: in.CookingTime,
		TagIDs:      in.Tags,
		Ingredients: amounts,
	}
}

func FromUserCreate(in UserCreateDTO) model.Registration {
	return model.Registration{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  in.Password,
	}
}

func FromIngredientImports(in []IngredientImportDTO) []model.Ingredient {
	out := make([]model.Ingredient, 0, len(in))
	for _, i := range in {
		out = append(out, model.Ingredient{Name: i.Name, MeasurementUnit: i.MeasurementUnit})
	}
	return out
}

func FromTagImports(in []TagImportDTO) []model.Tag {
	out := make([]model.Tag, 0, len(in))
	for _, t := range in {
		out = append(out, model.Tag{Name: t.Name, Color: t.Color, Slug: t.Slug})
	}
	return out
}
