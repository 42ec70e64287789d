// Package model defines domain entities used by services and repositories.
package model

import "time"

// Tokens collects an issued access token.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// Viewer is the identity a request is served for. ID 0 means anonymous.
type Viewer struct {
	ID      int64
	IsStaff bool
}

// Anonymous is the viewer of unauthenticated requests.
var Anonymous = Viewer{}

// Authenticated reports whether the viewer is a known user.
func (v Viewer) Authenticated() bool { return v.ID > 0 }

// User represents an account. The password is stored as an encoded argon2id hash.
type User struct {
	ID           int64
	Email        string // unique
	Username     string // unique
	FirstName    string
	LastName     string
	PasswordHash string
	IsStaff      bool
	CreatedAt    time.Time
}

// Registration is a sign-up request.
type Registration struct {
	Email     string `validate:"required,email,max=254"`
	Username  string `validate:"required,max=150,username"`
	FirstName string `validate:"required,max=150"`
	LastName  string `validate:"required,max=150"`
	Password  string `validate:"required,min=8,max=128"`
}

// Profile is a user as seen by a viewer.
type Profile struct {
	User
	IsSubscribed bool
}

// Author is a followed profile together with a preview of its recipes.
type Author struct {
	Profile
	Recipes      []RecipeShort
	RecipesCount int
}

// Tag is a recipe category. Color is a #RRGGBB or #RGB hex code.
type Tag struct {
	ID    int64
	Name  string `validate:"required,max=200"`
	Color string `validate:"required,color"`
	Slug  string `validate:"required,max=200,slug"`
}

// Ingredient is a catalog entry; (Name, MeasurementUnit) is unique.
type Ingredient struct {
	ID              int64
	Name            string `validate:"required,max=200"`
	MeasurementUnit string `validate:"required,max=200"`
}

// IngredientAmount is an ingredient used by a recipe with its quantity.
type IngredientAmount struct {
	Ingredient
	Amount int
}

// Recipe is the full read model of a recipe for a given viewer.
type Recipe struct {
	ID               int64
	Author           Profile
	Name             string
	Image            string // storage key
	Text             string
	CookingTime      int
	CreatedAt        time.Time
	Tags             []Tag
	Ingredients      []IngredientAmount
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeShort is the compact recipe form used by favorites, cart and subscriptions.
type RecipeShort struct {
	ID          int64
	Name        string
	Image       string
	CookingTime int
}

// AmountInput references a catalog ingredient with a quantity.
type AmountInput struct {
	IngredientID int64
	Amount       int
}

// RecipeInput is a proposed recipe creation or update.
type RecipeInput struct {
	Name string `validate:"required,max=200"`
	Text string `validate:"required"`
	// Image is a base64 data URI when submitted and the storage key once saved.
	// Empty on update keeps the current image.
	Image       string
	CookingTime int
	TagIDs      []int64
	Ingredients []AmountInput
}

// RecipeFilter holds optional list criteria; nil pointers mean "absent".
type RecipeFilter struct {
	IsFavorited      *bool
	IsInShoppingCart *bool
	AuthorID         *int64
	TagSlugs         []string
	MatchNone        bool // set for unsatisfiable criteria such as a malformed author id
}

// Page selects a window of a list.
type Page struct {
	Number int // 1-based
	Limit  int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// MarkKind selects the per-user recipe list a mark belongs to.
type MarkKind int

// Mark kinds.
const (
	MarkFavorite MarkKind = iota + 1
	MarkCart
)

func (k MarkKind) String() string {
	switch k {
	case MarkFavorite:
		return "favorites"
	case MarkCart:
		return "shopping cart"
	default:
		return "unknown"
	}
}

// ShoppingLine is one aggregated entry of a shopping list.
type ShoppingLine struct {
	Name   string
	Amount int64
	Unit   string
}
