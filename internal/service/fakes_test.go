package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/limiter"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/repository"
	"github.com/and161185/foodgram/internal/storage"
)

type fakeUsers struct {
	byID   map[int64]*model.User
	nextID int64

	createErr error
	getErr    error

	following map[[2]int64]bool // (viewer, author) edges for Profile
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers(us ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: map[int64]*model.User{}, following: map[[2]int64]bool{}}
	for _, u := range us {
		f.byID[u.ID] = u
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, x := range f.byID {
		if x.Email == u.Email || x.Username == u.Username {
			return errs.ErrAlreadyExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cpy := *u
	f.byID[u.ID] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) SetStaff(_ context.Context, email string, staff bool) error {
	for _, u := range f.byID {
		if u.Email == email {
			u.IsStaff = staff
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeUsers) Profile(_ context.Context, viewerID, id int64) (*model.Profile, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &model.Profile{User: *u, IsSubscribed: f.following[[2]int64{viewerID, id}]}, nil
}

func (f *fakeUsers) List(_ context.Context, viewerID int64, _ model.Page) ([]model.Profile, int, error) {
	var out []model.Profile
	for id, u := range f.byID {
		out = append(out, model.Profile{User: *u, IsSubscribed: f.following[[2]int64{viewerID, id}]})
	}
	return out, len(out), nil
}

// fakeFollows shares its edge set with fakeUsers so profiles reflect subscriptions.
type fakeFollows struct {
	users *fakeUsers
}

var _ repository.FollowRepository = (*fakeFollows)(nil)

func (f *fakeFollows) Create(_ context.Context, userID, authorID int64) error {
	if userID == authorID {
		return errs.ErrSelfFollow
	}
	if _, ok := f.users.byID[authorID]; !ok {
		return errs.ErrNotFound
	}
	k := [2]int64{userID, authorID}
	if f.users.following[k] {
		return errs.ErrAlreadyExists
	}
	f.users.following[k] = true
	return nil
}

func (f *fakeFollows) Delete(_ context.Context, userID, authorID int64) error {
	k := [2]int64{userID, authorID}
	if !f.users.following[k] {
		return errs.ErrNotFound
	}
	delete(f.users.following, k)
	return nil
}

func (f *fakeFollows) ListAuthors(_ context.Context, userID int64, _ model.Page) ([]model.Profile, int, error) {
	var out []model.Profile
	for k := range f.users.following {
		if k[0] == userID {
			out = append(out, model.Profile{User: *f.users.byID[k[1]], IsSubscribed: true})
		}
	}
	return out, len(out), nil
}

func (f *fakeFollows) count() int { return len(f.users.following) }

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

type fakeTokens struct {
	revoked map[uuid.UUID]time.Time
	err     error
}

var _ repository.TokenRepository = (*fakeTokens)(nil)

func newFakeTokens() *fakeTokens { return &fakeTokens{revoked: map[uuid.UUID]time.Time{}} }

func (f *fakeTokens) Revoke(_ context.Context, jti uuid.UUID, expiresAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.revoked[jti] = expiresAt
	return nil
}

func (f *fakeTokens) IsRevoked(_ context.Context, jti uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[jti]
	return ok, nil
}

// fakeRecipes keeps recipes in memory with the same write semantics as the store.
type fakeRecipes struct {
	nextID  int64
	byID    map[int64]*model.Recipe
	authors map[int64]int64
	inputs  map[int64]model.RecipeInput

	createErr error
	updateErr error

	lastFilter model.RecipeFilter
	lastViewer int64

	shortByAuthors map[int64][]model.RecipeShort
	counts         map[int64]int
	lastLimit      int
}

var _ repository.RecipeRepository = (*fakeRecipes)(nil)

func newFakeRecipes() *fakeRecipes {
	return &fakeRecipes{
		byID:    map[int64]*model.Recipe{},
		authors: map[int64]int64{},
		inputs:  map[int64]model.RecipeInput{},
	}
}

func (f *fakeRecipes) Create(_ context.Context, authorID int64, in model.RecipeInput) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	id := f.nextID
	f.authors[id] = authorID
	f.inputs[id] = in
	f.byID[id] = &model.Recipe{ID: id, Author: model.Profile{User: model.User{ID: authorID}}, Name: in.Name, Image: in.Image, Text: in.Text, CookingTime: in.CookingTime}
	return id, nil
}

func (f *fakeRecipes) Update(_ context.Context, id int64, in model.RecipeInput) (string, error) {
	r, ok := f.byID[id]
	if !ok {
		return "", errs.ErrNotFound
	}
	if f.updateErr != nil {
		return "", f.updateErr
	}
	old := r.Image
	if in.Image == "" {
		in.Image = old
	}
	f.inputs[id] = in
	r.Name, r.Image, r.Text, r.CookingTime = in.Name, in.Image, in.Text, in.CookingTime
	return old, nil
}

func (f *fakeRecipes) Delete(_ context.Context, id int64) (string, error) {
	r, ok := f.byID[id]
	if !ok {
		return "", errs.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.authors, id)
	delete(f.inputs, id)
	return r.Image, nil
}

func (f *fakeRecipes) AuthorOf(_ context.Context, id int64) (int64, error) {
	a, ok := f.authors[id]
	if !ok {
		return 0, errs.ErrNotFound
	}
	return a, nil
}

func (f *fakeRecipes) Get(_ context.Context, viewerID, id int64) (*model.Recipe, error) {
	f.lastViewer = viewerID
	r, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (f *fakeRecipes) List(_ context.Context, viewerID int64, flt model.RecipeFilter, _ model.Page) ([]model.Recipe, int, error) {
	f.lastViewer, f.lastFilter = viewerID, flt
	var out []model.Recipe
	for _, r := range f.byID {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (f *fakeRecipes) Short(_ context.Context, id int64) (*model.RecipeShort, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &model.RecipeShort{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}, nil
}

func (f *fakeRecipes) ShortByAuthors(_ context.Context, _ []int64, limit int) (map[int64][]model.RecipeShort, map[int64]int, error) {
	f.lastLimit = limit
	return f.shortByAuthors, f.counts, nil
}

type fakeImages struct {
	saved     map[string][]byte
	saveErr   error
	deleteErr error
	deleted   []string
}

var _ storage.ImageStore = (*fakeImages)(nil)

func newFakeImages() *fakeImages { return &fakeImages{saved: map[string][]byte{}} }

func (f *fakeImages) Save(_ context.Context, key string, data []byte, _ string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[key] = data
	return nil
}

func (f *fakeImages) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.saved, key)
	return f.deleteErr
}

func (f *fakeImages) URL(key string) string { return "/media/" + key }

type fakeMarks struct {
	set    map[model.MarkKind]map[[2]int64]bool
	recipe map[int64]bool
}

var _ repository.MarkRepository = (*fakeMarks)(nil)

func (f *fakeMarks) Add(_ context.Context, kind model.MarkKind, userID, recipeID int64) error {
	if !f.recipe[recipeID] {
		return errs.ErrNotFound
	}
	if f.set == nil {
		f.set = map[model.MarkKind]map[[2]int64]bool{}
	}
	if f.set[kind] == nil {
		f.set[kind] = map[[2]int64]bool{}
	}
	k := [2]int64{userID, recipeID}
	if f.set[kind][k] {
		return errs.ErrAlreadyExists
	}
	f.set[kind][k] = true
	return nil
}

func (f *fakeMarks) Remove(_ context.Context, kind model.MarkKind, userID, recipeID int64) error {
	k := [2]int64{userID, recipeID}
	if !f.set[kind][k] {
		return errs.ErrNotFound
	}
	delete(f.set[kind], k)
	return nil
}

type fakeShopping struct {
	lines []model.ShoppingLine
	err   error
}

var _ repository.ShoppingRepository = (*fakeShopping)(nil)

func (f *fakeShopping) ShoppingList(context.Context, int64) ([]model.ShoppingLine, error) {
	return f.lines, f.err
}

type fakeCatalog struct {
	tags        []model.Tag
	ingredients []model.Ingredient
	prefix      string
	imported    int
}

var _ repository.CatalogRepository = (*fakeCatalog)(nil)

func (f *fakeCatalog) ListTags(context.Context) ([]model.Tag, error) { return f.tags, nil }

func (f *fakeCatalog) GetTag(_ context.Context, id int64) (*model.Tag, error) {
	for _, t := range f.tags {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeCatalog) ListIngredients(_ context.Context, prefix string) ([]model.Ingredient, error) {
	f.prefix = prefix
	return f.ingredients, nil
}

func (f *fakeCatalog) GetIngredient(_ context.Context, id int64) (*model.Ingredient, error) {
	for _, i := range f.ingredients {
		if i.ID == id {
			return &i, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeCatalog) ImportIngredients(_ context.Context, items []model.Ingredient) (int, error) {
	f.imported += len(items)
	f.ingredients = append(f.ingredients, items...)
	return len(items), nil
}

func (f *fakeCatalog) ImportTags(_ context.Context, items []model.Tag) (int, error) {
	f.imported += len(items)
	f.tags = append(f.tags, items...)
	return len(items), nil
}
