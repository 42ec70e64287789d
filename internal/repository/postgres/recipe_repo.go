package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
)

// RecipeRepo implements RecipeRepository using PostgreSQL.
type RecipeRepo struct{ db *DB }

// NewRecipeRepo constructs a recipe repository.
func NewRecipeRepo(db *DB) *RecipeRepo { return &RecipeRepo{db: db} }

// Create inserts the recipe row, its tags and ingredient amounts in one transaction.
func (r *RecipeRepo) Create(ctx context.Context, authorID int64, in model.RecipeInput) (int64, error) {
	const ins = `
INSERT INTO recipes (author_id, name, image, text, cooking_time)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	var id int64
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, ins, authorID, in.Name, in.Image, in.Text, in.CookingTime).Scan(&id); err != nil {
			return translate(err, "recipe")
		}
		return writeRecipeSets(ctx, tx, id, in)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update rewrites the recipe row and replaces tag and ingredient sets in one transaction.
func (r *RecipeRepo) Update(ctx context.Context, id int64, in model.RecipeInput) (string, error) {
	const sel = `SELECT image FROM recipes WHERE id=$1 FOR UPDATE`
	const upd = `
UPDATE recipes
SET name=$2, text=$3, cooking_time=$4, image=COALESCE(NULLIF($5::text, ''), image)
WHERE id=$1`
	const clearTags = `DELETE FROM recipe_tags WHERE recipe_id=$1`
	const clearAmounts = `DELETE FROM ingredient_amounts WHERE recipe_id=$1`

	var oldImage string
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, sel, id).Scan(&oldImage); err != nil {
			return translate(err, "recipe")
		}
		if _, err := tx.Exec(ctx, upd, id, in.Name, in.Text, in.CookingTime, in.Image); err != nil {
			return translate(err, "recipe")
		}
		if _, err := tx.Exec(ctx, clearTags, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, clearAmounts, id); err != nil {
			return err
		}
		return writeRecipeSets(ctx, tx, id, in)
	})
	if err != nil {
		return "", err
	}
	return oldImage, nil
}

// writeRecipeSets inserts the tag links and ingredient amounts of a recipe.
func writeRecipeSets(ctx context.Context, tx pgx.Tx, recipeID int64, in model.RecipeInput) error {
	const insTag = `INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2)`
	const insAmount = `INSERT INTO ingredient_amounts (recipe_id, ingredient_id, amount) VALUES ($1, $2, $3)`

	for _, tagID := range in.TagIDs {
		if _, err := tx.Exec(ctx, insTag, recipeID, tagID); err != nil {
			return setError(err, "tags", fmt.Sprintf("tag %d", tagID))
		}
	}
	for _, a := range in.Ingredients {
		if _, err := tx.Exec(ctx, insAmount, recipeID, a.IngredientID, a.Amount); err != nil {
			return setError(err, "ingredients", fmt.Sprintf("ingredient %d", a.IngredientID))
		}
	}
	return nil
}

// setError reports references to missing or repeated tags/ingredients as validation failures.
func setError(err error, field, what string) error {
	code, _ := pgCode(err)
	switch code {
	case codeForeignKeyViolation:
		return errs.Invalid(field, what+" does not exist")
	case codeUniqueViolation:
		return errs.Invalid(field, what+" is listed twice")
	}
	return translate(err, what)
}

// Delete removes a recipe; dependent rows cascade.
func (r *RecipeRepo) Delete(ctx context.Context, id int64) (string, error) {
	const q = `DELETE FROM recipes WHERE id=$1 RETURNING image`
	var image string
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&image); err != nil {
		return "", translate(err, "recipe")
	}
	return image, nil
}

// AuthorOf returns the author of a recipe.
func (r *RecipeRepo) AuthorOf(ctx context.Context, id int64) (int64, error) {
	const q = `SELECT author_id FROM recipes WHERE id=$1`
	var author int64
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&author); err != nil {
		return 0, translate(err, "recipe")
	}
	return author, nil
}

// Get loads a recipe with author, tags, ingredients and viewer flags.
func (r *RecipeRepo) Get(ctx context.Context, viewerID, id int64) (*model.Recipe, error) {
	a := newSQLArgs(viewerID)
	q := recipeColumns(a) + "\nWHERE r.id = " + a.add(id)

	rec, err := scanRecipe(r.db.Pool.QueryRow(ctx, q, a.args...))
	if err != nil {
		return nil, translate(err, "recipe")
	}
	list := []model.Recipe{rec}
	if err := r.loadSets(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// List returns a page of recipes matching f, newest first, with the total count.
func (r *RecipeRepo) List(ctx context.Context, viewerID int64, f model.RecipeFilter, page model.Page) ([]model.Recipe, int, error) {
	ca := newSQLArgs(viewerID)
	where, empty := recipeWhere(ca, f)
	if empty {
		return []model.Recipe{}, 0, nil
	}

	var total int
	countQ := "SELECT count(*) FROM recipes r\nWHERE " + where
	if err := r.db.Pool.QueryRow(ctx, countQ, ca.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	la := newSQLArgs(viewerID)
	where, _ = recipeWhere(la, f)
	q := recipeColumns(la) + "\nWHERE " + where +
		"\nORDER BY r.created_at DESC, r.id DESC" +
		"\nLIMIT " + la.add(page.Limit) + " OFFSET " + la.add(page.Offset())

	rows, err := r.db.Pool.Query(ctx, q, la.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Recipe{}
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadSets(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func scanRecipe(row pgx.Row) (model.Recipe, error) {
	var rec model.Recipe
	au := &rec.Author
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Image, &rec.Text, &rec.CookingTime, &rec.CreatedAt,
		&au.ID, &au.Email, &au.Username, &au.FirstName, &au.LastName,
		&au.IsSubscribed, &rec.IsFavorited, &rec.IsInShoppingCart,
	)
	return rec, err
}

// loadSets fills Tags and Ingredients of the given recipes with two queries.
func (r *RecipeRepo) loadSets(ctx context.Context, recs []model.Recipe) error {
	if len(recs) == 0 {
		return nil
	}
	ids := make([]int64, len(recs))
	pos := make(map[int64]int, len(recs))
	for i := range recs {
		ids[i] = recs[i].ID
		pos[recs[i].ID] = i
		recs[i].Tags = []model.Tag{}
		recs[i].Ingredients = []model.IngredientAmount{}
	}

	const tagsQ = `
SELECT rt.recipe_id, t.id, t.name, t.color, t.slug
FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
WHERE rt.recipe_id = ANY($1)
ORDER BY t.name`
	rows, err := r.db.Pool.Query(ctx, tagsQ, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var rid int64
		var t model.Tag
		if err := rows.Scan(&rid, &t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			rows.Close()
			return err
		}
		recs[pos[rid]].Tags = append(recs[pos[rid]].Tags, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	const amountsQ = `
SELECT ia.recipe_id, i.id, i.name, i.measurement_unit, ia.amount
FROM ingredient_amounts ia JOIN ingredients i ON i.id = ia.ingredient_id
WHERE ia.recipe_id = ANY($1)
ORDER BY ia.id`
	rows, err = r.db.Pool.Query(ctx, amountsQ, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rid int64
		var a model.IngredientAmount
		if err := rows.Scan(&rid, &a.ID, &a.Name, &a.MeasurementUnit, &a.Amount); err != nil {
			return err
		}
		recs[pos[rid]].Ingredients = append(recs[pos[rid]].Ingredients, a)
	}
	return rows.Err()
}

// Short loads the compact form of a recipe.
func (r *RecipeRepo) Short(ctx context.Context, id int64) (*model.RecipeShort, error) {
	const q = `SELECT id, name, image, cooking_time FROM recipes WHERE id=$1`
	var s model.RecipeShort
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.Name, &s.Image, &s.CookingTime); err != nil {
		return nil, translate(err, "recipe")
	}
	return &s, nil
}

// ShortByAuthors returns the newest recipes per author, at most limit each (limit <= 0: all).
func (r *RecipeRepo) ShortByAuthors(ctx context.Context, authorIDs []int64, limit int) (map[int64][]model.RecipeShort, map[int64]int, error) {
	recipes := make(map[int64][]model.RecipeShort, len(authorIDs))
	counts := make(map[int64]int, len(authorIDs))
	if len(authorIDs) == 0 {
		return recipes, counts, nil
	}

	const q = `
SELECT id, author_id, name, image, cooking_time, total
FROM (
    SELECT id, author_id, name, image, cooking_time,
           count(*) OVER (PARTITION BY author_id) AS total,
           row_number() OVER (PARTITION BY author_id ORDER BY created_at DESC, id DESC) AS rn
    FROM recipes
    WHERE author_id = ANY($1)
) s
WHERE $2::int <= 0 OR rn <= $2::int
ORDER BY author_id, rn`
	rows, err := r.db.Pool.Query(ctx, q, authorIDs, limit)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s      model.RecipeShort
			author int64
			total  int
		)
		if err := rows.Scan(&s.ID, &author, &s.Name, &s.Image, &s.CookingTime, &total); err != nil {
			return nil, nil, err
		}
		recipes[author] = append(recipes[author], s)
		counts[author] = total
	}
	return recipes, counts, rows.Err()
}
