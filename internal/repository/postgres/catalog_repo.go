package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/foodgram/internal/model"
)

// CatalogRepo implements CatalogRepository using PostgreSQL.
type CatalogRepo struct{ db *DB }

// NewCatalogRepo constructs a catalog repository.
func NewCatalogRepo(db *DB) *CatalogRepo { return &CatalogRepo{db: db} }

// ListTags returns all tags ordered by name.
func (r *CatalogRepo) ListTags(ctx context.Context) ([]model.Tag, error) {
	const q = `SELECT id, name, color, slug FROM tags ORDER BY name`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTag selects a tag by ID.
func (r *CatalogRepo) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	const q = `SELECT id, name, color, slug FROM tags WHERE id=$1`
	var t model.Tag
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
		return nil, translate(err, "tag")
	}
	return &t, nil
}

// ListIngredients returns ingredients with a case-insensitive name prefix.
func (r *CatalogRepo) ListIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	const q = `
SELECT id, name, measurement_unit FROM ingredients
WHERE lower(name) LIKE $1
ORDER BY name, measurement_unit`
	rows, err := r.db.Pool.Query(ctx, q, likePrefix(prefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Ingredient{}
	for rows.Next() {
		var i model.Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.MeasurementUnit); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// GetIngredient selects an ingredient by ID.
func (r *CatalogRepo) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	const q = `SELECT id, name, measurement_unit FROM ingredients WHERE id=$1`
	var i model.Ingredient
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&i.ID, &i.Name, &i.MeasurementUnit); err != nil {
		return nil, translate(err, "ingredient")
	}
	return &i, nil
}

// ImportIngredients inserts ingredients in one transaction and reports how many were new.
func (r *CatalogRepo) ImportIngredients(ctx context.Context, items []model.Ingredient) (int, error) {
	const ins = `
INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2)
ON CONFLICT (name, measurement_unit) DO NOTHING`
	inserted := 0
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		for _, it := range items {
			tag, err := tx.Exec(ctx, ins, it.Name, it.MeasurementUnit)
			if err != nil {
				return translate(err, "ingredient "+it.Name)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ImportTags inserts tags in one transaction and reports how many were new.
func (r *CatalogRepo) ImportTags(ctx context.Context, items []model.Tag) (int, error) {
	const ins = `
INSERT INTO tags (name, color, slug) VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING`
	inserted := 0
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		for _, it := range items {
			tag, err := tx.Exec(ctx, ins, it.Name, it.Color, it.Slug)
			if err != nil {
				return translate(err, "tag "+it.Name)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// likePrefix escapes LIKE metacharacters and appends the wildcard.
func likePrefix(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return s + "%"
}
