package postgres

import (
	"context"
	"fmt"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
)

// MarkRepo implements MarkRepository and ShoppingRepository using PostgreSQL.
type MarkRepo struct{ db *DB }

// NewMarkRepo constructs a mark repository.
func NewMarkRepo(db *DB) *MarkRepo { return &MarkRepo{db: db} }

func markTable(kind model.MarkKind) (string, error) {
	switch kind {
	case model.MarkFavorite:
		return "favorites", nil
	case model.MarkCart:
		return "shopping_cart", nil
	}
	return "", fmt.Errorf("unknown mark kind %d", int(kind))
}

// Add inserts a (user, recipe) mark.
func (r *MarkRepo) Add(ctx context.Context, kind model.MarkKind, userID, recipeID int64) error {
	table, err := markTable(kind)
	if err != nil {
		return err
	}
	q := `INSERT INTO ` + table + ` (user_id, recipe_id) VALUES ($1, $2)`
	_, err = r.db.Pool.Exec(ctx, q, userID, recipeID)
	if err == nil {
		return nil
	}
	code, _ := pgCode(err)
	switch code {
	case codeUniqueViolation:
		return fmt.Errorf("recipe is already in %s: %w", kind, errs.ErrAlreadyExists)
	case codeForeignKeyViolation:
		return fmt.Errorf("recipe: %w", errs.ErrNotFound)
	}
	return err
}

// Remove deletes a (user, recipe) mark.
func (r *MarkRepo) Remove(ctx context.Context, kind model.MarkKind, userID, recipeID int64) error {
	table, err := markTable(kind)
	if err != nil {
		return err
	}
	q := `DELETE FROM ` + table + ` WHERE user_id=$1 AND recipe_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, userID, recipeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recipe is not in %s: %w", kind, errs.ErrNotFound)
	}
	return nil
}

// ShoppingList sums ingredient amounts over every recipe in the user's cart.
// Lines are keyed by (name, unit) and ordered by name, then unit.
func (r *MarkRepo) ShoppingList(ctx context.Context, userID int64) ([]model.ShoppingLine, error) {
	const q = `
SELECT i.name, i.measurement_unit, SUM(ia.amount)::bigint AS total
FROM shopping_cart c
JOIN ingredient_amounts ia ON ia.recipe_id = c.recipe_id
JOIN ingredients i ON i.id = ia.ingredient_id
WHERE c.user_id = $1
GROUP BY i.name, i.measurement_unit
ORDER BY i.name, i.measurement_unit`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ShoppingLine{}
	for rows.Next() {
		var l model.ShoppingLine
		if err := rows.Scan(&l.Name, &l.Unit, &l.Amount); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
