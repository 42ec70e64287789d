package postgres

import (
	"strconv"
	"strings"

	"github.com/and161185/foodgram/internal/model"
)

// sqlArgs numbers positional parameters as they are added. The viewer ID is
// bound lazily so that every placeholder sent to the server is referenced.
type sqlArgs struct {
	args     []any
	viewerID int64
	viewerPH string
}

func newSQLArgs(viewerID int64) *sqlArgs { return &sqlArgs{viewerID: viewerID} }

func (a *sqlArgs) add(v any) string {
	a.args = append(a.args, v)
	return "$" + strconv.Itoa(len(a.args))
}

func (a *sqlArgs) viewer() string {
	if a.viewerPH == "" {
		a.viewerPH = a.add(a.viewerID)
	}
	return a.viewerPH
}

// markExists returns the membership test of recipe r in a per-user mark table.
func markExists(table, viewerPH string) string {
	return "EXISTS (SELECT 1 FROM " + table + " m WHERE m.user_id = " + viewerPH + " AND m.recipe_id = r.id)"
}

// recipeWhere renders the filter as a WHERE clause (without the keyword).
// empty reports that the result is known to be empty without querying,
// which is the case for anonymous viewers asking for favorited/in-cart recipes.
func recipeWhere(a *sqlArgs, f model.RecipeFilter) (where string, empty bool) {
	if f.MatchNone {
		return "", true
	}
	var conds []string

	membership := []struct {
		flag  *bool
		table string
	}{
		{f.IsFavorited, "favorites"},
		{f.IsInShoppingCart, "shopping_cart"},
	}
	for _, m := range membership {
		if m.flag == nil {
			continue
		}
		if a.viewerID <= 0 {
			// anonymous: the membership set is empty
			if *m.flag {
				return "", true
			}
			continue
		}
		cond := markExists(m.table, a.viewer())
		if !*m.flag {
			cond = "NOT " + cond
		}
		conds = append(conds, cond)
	}

	if f.AuthorID != nil {
		conds = append(conds, "r.author_id = "+a.add(*f.AuthorID))
	}

	if len(f.TagSlugs) > 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
WHERE rt.recipe_id = r.id AND t.slug = ANY(`+a.add(f.TagSlugs)+`))`)
	}

	if len(conds) == 0 {
		return "TRUE", false
	}
	return strings.Join(conds, "\n  AND "), false
}

// recipeColumns selects the recipe, its author and the viewer-dependent flags.
func recipeColumns(a *sqlArgs) string {
	v := a.viewer()
	return `SELECT r.id, r.name, r.image, r.text, r.cooking_time, r.created_at,
       u.id, u.email, u.username, u.first_name, u.last_name,
       EXISTS (SELECT 1 FROM follows f WHERE f.user_id = ` + v + ` AND f.author_id = u.id) AS is_subscribed,
       ` + markExists("favorites", v) + ` AS is_favorited,
       ` + markExists("shopping_cart", v) + ` AS is_in_shopping_cart
FROM recipes r JOIN users u ON u.id = r.author_id`
}
