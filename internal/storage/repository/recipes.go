package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/foodgram/internal/models"
)

const recipeColumns = `r.id, r.author_id, r.name, r.text, r.image, r.cooking_time, r.pub_date`

func scanRecipe(row interface{ Scan(dest ...any) error }) (models.Recipe, error) {
	var r models.Recipe
	err := row.Scan(&r.ID, &r.AuthorID, &r.Name, &r.Text, &r.Image, &r.CookingTime, &r.PubDate)
	return r, err
}

// CreateRecipe сохраняет рецепт, его ингредиенты и теги одной транзакцией
// и возвращает ID рецепта. Ошибка на любом шаге откатывает всю запись.
func (s *Storage) CreateRecipe(ctx context.Context, r models.Recipe,
	ingredients []models.IngredientAmount, tags []int64) (int64, error) {
	const op = "storage.CreateRecipe"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var newID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO recipes (author_id, name, text, image, cooking_time)
				  VALUES ($1, $2, $3, $4, $5)
				  RETURNING id`
		if err := tx.QueryRowContext(ctx, query,
			r.AuthorID, r.Name, r.Text, r.Image, r.CookingTime,
		).Scan(&newID); err != nil {
			return err
		}
		if err := insertRecipeIngredients(ctx, tx, newID, ingredients); err != nil {
			return err
		}
		return insertRecipeTags(ctx, tx, newID, tags)
	})
	if err != nil {
		return 0, translate(op, err)
	}
	return newID, nil
}

// UpdateRecipe применяет частичное обновление. Переданные наборы тегов
// и ингредиентов удаляются и создаются заново в той же транзакции.
func (s *Storage) UpdateRecipe(ctx context.Context, id int64, upd models.RecipeUpdate) error {
	const op = "storage.UpdateRecipe"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var (
			sets []string
			args []any
		)
		add := func(column string, v any) {
			args = append(args, v)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
		if upd.Name != nil {
			add("name", *upd.Name)
		}
		if upd.Text != nil {
			add("text", *upd.Text)
		}
		if upd.Image != nil {
			add("image", *upd.Image)
		}
		if upd.CookingTime != nil {
			add("cooking_time", *upd.CookingTime)
		}

		if len(sets) > 0 {
			args = append(args, id)
			query := fmt.Sprintf(`UPDATE recipes SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n == 0 {
				return sql.ErrNoRows
			}
		}

		if upd.ReplaceIngr {
			if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, id); err != nil {
				return err
			}
			if err := insertRecipeIngredients(ctx, tx, id, upd.Ingredients); err != nil {
				return err
			}
		}
		if upd.ReplaceTags {
			if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, id); err != nil {
				return err
			}
			if err := insertRecipeTags(ctx, tx, id, upd.Tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translate(op, err)
	}
	return nil
}

func insertRecipeIngredients(ctx context.Context, tx *sql.Tx, recipeID int64, items []models.IngredientAmount) error {
	if len(items) == 0 {
		return nil
	}
	args := make([]any, 0, len(items)*3)
	for _, it := range items {
		args = append(args, recipeID, it.ID, it.Amount)
	}
	query := `INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount) VALUES ` +
		placeholders(len(items), 3)
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func insertRecipeTags(ctx context.Context, tx *sql.Tx, recipeID int64, tags []int64) error {
	if len(tags) == 0 {
		return nil
	}
	args := make([]any, 0, len(tags)*2)
	for _, tagID := range tags {
		args = append(args, recipeID, tagID)
	}
	query := `INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ` + placeholders(len(tags), 2)
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// DeleteRecipe удаляет рецепт; связанные строки удаляются каскадно.
// Возвращает число удалённых строк.
func (s *Storage) DeleteRecipe(ctx context.Context, id int64) (int64, error) {
	const op = "storage.DeleteRecipe"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// GetRecipe возвращает рецепт по ID.
func (s *Storage) GetRecipe(ctx context.Context, id int64) (models.Recipe, error) {
	const op = "storage.GetRecipe"
	if err := checkCtx(ctx, op); err != nil {
		return models.Recipe{}, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes r WHERE r.id = $1`, id)
	r, err := scanRecipe(row)
	if err != nil {
		return models.Recipe{}, translate(op, err)
	}
	return r, nil
}

// ListRecipes возвращает рецепты по фильтру, новые первыми.
func (s *Storage) ListRecipes(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, error) {
	const op = "storage.ListRecipes"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Author != "" {
		conds = append(conds, "r.author_id = (SELECT id FROM users WHERE username = "+arg(f.Author)+")")
	}
	if len(f.Tags) > 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug = ANY(`+arg(f.Tags)+`))`)
	}
	if f.ViewerID != 0 {
		if f.IsFavorited {
			conds = append(conds, `EXISTS (SELECT 1 FROM favorites fv
				WHERE fv.recipe_id = r.id AND fv.user_id = `+arg(f.ViewerID)+`)`)
		}
		if f.IsInShoppingCart {
			conds = append(conds, `EXISTS (SELECT 1 FROM shopping_cart sc
				WHERE sc.recipe_id = r.id AND sc.user_id = `+arg(f.ViewerID)+`)`)
		}
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + recipeColumns + ` FROM recipes r`)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY r.pub_date DESC, r.id DESC")
	b.WriteString(" LIMIT " + arg(nullLimit(f.Limit)))
	b.WriteString(" OFFSET " + arg(f.Offset))

	rows, err := s.DB.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectRecipes(op, rows)
}

// ListRecipesByAuthor возвращает рецепты автора, новые первыми. limit == 0 снимает ограничение.
func (s *Storage) ListRecipesByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Recipe, error) {
	const op = "storage.ListRecipesByAuthor"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes r
			  WHERE r.author_id = $1
			  ORDER BY r.pub_date DESC, r.id DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, authorID, nullLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectRecipes(op, rows)
}

// CountRecipesByAuthor возвращает количество рецептов автора.
func (s *Storage) CountRecipesByAuthor(ctx context.Context, authorID int64) (int, error) {
	const op = "storage.CountRecipesByAuthor"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes WHERE author_id = $1`, authorID).
		Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

func collectRecipes(op string, rows *sql.Rows) ([]models.Recipe, error) {
	defer func() {
		_ = rows.Close()
	}()
	result := make([]models.Recipe, 0)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// TagsForRecipes возвращает теги для набора рецептов.
func (s *Storage) TagsForRecipes(ctx context.Context, recipeIDs []int64) (map[int64][]models.Tag, error) {
	const op = "storage.TagsForRecipes"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	result := make(map[int64][]models.Tag, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return result, nil
	}
	query := `SELECT rt.recipe_id, t.id, t.name, t.slug, t.color
			  FROM recipe_tags rt
			  JOIN tags t ON t.id = rt.tag_id
			  WHERE rt.recipe_id = ANY($1)
			  ORDER BY t.id`
	rows, err := s.DB.QueryContext(ctx, query, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var (
			recipeID int64
			t        models.Tag
		)
		if err = rows.Scan(&recipeID, &t.ID, &t.Name, &t.Slug, &t.Color); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[recipeID] = append(result[recipeID], t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// IngredientsForRecipes возвращает ингредиенты с количеством для набора рецептов.
func (s *Storage) IngredientsForRecipes(ctx context.Context, recipeIDs []int64) (map[int64][]models.RecipeIngredient, error) {
	const op = "storage.IngredientsForRecipes"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	result := make(map[int64][]models.RecipeIngredient, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return result, nil
	}
	query := `SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
			  FROM recipe_ingredients ri
			  JOIN ingredients i ON i.id = ri.ingredient_id
			  WHERE ri.recipe_id = ANY($1)
			  ORDER BY ri.id`
	rows, err := s.DB.QueryContext(ctx, query, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var ri models.RecipeIngredient
		if err = rows.Scan(&ri.RecipeID, &ri.IngredientID, &ri.Name, &ri.MeasurementUnit, &ri.Amount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[ri.RecipeID] = append(result[ri.RecipeID], ri)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
