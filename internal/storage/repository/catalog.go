package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/foodgram/internal/models"
)

// ListTags возвращает все теги по ID.
func (s *Storage) ListTags(ctx context.Context) ([]models.Tag, error) {
	const op = "storage.ListTags"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, slug, color FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Tag, 0)
	for rows.Next() {
		var t models.Tag
		if err = rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Color); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetTag возвращает тег по ID.
func (s *Storage) GetTag(ctx context.Context, id int64) (models.Tag, error) {
	const op = "storage.GetTag"
	if err := checkCtx(ctx, op); err != nil {
		return models.Tag{}, err
	}

	var t models.Tag
	err := s.DB.QueryRowContext(ctx, `SELECT id, name, slug, color FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Slug, &t.Color)
	if err != nil {
		return models.Tag{}, translate(op, err)
	}
	return t, nil
}

// ImportTags добавляет теги одной транзакцией. Совпадение имени, slug или цвета
// с существующим тегом отменяет весь импорт с ErrConflict.
func (s *Storage) ImportTags(ctx context.Context, tags []models.Tag) (int, error) {
	const op = "storage.ImportTags"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO tags (name, slug, color) VALUES ($1, $2, $3)`)
		if err != nil {
			return err
		}
		defer func() {
			_ = stmt.Close()
		}()
		for _, t := range tags {
			if _, err = stmt.ExecContext(ctx, t.Name, t.Slug, t.Color); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, translate(op, err)
	}
	return inserted, nil
}

// ListIngredients ищет ингредиенты по началу названия без учёта регистра.
// Пустой префикс возвращает весь справочник.
func (s *Storage) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	const op = "storage.ListIngredients"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, name, measurement_unit
			  FROM ingredients
			  WHERE LOWER(name) LIKE LOWER($1) ESCAPE '\'
			  ORDER BY name, measurement_unit`
	rows, err := s.DB.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Ingredient, 0)
	for rows.Next() {
		var i models.Ingredient
		if err = rows.Scan(&i.ID, &i.Name, &i.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, i)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetIngredient возвращает ингредиент по ID.
func (s *Storage) GetIngredient(ctx context.Context, id int64) (models.Ingredient, error) {
	const op = "storage.GetIngredient"
	if err := checkCtx(ctx, op); err != nil {
		return models.Ingredient{}, err
	}

	var i models.Ingredient
	err := s.DB.QueryRowContext(ctx, `SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`, id).
		Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	if err != nil {
		return models.Ingredient{}, translate(op, err)
	}
	return i, nil
}

// ImportIngredients добавляет ингредиенты одной транзакцией, пропуская уже
// существующие пары (название, единица). Возвращает число добавленных строк.
func (s *Storage) ImportIngredients(ctx context.Context, items []models.Ingredient) (int, error) {
	const op = "storage.ImportIngredients"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var inserted int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO ingredients (name, measurement_unit)
			VALUES ($1, $2)
			ON CONFLICT (name, measurement_unit) DO NOTHING`)
		if err != nil {
			return err
		}
		defer func() {
			_ = stmt.Close()
		}()
		for _, i := range items {
			res, err := stmt.ExecContext(ctx, i.Name, i.MeasurementUnit)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, translate(op, err)
	}
	return int(inserted), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
