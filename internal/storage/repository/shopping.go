package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/foodgram/internal/models"
)

// ShoppingList суммирует количество ингредиентов по всем рецептам из списка
// покупок пользователя, группируя по названию и единице измерения.
func (s *Storage) ShoppingList(ctx context.Context, userID int64) ([]models.ShoppingItem, error) {
	const op = "storage.ShoppingList"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT i.name, i.measurement_unit, SUM(ri.amount)
			  FROM shopping_cart sc
			  JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
			  JOIN ingredients i ON i.id = ri.ingredient_id
			  WHERE sc.user_id = $1
			  GROUP BY i.name, i.measurement_unit
			  ORDER BY i.name, i.measurement_unit`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.ShoppingItem, 0)
	for rows.Next() {
		var item models.ShoppingItem
		if err = rows.Scan(&item.Name, &item.MeasurementUnit, &item.Amount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
