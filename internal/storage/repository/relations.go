package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/foodgram/internal/models"
)

type relationTable struct {
	table  string
	target string
}

var relationTables = map[models.RelationKind]relationTable{
	models.RelationFavorite:     {table: "favorites", target: "recipe_id"},
	models.RelationShoppingCart: {table: "shopping_cart", target: "recipe_id"},
	models.RelationSubscription: {table: "subscriptions", target: "author_id"},
}

func lookupRelation(kind models.RelationKind) (relationTable, error) {
	rt, ok := relationTables[kind]
	if !ok {
		return relationTable{}, fmt.Errorf("unknown relation kind %q", kind)
	}
	return rt, nil
}

// RelationExists сообщает, есть ли связь пользователя с объектом.
func (s *Storage) RelationExists(ctx context.Context, kind models.RelationKind, userID, targetID int64) (bool, error) {
	const op = "storage.RelationExists"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}
	rt, err := lookupRelation(kind)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE user_id = $1 AND %s = $2)`, rt.table, rt.target)
	var exists bool
	if err = s.DB.QueryRowContext(ctx, query, userID, targetID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// AddRelation создаёт связь. Повторная вставка отклоняется уникальным
// ограничением и возвращается как ErrConflict.
func (s *Storage) AddRelation(ctx context.Context, kind models.RelationKind, userID, targetID int64) error {
	const op = "storage.AddRelation"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	rt, err := lookupRelation(kind)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (user_id, %s) VALUES ($1, $2)`, rt.table, rt.target)
	if _, err = s.DB.ExecContext(ctx, query, userID, targetID); err != nil {
		return translate(op, err)
	}
	return nil
}

// RemoveRelation удаляет связь и возвращает число удалённых строк.
func (s *Storage) RemoveRelation(ctx context.Context, kind models.RelationKind, userID, targetID int64) (int64, error) {
	const op = "storage.RemoveRelation"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	rt, err := lookupRelation(kind)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND %s = $2`, rt.table, rt.target)
	result, err := s.DB.ExecContext(ctx, query, userID, targetID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// RelatedTargets возвращает подмножество targetIDs, с которыми у пользователя есть связь.
func (s *Storage) RelatedTargets(ctx context.Context, kind models.RelationKind, userID int64,
	targetIDs []int64) (map[int64]bool, error) {
	const op = "storage.RelatedTargets"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	result := make(map[int64]bool, len(targetIDs))
	if userID == 0 || len(targetIDs) == 0 {
		return result, nil
	}
	rt, err := lookupRelation(kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`SELECT %[2]s FROM %[1]s WHERE user_id = $1 AND %[2]s = ANY($2)`, rt.table, rt.target)
	rows, err := s.DB.QueryContext(ctx, query, userID, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[id] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
