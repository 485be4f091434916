package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/foodgram/internal/models"
)

var conflictMessages = map[string]string{
	"users_email_key":                  "a user with this email already exists",
	"users_username_key":               "a user with this username already exists",
	"tags_name_key":                    "a tag with this name already exists",
	"tags_slug_key":                    "a tag with this slug already exists",
	"tags_color_key":                   "a tag with this color already exists",
	"ingredients_name_unit_unique":     "this ingredient already exists",
	"recipe_ingredients_unique":        "ingredients must not repeat",
	"recipe_tags_pkey":                 "tags must not repeat",
	"favorites_user_recipe_unique":     "recipe is already in favorites",
	"shopping_cart_user_recipe_unique": "recipe is already in the shopping cart",
	"subscriptions_user_author_unique": "you are already subscribed to this author",
	"subscriptions_not_self":           "you cannot subscribe to yourself",
}

var validationFields = map[string][2]string{
	"recipes_cooking_time_range":           {"cooking_time", "must be between 1 and 720"},
	"recipe_ingredients_amount_min":        {"ingredients", "amount must be at least 1"},
	"recipe_ingredients_ingredient_id_fkey": {"ingredients", "unknown ingredient"},
	"recipe_tags_tag_id_fkey":              {"tags", "unknown tag"},
	"users_username_not_me":                {"username", "this username is reserved"},
}

// translate приводит ошибки драйвера к ошибкам предметной области
// и оборачивает результат именем операции.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, mapError(err))
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.NotFoundf("not found")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	if f, ok := validationFields[pgErr.ConstraintName]; ok {
		return models.NewValidationError(f[0], f[1])
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if msg, ok := conflictMessages[pgErr.ConstraintName]; ok {
			return models.Conflictf("%s", msg)
		}
		return models.Conflictf("object already exists")
	case pgerrcode.CheckViolation:
		if msg, ok := conflictMessages[pgErr.ConstraintName]; ok {
			return models.Conflictf("%s", msg)
		}
		return models.NewValidationError("non_field_errors", pgErr.Message)
	case pgerrcode.ForeignKeyViolation:
		return models.NotFoundf("referenced object not found")
	}
	return err
}
