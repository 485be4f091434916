// Package relation управляет связями пользователя: избранным, списком покупок
// и подписками на авторов.
package relation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/foodgram/internal/metrics"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// Repository определяет методы хранилища, нужные для работы со связями.
type Repository interface {
	GetRecipe(ctx context.Context, id int64) (models.Recipe, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	RelationExists(ctx context.Context, kind models.RelationKind, userID, targetID int64) (bool, error)
	AddRelation(ctx context.Context, kind models.RelationKind, userID, targetID int64) error
	RemoveRelation(ctx context.Context, kind models.RelationKind, userID, targetID int64) (int64, error)
	ListRecipesByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Recipe, error)
	CountRecipesByAuthor(ctx context.Context, authorID int64) (int, error)
}

// Service реализует добавление и удаление связей.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт сервис связей.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// AddFavorite добавляет рецепт в избранное.
func (s *Service) AddFavorite(ctx context.Context, ident models.Identity, recipeID int64) (models.RecipeShortView, error) {
	return s.addRecipe(ctx, ident, models.RelationFavorite, recipeID)
}

// RemoveFavorite убирает рецепт из избранного.
func (s *Service) RemoveFavorite(ctx context.Context, ident models.Identity, recipeID int64) error {
	return s.remove(ctx, ident, models.RelationFavorite, recipeID)
}

// AddToCart добавляет рецепт в список покупок.
func (s *Service) AddToCart(ctx context.Context, ident models.Identity, recipeID int64) (models.RecipeShortView, error) {
	return s.addRecipe(ctx, ident, models.RelationShoppingCart, recipeID)
}

// RemoveFromCart убирает рецепт из списка покупок.
func (s *Service) RemoveFromCart(ctx context.Context, ident models.Identity, recipeID int64) error {
	return s.remove(ctx, ident, models.RelationShoppingCart, recipeID)
}

// Subscribe подписывает пользователя на автора и возвращает автора с его рецептами.
// recipesLimit == 0 возвращает все рецепты автора.
func (s *Service) Subscribe(ctx context.Context, ident models.Identity, authorID int64, recipesLimit int) (models.AuthorView, error) {
	const op = "relation.Subscribe"
	kind := models.RelationSubscription
	if ident.IsAnonymous() {
		return models.AuthorView{}, models.Unauthorized()
	}

	author, err := s.repo.GetUser(ctx, authorID)
	if err != nil {
		return models.AuthorView{}, s.fail(kind, "add", notFound(op, err, "user %d not found", authorID))
	}
	if author.ID == ident.UserID {
		return models.AuthorView{}, s.fail(kind, "add", models.Conflictf("you cannot subscribe to yourself"))
	}

	// Рецепты читаются до вставки: неудачный запрос не должен оставлять подписку.
	recipes, err := s.repo.ListRecipesByAuthor(ctx, authorID, recipesLimit)
	if err != nil {
		return models.AuthorView{}, s.fail(kind, "add", fmt.Errorf("%s: %w", op, err))
	}
	count, err := s.repo.CountRecipesByAuthor(ctx, authorID)
	if err != nil {
		return models.AuthorView{}, s.fail(kind, "add", fmt.Errorf("%s: %w", op, err))
	}
	if err = s.add(ctx, ident, kind, authorID); err != nil {
		return models.AuthorView{}, s.fail(kind, "add", fmt.Errorf("%s: %w", op, err))
	}
	metrics.RecordToggle(kind.String(), "add", "ok")
	return models.ToAuthorView(author, true, recipes, count), nil
}

// Unsubscribe отменяет подписку на автора.
func (s *Service) Unsubscribe(ctx context.Context, ident models.Identity, authorID int64) error {
	return s.remove(ctx, ident, models.RelationSubscription, authorID)
}

func (s *Service) addRecipe(ctx context.Context, ident models.Identity, kind models.RelationKind, recipeID int64) (models.RecipeShortView, error) {
	const op = "relation.Add"
	if ident.IsAnonymous() {
		return models.RecipeShortView{}, models.Unauthorized()
	}

	r, err := s.repo.GetRecipe(ctx, recipeID)
	if err != nil {
		return models.RecipeShortView{}, s.fail(kind, "add", notFound(op, err, "recipe %d not found", recipeID))
	}
	if err = s.add(ctx, ident, kind, recipeID); err != nil {
		return models.RecipeShortView{}, s.fail(kind, "add", fmt.Errorf("%s: %w", op, err))
	}
	metrics.RecordToggle(kind.String(), "add", "ok")
	return models.ToRecipeShortView(r), nil
}

// add проверяет наличие связи заранее, но источником истины остаётся
// уникальное ограничение хранилища: проигравший гонку получает ErrConflict.
func (s *Service) add(ctx context.Context, ident models.Identity, kind models.RelationKind, targetID int64) error {
	exists, err := s.repo.RelationExists(ctx, kind, ident.UserID, targetID)
	if err != nil {
		return err
	}
	if exists {
		return alreadyExists(kind)
	}
	if err = s.repo.AddRelation(ctx, kind, ident.UserID, targetID); err != nil {
		return err
	}
	s.log.Info("relation added",
		slog.String("kind", kind.String()),
		slog.Int64("user_id", ident.UserID),
		slog.Int64("target_id", targetID),
	)
	return nil
}

func (s *Service) remove(ctx context.Context, ident models.Identity, kind models.RelationKind, targetID int64) error {
	const op = "relation.Remove"
	if ident.IsAnonymous() {
		return models.Unauthorized()
	}

	n, err := s.repo.RemoveRelation(ctx, kind, ident.UserID, targetID)
	if err != nil {
		return s.fail(kind, "remove", fmt.Errorf("%s: %w", op, err))
	}
	if n == 0 {
		return s.fail(kind, "remove", notExists(kind))
	}
	metrics.RecordToggle(kind.String(), "remove", "ok")
	s.log.Info("relation removed",
		slog.String("kind", kind.String()),
		slog.Int64("user_id", ident.UserID),
		slog.Int64("target_id", targetID),
	)
	return nil
}

// fail учитывает неудачную попытку в метриках и возвращает err без изменений.
func (s *Service) fail(kind models.RelationKind, op string, err error) error {
	result := "error"
	switch {
	case errors.Is(err, models.ErrConflict):
		result = "conflict"
	case errors.Is(err, models.ErrNotFound):
		result = "not_found"
	}
	metrics.RecordToggle(kind.String(), op, result)
	return err
}

func notFound(op string, err error, format string, args ...any) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.NotFoundf(format, args...)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func alreadyExists(kind models.RelationKind) error {
	switch kind {
	case models.RelationFavorite:
		return models.Conflictf("recipe is already in favorites")
	case models.RelationShoppingCart:
		return models.Conflictf("recipe is already in the shopping cart")
	default:
		return models.Conflictf("you are already subscribed to this author")
	}
}

func notExists(kind models.RelationKind) error {
	switch kind {
	case models.RelationFavorite:
		return models.NotFoundf("recipe is not in favorites")
	case models.RelationShoppingCart:
		return models.NotFoundf("recipe is not in the shopping cart")
	default:
		return models.NotFoundf("you are not subscribed to this author")
	}
}
