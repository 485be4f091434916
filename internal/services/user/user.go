// Package user содержит регистрацию пользователей, их профили
// и ленту подписок на авторов.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodgram/internal/lib/password"
	"github.com/magabrotheeeer/foodgram/internal/lib/validate"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// Repository описывает контракт для работы с пользователями в базе данных.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)
	ListSubscriptions(ctx context.Context, userID int64, limit, offset int) ([]models.User, error)
	RelatedTargets(ctx context.Context, kind models.RelationKind, userID int64, targetIDs []int64) (map[int64]bool, error)
	ListRecipesByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Recipe, error)
	CountRecipesByAuthor(ctx context.Context, authorID int64) (int, error)
}

// TokenMaker выпускает токен доступа.
type TokenMaker interface {
	GenerateToken(userID int64, username, role string) (string, error)
}

// Service отвечает за пользователей и подписки.
type Service struct {
	repo     Repository
	tokens   TokenMaker
	log      *slog.Logger
	validate *validator.Validate
}

// New создаёт сервис пользователей. tokens может быть nil, если выпуск токенов не нужен.
func New(repo Repository, tokens TokenMaker, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		log:      log,
		validate: validate.New(),
	}
}

// Register создаёт пользователя с ролью user и хешированным паролем.
// Занятые username и email возвращаются как ErrConflict.
func (s *Service) Register(ctx context.Context, in models.RegisterInput) (models.UserView, error) {
	const op = "user.Register"

	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validate.Struct(in); err != nil {
		return models.UserView{}, validate.ToValidationError(err)
	}

	hashed, err := password.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return models.UserView{}, models.NewValidationError("password", err.Error())
		}
		return models.UserView{}, fmt.Errorf("%s: %w", op, err)
	}

	u := in.ToUser(hashed)
	id, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return models.UserView{}, fmt.Errorf("%s: %w", op, err)
	}
	u.ID = id
	s.log.Info("user registered", slog.Int64("id", id), slog.String("username", u.Username))
	return models.ToUserView(u, false), nil
}

// List возвращает пользователей с признаком подписки текущего читателя.
func (s *Service) List(ctx context.Context, ident models.Identity, limit, offset int) ([]models.UserView, error) {
	const op = "user.List"

	users, err := s.repo.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	subscribed, err := s.subscribedTo(ctx, ident, users)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, models.ToUserView(u, subscribed[u.ID]))
	}
	return views, nil
}

// Get возвращает профиль пользователя.
func (s *Service) Get(ctx context.Context, ident models.Identity, id int64) (models.UserView, error) {
	const op = "user.Get"

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.UserView{}, models.NotFoundf("user %d not found", id)
		}
		return models.UserView{}, fmt.Errorf("%s: %w", op, err)
	}
	subscribed, err := s.subscribedTo(ctx, ident, []models.User{u})
	if err != nil {
		return models.UserView{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.ToUserView(u, subscribed[u.ID]), nil
}

// Me возвращает профиль автора запроса.
func (s *Service) Me(ctx context.Context, ident models.Identity) (models.UserView, error) {
	if ident.IsAnonymous() {
		return models.UserView{}, models.Unauthorized()
	}
	return s.Get(ctx, ident, ident.UserID)
}

// Subscriptions возвращает авторов, на которых подписан пользователь,
// вместе с их рецептами. recipesLimit == 0 возвращает все рецепты.
func (s *Service) Subscriptions(ctx context.Context, ident models.Identity, limit, offset, recipesLimit int) ([]models.AuthorView, error) {
	const op = "user.Subscriptions"
	if ident.IsAnonymous() {
		return nil, models.Unauthorized()
	}

	authors, err := s.repo.ListSubscriptions(ctx, ident.UserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]models.AuthorView, 0, len(authors))
	for _, a := range authors {
		recipes, err := s.repo.ListRecipesByAuthor(ctx, a.ID, recipesLimit)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		count, err := s.repo.CountRecipesByAuthor(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		views = append(views, models.ToAuthorView(a, true, recipes, count))
	}
	return views, nil
}

// IssueToken выпускает токен доступа для существующего пользователя.
// Используется утилитой командной строки в окружении разработки.
func (s *Service) IssueToken(ctx context.Context, username string) (string, error) {
	const op = "user.IssueToken"
	if s.tokens == nil {
		return "", fmt.Errorf("%s: token maker is not configured", op)
	}

	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.NotFoundf("user %q not found", username)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.tokens.GenerateToken(u.ID, u.Username, u.Role)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

func (s *Service) subscribedTo(ctx context.Context, ident models.Identity, users []models.User) (map[int64]bool, error) {
	if ident.IsAnonymous() || len(users) == 0 {
		return map[int64]bool{}, nil
	}
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return s.repo.RelatedTargets(ctx, models.RelationSubscription, ident.UserID, ids)
}
