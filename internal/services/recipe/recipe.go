// Package recipe содержит бизнес-логику рецептов: создание и изменение
// со всеми связями в одной транзакции, права автора, фильтрацию списка
// и сборку полного представления рецепта для читателя.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodgram/internal/lib/datauri"
	"github.com/magabrotheeeer/foodgram/internal/lib/sl"
	"github.com/magabrotheeeer/foodgram/internal/lib/validate"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// DefaultRoutingKey — ключ события о новом рецепте.
const DefaultRoutingKey = "recipe.published"

// Repository определяет методы хранилища, нужные сервису рецептов.
type Repository interface {
	CreateRecipe(ctx context.Context, r models.Recipe, ingredients []models.IngredientAmount, tags []int64) (int64, error)
	UpdateRecipe(ctx context.Context, id int64, upd models.RecipeUpdate) error
	DeleteRecipe(ctx context.Context, id int64) (int64, error)
	GetRecipe(ctx context.Context, id int64) (models.Recipe, error)
	ListRecipes(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, error)
	TagsForRecipes(ctx context.Context, recipeIDs []int64) (map[int64][]models.Tag, error)
	IngredientsForRecipes(ctx context.Context, recipeIDs []int64) (map[int64][]models.RecipeIngredient, error)
	GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error)
	RelatedTargets(ctx context.Context, kind models.RelationKind, userID int64, targetIDs []int64) (map[int64]bool, error)
}

// ImageStore сохраняет и удаляет картинки рецептов.
type ImageStore interface {
	Save(ctx context.Context, ext string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// Publisher отправляет доменные события.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Service реализует операции с рецептами.
type Service struct {
	repo       Repository
	images     ImageStore
	events     Publisher
	log        *slog.Logger
	validate   *validator.Validate
	routingKey string
}

// New создаёт сервис рецептов.
func New(repo Repository, images ImageStore, events Publisher, log *slog.Logger, routingKey string) *Service {
	if routingKey == "" {
		routingKey = DefaultRoutingKey
	}
	return &Service{
		repo:       repo,
		images:     images,
		events:     events,
		log:        log,
		validate:   validate.New(),
		routingKey: routingKey,
	}
}

// Create проверяет данные, сохраняет картинку и создаёт рецепт со всеми связями.
// Если запись в хранилище не удалась, сохранённая картинка удаляется.
func (s *Service) Create(ctx context.Context, ident models.Identity, in models.RecipeInput) (models.RecipeView, error) {
	const op = "recipe.Create"
	if ident.IsAnonymous() {
		return models.RecipeView{}, models.Unauthorized()
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Text = strings.TrimSpace(in.Text)
	if err := s.validate.Struct(in); err != nil {
		return models.RecipeView{}, validate.ToValidationError(err)
	}
	if err := checkUnique(in.Ingredients, in.Tags); err != nil {
		return models.RecipeView{}, err
	}

	data, ext, err := resolveImage(in.Image, in.ImageData, in.ImageExt)
	if err != nil {
		return models.RecipeView{}, err
	}
	if data == nil {
		return models.RecipeView{}, models.NewValidationError("image", "this field is required")
	}

	url, err := s.images.Save(ctx, ext, data)
	if err != nil {
		return models.RecipeView{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateRecipe(ctx, in.ToRecipe(ident.UserID, url), in.Ingredients, in.Tags)
	if err != nil {
		s.dropImage(ctx, url)
		return models.RecipeView{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("recipe created", slog.Int64("id", id), slog.Int64("author_id", ident.UserID))

	event := models.RecipePublishedEvent{RecipeID: id, AuthorID: ident.UserID, Author: ident.Username, Name: in.Name}
	if err := s.events.Publish(ctx, s.routingKey, event); err != nil {
		s.log.Warn("failed to publish recipe event", slog.Int64("id", id), sl.Err(err))
	}

	return s.Get(ctx, ident, id)
}

// Update меняет переданные поля рецепта. Изменять рецепт может только автор.
// Переданные теги и ингредиенты полностью заменяют прежние наборы.
func (s *Service) Update(ctx context.Context, ident models.Identity, id int64, patch models.RecipePatch) (models.RecipeView, error) {
	const op = "recipe.Update"
	if ident.IsAnonymous() {
		return models.RecipeView{}, models.Unauthorized()
	}

	existing, err := s.repo.GetRecipe(ctx, id)
	if err != nil {
		return models.RecipeView{}, fmt.Errorf("%s: %w", op, err)
	}
	if existing.AuthorID != ident.UserID {
		return models.RecipeView{}, models.Forbiddenf("only the author can change this recipe")
	}

	upd, err := s.buildUpdate(patch)
	if err != nil {
		return models.RecipeView{}, err
	}

	var newImage string
	if patch.HasImage() {
		image := ""
		if patch.Image != nil {
			image = *patch.Image
		}
		data, ext, err := resolveImage(image, patch.ImageData, patch.ImageExt)
		if err != nil {
			return models.RecipeView{}, err
		}
		if newImage, err = s.images.Save(ctx, ext, data); err != nil {
			return models.RecipeView{}, fmt.Errorf("%s: %w", op, err)
		}
		upd.Image = &newImage
	}

	if err = s.repo.UpdateRecipe(ctx, id, upd); err != nil {
		if newImage != "" {
			s.dropImage(ctx, newImage)
		}
		return models.RecipeView{}, fmt.Errorf("%s: %w", op, err)
	}
	if newImage != "" && existing.Image != "" {
		s.dropImage(ctx, existing.Image)
	}
	s.log.Info("recipe updated", slog.Int64("id", id))

	return s.Get(ctx, ident, id)
}

func (s *Service) buildUpdate(p models.RecipePatch) (models.RecipeUpdate, error) {
	verr := &models.ValidationError{}
	if err := s.validate.Struct(p); err != nil {
		if ve, ok := validate.ToValidationError(err).(*models.ValidationError); ok {
			verr = ve
		} else {
			return models.RecipeUpdate{}, err
		}
	}

	upd := models.RecipeUpdate{CookingTime: p.CookingTime}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			verr.Add("name", "this field may not be blank")
		}
		upd.Name = &name
	}
	if p.Text != nil {
		text := strings.TrimSpace(*p.Text)
		if text == "" {
			verr.Add("text", "this field may not be blank")
		}
		upd.Text = &text
	}
	if p.CookingTime != nil && (*p.CookingTime < models.MinCookingTime || *p.CookingTime > models.MaxCookingTime) {
		verr.Add("cooking_time", fmt.Sprintf("must be between %d and %d", models.MinCookingTime, models.MaxCookingTime))
	}
	if p.Ingredients != nil {
		if len(*p.Ingredients) == 0 {
			verr.Add("ingredients", "must contain at least 1 item(s)")
		}
		for i, it := range *p.Ingredients {
			if it.ID <= 0 {
				verr.Add(fmt.Sprintf("ingredients[%d].id", i), "must be greater than 0")
			}
			if it.Amount < models.MinAmount {
				verr.Add(fmt.Sprintf("ingredients[%d].amount", i), "must be greater than or equal to 1")
			}
		}
		upd.Ingredients = *p.Ingredients
		upd.ReplaceIngr = true
	}
	if p.Tags != nil {
		if len(*p.Tags) == 0 {
			verr.Add("tags", "must contain at least 1 item(s)")
		}
		for i, id := range *p.Tags {
			if id <= 0 {
				verr.Add(fmt.Sprintf("tags[%d]", i), "must be greater than 0")
			}
		}
		upd.Tags = *p.Tags
		upd.ReplaceTags = true
	}
	if !verr.Empty() {
		return models.RecipeUpdate{}, verr
	}
	if err := checkUnique(upd.Ingredients, upd.Tags); err != nil {
		return models.RecipeUpdate{}, err
	}
	return upd, nil
}

// Remove удаляет рецепт. Удалять может автор или администратор.
func (s *Service) Remove(ctx context.Context, ident models.Identity, id int64) error {
	const op = "recipe.Remove"
	if ident.IsAnonymous() {
		return models.Unauthorized()
	}

	existing, err := s.repo.GetRecipe(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if existing.AuthorID != ident.UserID && !ident.IsAdmin() {
		return models.Forbiddenf("only the author can delete this recipe")
	}

	n, err := s.repo.DeleteRecipe(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return models.NotFoundf("recipe %d not found", id)
	}
	if existing.Image != "" {
		s.dropImage(ctx, existing.Image)
	}
	s.log.Info("recipe removed", slog.Int64("id", id), slog.Int64("by", ident.UserID))
	return nil
}

// Get возвращает полное представление рецепта для читателя.
func (s *Service) Get(ctx context.Context, ident models.Identity, id int64) (models.RecipeView, error) {
	const op = "recipe.Get"

	r, err := s.repo.GetRecipe(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.RecipeView{}, models.NotFoundf("recipe %d not found", id)
		}
		return models.RecipeView{}, fmt.Errorf("%s: %w", op, err)
	}
	views, err := s.BuildViews(ctx, ident, []models.Recipe{r})
	if err != nil {
		return models.RecipeView{}, fmt.Errorf("%s: %w", op, err)
	}
	return views[0], nil
}

// List возвращает рецепты по фильтру. Фильтры по избранному и списку покупок
// для анонимного читателя не применяются.
func (s *Service) List(ctx context.Context, ident models.Identity, f models.RecipeFilter) ([]models.RecipeView, error) {
	const op = "recipe.List"

	f.ViewerID = ident.UserID
	recipes, err := s.repo.ListRecipes(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	views, err := s.BuildViews(ctx, ident, recipes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return views, nil
}

// BuildViews дополняет рецепты тегами, ингредиентами, авторами и признаками
// связи с читателем, обращаясь к хранилищу пакетно.
func (s *Service) BuildViews(ctx context.Context, ident models.Identity, recipes []models.Recipe) ([]models.RecipeView, error) {
	views := make([]models.RecipeView, 0, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(recipes))
	authorIDs := make([]int64, 0, len(recipes))
	seenAuthor := make(map[int64]bool)
	for _, r := range recipes {
		ids = append(ids, r.ID)
		if !seenAuthor[r.AuthorID] {
			seenAuthor[r.AuthorID] = true
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}

	tags, err := s.repo.TagsForRecipes(ctx, ids)
	if err != nil {
		return nil, err
	}
	ingredients, err := s.repo.IngredientsForRecipes(ctx, ids)
	if err != nil {
		return nil, err
	}
	authors, err := s.repo.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	favorites := map[int64]bool{}
	cart := map[int64]bool{}
	subscribed := map[int64]bool{}
	if !ident.IsAnonymous() {
		if favorites, err = s.repo.RelatedTargets(ctx, models.RelationFavorite, ident.UserID, ids); err != nil {
			return nil, err
		}
		if cart, err = s.repo.RelatedTargets(ctx, models.RelationShoppingCart, ident.UserID, ids); err != nil {
			return nil, err
		}
		if subscribed, err = s.repo.RelatedTargets(ctx, models.RelationSubscription, ident.UserID, authorIDs); err != nil {
			return nil, err
		}
	}

	for _, r := range recipes {
		views = append(views, models.ToRecipeView(r, authors[r.AuthorID], tags[r.ID], ingredients[r.ID], models.RecipeFlags{
			IsFavorited:      favorites[r.ID],
			IsInShoppingCart: cart[r.ID],
			AuthorSubscribed: subscribed[r.AuthorID],
		}))
	}
	return views, nil
}

func (s *Service) dropImage(ctx context.Context, url string) {
	if err := s.images.Delete(ctx, url); err != nil {
		s.log.Warn("failed to delete image", slog.String("image", url), sl.Err(err))
	}
}

// checkUnique отклоняет повторы ингредиентов и тегов во входных данных.
func checkUnique(ingredients []models.IngredientAmount, tags []int64) error {
	verr := &models.ValidationError{}
	seenIngr := make(map[int64]bool, len(ingredients))
	for _, it := range ingredients {
		if seenIngr[it.ID] {
			verr.Add("ingredients", "ingredients must not repeat")
			break
		}
		seenIngr[it.ID] = true
	}
	seenTag := make(map[int64]bool, len(tags))
	for _, id := range tags {
		if seenTag[id] {
			verr.Add("tags", "tags must not repeat")
			break
		}
		seenTag[id] = true
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

// resolveImage возвращает байты и расширение картинки из загруженного файла
// или из data URI. Пустой ввод даёт nil без ошибки.
func resolveImage(image string, data []byte, ext string) ([]byte, string, error) {
	if len(data) > 0 {
		ext = datauri.NormalizeExt(ext)
		if !datauri.ValidExt(ext) {
			return nil, "", models.NewValidationError("image", "unsupported image type")
		}
		return data, ext, nil
	}
	if image == "" {
		return nil, "", nil
	}
	if !datauri.IsDataURI(image) {
		return nil, "", models.NewValidationError("image", "expected data:image/<ext>;base64,<payload> or a file upload")
	}
	decoded, ext, err := datauri.Decode(image)
	if err != nil {
		return nil, "", models.NewValidationError("image", "invalid image: "+err.Error())
	}
	return decoded, ext, nil
}
