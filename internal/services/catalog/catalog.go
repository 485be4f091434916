// Package catalog отдаёт справочники тегов и ингредиентов и загружает их пакетно.
// Список тегов кешируется: он читается на каждой странице и почти не меняется.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"golang.org/x/sync/singleflight"

	"github.com/magabrotheeeer/foodgram/internal/lib/sl"
	"github.com/magabrotheeeer/foodgram/internal/lib/validate"
	"github.com/magabrotheeeer/foodgram/internal/metrics"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// TagsCacheKey — ключ кеша со списком всех тегов.
const TagsCacheKey = "tags:all"

// Repository определяет методы хранилища справочников.
type Repository interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id int64) (models.Tag, error)
	ImportTags(ctx context.Context, tags []models.Tag) (int, error)
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (models.Ingredient, error)
	ImportIngredients(ctx context.Context, items []models.Ingredient) (int, error)
}

// Cache описывает методы для кеширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service реализует чтение и импорт справочников.
type Service struct {
	repo     Repository
	cache    Cache
	log      *slog.Logger
	ttl      time.Duration
	validate *validator.Validate
	group    singleflight.Group
}

// New создаёт сервис справочников.
func New(repo Repository, cache Cache, log *slog.Logger, ttl time.Duration) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		log:      log,
		ttl:      ttl,
		validate: validate.New(),
	}
}

// ListTags возвращает все теги. Одновременные промахи кеша приводят
// к одному запросу в хранилище. Внутри группы кеш проверяется повторно:
// запрос, опоздавший к завершившейся загрузке, получает уже закешированный список.
func (s *Service) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	found, err := s.cache.Get(ctx, TagsCacheKey, &tags)
	if err != nil {
		s.log.Warn("failed to read tags from cache", sl.Err(err))
	}
	metrics.RecordCacheLookup(found)
	if found {
		return tags, nil
	}

	v, err, _ := s.group.Do(TagsCacheKey, func() (any, error) {
		var cached []models.Tag
		if ok, _ := s.cache.Get(ctx, TagsCacheKey, &cached); ok {
			return cached, nil
		}
		tags, err := s.repo.ListTags(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, TagsCacheKey, tags, s.ttl); err != nil {
			s.log.Warn("failed to cache tags", sl.Err(err))
		}
		return tags, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Tag), nil
}

// GetTag возвращает тег по ID. Тег, которого нет в закешированном списке,
// ищется в хранилище: его могли добавить в обход этого процесса. Найденный
// там тег означает, что список устарел, и кеш списка сбрасывается.
func (s *Service) GetTag(ctx context.Context, id int64) (models.Tag, error) {
	tags, err := s.ListTags(ctx)
	if err != nil {
		return models.Tag{}, err
	}
	for _, t := range tags {
		if t.ID == id {
			return t, nil
		}
	}

	tag, err := s.repo.GetTag(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Tag{}, models.NotFoundf("tag %d not found", id)
		}
		return models.Tag{}, err
	}
	if err := s.cache.Invalidate(ctx, TagsCacheKey); err != nil {
		s.log.Warn("failed to invalidate tags cache", sl.Err(err))
	}
	return tag, nil
}

// ListIngredients ищет ингредиенты по началу названия.
func (s *Service) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	return s.repo.ListIngredients(ctx, strings.TrimSpace(namePrefix))
}

// GetIngredient возвращает ингредиент по ID.
func (s *Service) GetIngredient(ctx context.Context, id int64) (models.Ingredient, error) {
	return s.repo.GetIngredient(ctx, id)
}

// ImportIngredients проверяет и сохраняет ингредиенты. Уже существующие
// пары (название, единица) пропускаются.
func (s *Service) ImportIngredients(ctx context.Context, items []models.Ingredient) (int, error) {
	const op = "catalog.ImportIngredients"

	verr := &models.ValidationError{}
	for i := range items {
		items[i].Name = strings.TrimSpace(items[i].Name)
		items[i].MeasurementUnit = strings.TrimSpace(items[i].MeasurementUnit)
		if err := s.validate.Struct(items[i]); err != nil {
			verr.Add(fmt.Sprintf("ingredients[%d]", i), validate.ToValidationError(err).Error())
		}
	}
	if !verr.Empty() {
		return 0, verr
	}

	n, err := s.repo.ImportIngredients(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("ingredients imported", slog.Int("total", len(items)), slog.Int("inserted", n))
	return n, nil
}

// ImportTags проверяет и сохраняет теги, затем сбрасывает кеш списка тегов.
// Пустой цвет заменяется на DefaultTagColor.
func (s *Service) ImportTags(ctx context.Context, tags []models.Tag) (int, error) {
	const op = "catalog.ImportTags"

	verr := &models.ValidationError{}
	seen := make(map[string]int)
	for i := range tags {
		t := &tags[i]
		t.Name = strings.TrimSpace(t.Name)
		t.Slug = strings.TrimSpace(t.Slug)
		t.Color = strings.ToLower(strings.TrimSpace(t.Color))
		if t.Color == "" {
			t.Color = models.DefaultTagColor
		}
		if err := s.validate.Struct(*t); err != nil {
			verr.Add(fmt.Sprintf("tags[%d]", i), validate.ToValidationError(err).Error())
			continue
		}
		for _, key := range []string{"name:" + t.Name, "slug:" + t.Slug, "color:" + t.Color} {
			if prev, ok := seen[key]; ok {
				return 0, models.Conflictf("tags[%d] repeats %s of tags[%d]", i, key, prev)
			}
			seen[key] = i
		}
	}
	if !verr.Empty() {
		return 0, verr
	}

	n, err := s.repo.ImportTags(ctx, tags)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(ctx, TagsCacheKey); err != nil {
		s.log.Warn("failed to invalidate tags cache", sl.Err(err))
	}
	s.log.Info("tags imported", slog.Int("inserted", n))
	return n, nil
}
