package models

import "time"

// Ограничения времени приготовления в минутах и минимального количества ингредиента.
const (
	MinCookingTime = 1
	MaxCookingTime = 720
	MinAmount      = 1
)

// Recipe — запись рецепта в хранилище.
type Recipe struct {
	ID          int64
	AuthorID    int64
	Name        string
	Text        string
	Image       string
	CookingTime int
	PubDate     time.Time
}

// RecipeIngredient — сколько единиц ингредиента требуется рецепту.
// Name и MeasurementUnit заполняются при чтении из справочника.
type RecipeIngredient struct {
	RecipeID        int64
	IngredientID    int64
	Name            string
	MeasurementUnit string
	Amount          int
}

// IngredientAmount — ссылка на ингредиент с количеством во входных данных.
type IngredientAmount struct {
	ID     int64 `json:"id" validate:"required,gt=0"`
	Amount int   `json:"amount" validate:"required,min=1"`
}

// RecipeInput — данные создания рецепта. Картинка приходит либо строкой data URI
// в поле Image, либо файлом multipart (тогда заполняются ImageData и ImageExt).
type RecipeInput struct {
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []int64            `json:"tags" validate:"required,min=1,dive,gt=0"`
	Image       string             `json:"image"`
	Name        string             `json:"name" validate:"required,max=256"`
	Text        string             `json:"text" validate:"required"`
	CookingTime int                `json:"cooking_time" validate:"required,min=1,max=720"`

	ImageData []byte `json:"-"`
	ImageExt  string `json:"-"`
}

// RecipePatch — частичное обновление рецепта: nil означает «оставить как есть».
// Переданные Tags и Ingredients полностью заменяют прежние наборы.
type RecipePatch struct {
	Ingredients *[]IngredientAmount `json:"ingredients"`
	Tags        *[]int64            `json:"tags"`
	Image       *string             `json:"image"`
	Name        *string             `json:"name" validate:"omitempty,min=1,max=256"`
	Text        *string             `json:"text" validate:"omitempty,min=1"`
	CookingTime *int                `json:"cooking_time" validate:"omitempty,min=1,max=720"`

	ImageData []byte `json:"-"`
	ImageExt  string `json:"-"`
}

// HasImage сообщает, что в обновлении передана новая картинка.
func (p RecipePatch) HasImage() bool {
	return len(p.ImageData) > 0 || (p.Image != nil && *p.Image != "")
}

// RecipeUpdate — уже проверенное обновление, которое применяет хранилище.
type RecipeUpdate struct {
	Name        *string
	Text        *string
	Image       *string
	CookingTime *int
	Tags        []int64
	Ingredients []IngredientAmount
	ReplaceTags bool
	ReplaceIngr bool
}

// RecipeFilter — фильтры списка рецептов. Условия объединяются через AND,
// несколько тегов — через OR. ViewerID == 0 отключает фильтры по связям.
type RecipeFilter struct {
	Author           string
	Tags             []string
	IsFavorited      bool
	IsInShoppingCart bool
	ViewerID         int64
	Limit            int
	Offset           int
}

// ShoppingItem — строка списка покупок: суммарное количество ингредиента.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}
