package models

import "time"

// Представления для ответов API. Запись принимает только идентификаторы,
// а чтение всегда возвращает вложенные денормализованные объекты.

// UserView — профиль пользователя.
type UserView struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// RecipeIngredientView — ингредиент рецепта с названием и единицей измерения.
type RecipeIngredientView struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView — полное представление рецепта.
type RecipeView struct {
	ID               int64                  `json:"id"`
	Tags             []Tag                  `json:"tags"`
	Author           UserView               `json:"author"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
	PubDate          time.Time              `json:"pub_date"`
}

// RecipeShortView — краткое представление рецепта для избранного, корзины и подписок.
type RecipeShortView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// AuthorView — автор вместе с его рецептами и их общим количеством.
type AuthorView struct {
	UserView
	Recipes      []RecipeShortView `json:"recipes"`
	RecipesCount int               `json:"recipes_count"`
}

// ToUserView преобразует пользователя в представление.
func ToUserView(u User, isSubscribed bool) UserView {
	return UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

// ToRecipeShortView преобразует рецепт в краткое представление.
func ToRecipeShortView(r Recipe) RecipeShortView {
	return RecipeShortView{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// ToAuthorView собирает представление автора с рецептами.
func ToAuthorView(u User, isSubscribed bool, recipes []Recipe, count int) AuthorView {
	short := make([]RecipeShortView, 0, len(recipes))
	for _, r := range recipes {
		short = append(short, ToRecipeShortView(r))
	}
	return AuthorView{
		UserView:     ToUserView(u, isSubscribed),
		Recipes:      short,
		RecipesCount: count,
	}
}

// RecipeFlags — признаки связи рецепта с тем, кто его читает.
type RecipeFlags struct {
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// ToRecipeView собирает полное представление рецепта.
func ToRecipeView(r Recipe, author User, tags []Tag, ingredients []RecipeIngredient, flags RecipeFlags) RecipeView {
	if tags == nil {
		tags = []Tag{}
	}
	ings := make([]RecipeIngredientView, 0, len(ingredients))
	for _, ri := range ingredients {
		ings = append(ings, RecipeIngredientView{
			ID:              ri.IngredientID,
			Name:            ri.Name,
			MeasurementUnit: ri.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}
	return RecipeView{
		ID:               r.ID,
		Tags:             tags,
		Author:           ToUserView(author, flags.AuthorSubscribed),
		Ingredients:      ings,
		IsFavorited:      flags.IsFavorited,
		IsInShoppingCart: flags.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		PubDate:          r.PubDate,
	}
}

// ToRecipe переносит поля входных данных в запись рецепта.
func (in RecipeInput) ToRecipe(authorID int64, image string) Recipe {
	return Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		Image:       image,
		CookingTime: in.CookingTime,
	}
}
