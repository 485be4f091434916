package models

// RelationKind — вид связи пользователя с объектом.
type RelationKind string

const (
	// RelationFavorite — рецепт в избранном.
	RelationFavorite RelationKind = "favorite"
	// RelationShoppingCart — рецепт в списке покупок.
	RelationShoppingCart RelationKind = "shopping_cart"
	// RelationSubscription — подписка на автора.
	RelationSubscription RelationKind = "subscription"
)

// String реализует fmt.Stringer.
func (k RelationKind) String() string {
	return string(k)
}

// RecipePublishedEvent публикуется в брокер после создания рецепта.
type RecipePublishedEvent struct {
	RecipeID int64  `json:"recipe_id"`
	AuthorID int64  `json:"author_id"`
	Author   string `json:"author"`
	Name     string `json:"name"`
}
