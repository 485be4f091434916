package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/foodgram/internal/models"
)

func TestStorage_CreateAndReadRecipe(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	f := newTestDataFactory(t, storage)
	author := f.user("alice")
	flour := f.ingredient("Flour", "g")
	milk := f.ingredient("Milk", "ml")
	tagA := f.tag("Soup", "soup", "#000001")
	tagB := f.tag("Fast", "fast", "#000002")

	id := f.recipe(author, "Pancakes", []models.IngredientAmount{
		{ID: flour, Amount: 2},
		{ID: milk, Amount: 3},
	}, []int64{tagA, tagB})

	got, err := storage.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Name)
	assert.Equal(t, author, got.AuthorID)
	assert.False(t, got.PubDate.IsZero())

	ings, err := storage.IngredientsForRecipes(ctx, []int64{id})
	require.NoError(t, err)
	require.Len(t, ings[id], 2)
	assert.Equal(t, flour, ings[id][0].IngredientID)
	assert.Equal(t, 2, ings[id][0].Amount)
	assert.Equal(t, "g", ings[id][0].MeasurementUnit)
	assert.Equal(t, milk, ings[id][1].IngredientID)
	assert.Equal(t, 3, ings[id][1].Amount)

	tags, err := storage.TagsForRecipes(ctx, []int64{id})
	require.NoError(t, err)
	require.Len(t, tags[id], 2)
	assert.ElementsMatch(t, []int64{tagA, tagB}, []int64{tags[id][0].ID, tags[id][1].ID})
}

func TestStorage_CreateRecipeIsAtomic(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	f := newTestDataFactory(t, storage)
	author := f.user("alice")
	flour := f.ingredient("Flour", "g")

	_, err := storage.CreateRecipe(ctx, models.Recipe{
		AuthorID: author, Name: "Broken", Text: "t", CookingTime: 5,
	}, []models.IngredientAmount{{ID: flour, Amount: 1}}, []int64{999999})
	require.Error(t, err)

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "tags")
	assert.Equal(t, 0, f.count(`SELECT COUNT(*) FROM recipes WHERE name = 'Broken'`))
	assert.Equal(t, 0, f.count(`SELECT COUNT(*) FROM recipe_ingredients`))
}

func TestStorage_CreateRecipeRejectsCookingTime(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	f := newTestDataFactory(t, storage)
	author := f.user("alice")

	_, err := storage.CreateRecipe(context.Background(), models.Recipe{
		AuthorID: author, Name: "Slow", Text: "t", CookingTime: 721,
	}, nil, nil)
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestStorage_UpdateRecipeReplacesIngredientsKeepsTags(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	f := newTestDataFactory(t, storage)
	author := f.user("alice")
	flour := f.ingredient("Flour", "g")
	milk := f.ingredient("Milk", "ml")
	eggs := f.ingredient("Eggs", "pcs")
	tagA := f.tag("Soup", "soup", "#000001")

	id := f.recipe(author, "Pancakes", []models.IngredientAmount{
		{ID: flour, Amount: 2},
		{ID: milk, Amount: 3},
	}, []int64{tagA})

	err := storage.UpdateRecipe(ctx, id, models.RecipeUpdate{
		Ingredients: []models.IngredientAmount{{ID: eggs, Amount: 4}},
		ReplaceIngr: true,
	})
	require.NoError(t, err)

	ings, err := storage.IngredientsForRecipes(ctx, []int64{id})
	require.NoError(t, err)
	require.Len(t, ings[id], 1)
	assert.Equal(t, eggs, ings[id][0].IngredientID)
	assert.Equal(t, 4, ings[id][0].Amount)

	tags, err := storage.TagsForRecipes(ctx, []int64{id})
	require.NoError(t, err)
	require.Len(t, tags[id], 1)
	assert.Equal(t, tagA, tags[id][0].ID)

	got, err := storage.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Name)
}

func TestStorage_UpdateRecipeFields(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	f := newTestDataFactory(t, storage)
	author := f.user("alice")
	id := f.recipe(author, "Pancakes", nil, nil)

	name := "Crepes"
	cooking := 720
	require.NoError(t, storage.UpdateRecipe(ctx, id, models.RecipeUpdate{Name: &name, CookingTime: &cooking}))

	got, err := storage.GetRecipe(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Crepes", got.Name)
	assert.Equal(t, 720, got.CookingTime)
	assert.Equal(t, "text", got.Text)

	err = storage.UpdateRecipe(ctx, id+1000, models.RecipeUpdate{Name: &name})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_DeleteRecipeCascades(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	f := newTestDataFactory(t, storage)
	author := f.user("alice")
	reader := f.user("bob")
	flour := f.ingredient("Flour", "g")
	id := f.recipe(author, "Pancakes", []models.IngredientAmount{{ID: flour, Amount: 2}}, nil)
	require.NoError(t, storage.AddRelation(ctx, models.RelationFavorite, reader, id))
	require.NoError(t, storage.AddRelation(ctx, models.RelationShoppingCart, reader, id))

	n, err := storage.DeleteRecipe(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, 0, f.count(`SELECT COUNT(*) FROM recipe_ingredients WHERE recipe_id = $1`, id))
	assert.Equal(t, 0, f.count(`SELECT COUNT(*) FROM favorites WHERE recipe_id = $1`, id))
	assert.Equal(t, 0, f.count(`SELECT COUNT(*) FROM shopping_cart WHERE recipe_id = $1`, id))

	_, err = storage.GetRecipe(ctx, id)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_ListRecipesFilters(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	f := newTestDataFactory(t, storage)
	alice := f.user("alice")
	bob := f.user("bob")
	soup := f.tag("Soup", "soup", "#000001")
	fast := f.tag("Fast", "fast", "#000002")

	r1 := f.recipe(alice, "Borscht", nil, []int64{soup})
	r2 := f.recipe(alice, "Toast", nil, []int64{fast})
	r3 := f.recipe(bob, "Ramen", nil, []int64{soup, fast})
	require.NoError(t, storage.AddRelation(ctx, models.RelationFavorite, bob, r1))
	require.NoError(t, storage.AddRelation(ctx, models.RelationShoppingCart, bob, r2))

	ids := func(rs []models.Recipe) []int64 {
		out := make([]int64, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter models.RecipeFilter
		want   []int64
	}{
		{name: "no filter newest first", filter: models.RecipeFilter{}, want: []int64{r3, r2, r1}},
		{name: "by author", filter: models.RecipeFilter{Author: "alice"}, want: []int64{r2, r1}},
		{name: "unknown author", filter: models.RecipeFilter{Author: "nobody"}, want: []int64{}},
		{name: "single tag", filter: models.RecipeFilter{Tags: []string{"soup"}}, want: []int64{r3, r1}},
		{name: "tags are ORed", filter: models.RecipeFilter{Tags: []string{"soup", "fast"}}, want: []int64{r3, r2, r1}},
		{name: "author and tag", filter: models.RecipeFilter{Author: "alice", Tags: []string{"fast"}}, want: []int64{r2}},
		{name: "favorited", filter: models.RecipeFilter{IsFavorited: true, ViewerID: bob}, want: []int64{r1}},
		{name: "in cart", filter: models.RecipeFilter{IsInShoppingCart: true, ViewerID: bob}, want: []int64{r2}},
		{name: "favorited anonymous is no-op", filter: models.RecipeFilter{IsFavorited: true}, want: []int64{r3, r2, r1}},
		{name: "limit and offset", filter: models.RecipeFilter{Limit: 1, Offset: 1}, want: []int64{r2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.ListRecipes(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestStorage_Relations(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	f := newTestDataFactory(t, storage)
	alice := f.user("alice")
	bob := f.user("bob")
	recipe := f.recipe(alice, "Borscht", nil, nil)

	t.Run("double add conflicts and keeps one row", func(t *testing.T) {
		require.NoError(t, storage.AddRelation(ctx, models.RelationFavorite, bob, recipe))
		err := storage.AddRelation(ctx, models.RelationFavorite, bob, recipe)
		require.ErrorIs(t, err, models.ErrConflict)
		assert.Equal(t, 1, f.count(`SELECT COUNT(*) FROM favorites WHERE user_id = $1`, bob))
	})

	t.Run("remove then add again", func(t *testing.T) {
		n, err := storage.RemoveRelation(ctx, models.RelationFavorite, bob, recipe)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = storage.RemoveRelation(ctx, models.RelationFavorite, bob, recipe)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		require.NoError(t, storage.AddRelation(ctx, models.RelationFavorite, bob, recipe))
		exists, err := storage.RelationExists(ctx, models.RelationFavorite, bob, recipe)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("missing recipe is not found", func(t *testing.T) {
		err := storage.AddRelation(ctx, models.RelationShoppingCart, bob, recipe+1000)
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("self subscription conflicts", func(t *testing.T) {
		err := storage.AddRelation(ctx, models.RelationSubscription, alice, alice)
		require.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("related targets", func(t *testing.T) {
		require.NoError(t, storage.AddRelation(ctx, models.RelationSubscription, bob, alice))
		got, err := storage.RelatedTargets(ctx, models.RelationSubscription, bob, []int64{alice, bob})
		require.NoError(t, err)
		assert.Equal(t, map[int64]bool{alice: true}, got)

		subs, err := storage.ListSubscriptions(ctx, bob, 0, 0)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "alice", subs[0].Username)
	})
}

func TestStorage_ShoppingList(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	f := newTestDataFactory(t, storage)
	alice := f.user("alice")
	flour := f.ingredient("Flour", "g")
	flourKg := f.ingredient("Flour", "kg")
	sugar := f.ingredient("Sugar", "g")

	r1 := f.recipe(alice, "Bread", []models.IngredientAmount{{ID: flour, Amount: 100}, {ID: sugar, Amount: 5}}, nil)
	r2 := f.recipe(alice, "Cake", []models.IngredientAmount{{ID: flour, Amount: 150}, {ID: flourKg, Amount: 1}}, nil)

	empty, err := storage.ShoppingList(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, storage.AddRelation(ctx, models.RelationShoppingCart, alice, r1))
	require.NoError(t, storage.AddRelation(ctx, models.RelationShoppingCart, alice, r2))

	got, err := storage.ShoppingList(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []models.ShoppingItem{
		{Name: "Flour", MeasurementUnit: "g", Amount: 250},
		{Name: "Flour", MeasurementUnit: "kg", Amount: 1},
		{Name: "Sugar", MeasurementUnit: "g", Amount: 5},
	}, got)
}

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	f := newTestDataFactory(t, storage)
	id := f.user("alice")

	_, err := storage.CreateUser(ctx, models.User{
		Email: "other@example.com", Username: "alice", FirstName: "A", LastName: "B", PasswordHash: "h",
	})
	require.ErrorIs(t, err, models.ErrConflict)

	_, err = storage.CreateUser(ctx, models.User{
		Email: "alice@example.com", Username: "alice2", FirstName: "A", LastName: "B", PasswordHash: "h",
	})
	require.ErrorIs(t, err, models.ErrConflict)

	u, err := storage.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, models.RoleUser, u.Role)

	_, err = storage.GetUser(ctx, id+1000)
	require.ErrorIs(t, err, models.ErrNotFound)

	users, err := storage.ListUsers(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestStorage_Catalog(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	n, err := storage.ImportIngredients(ctx, []models.Ingredient{
		{Name: "Flour", MeasurementUnit: "g"},
		{Name: "flour_special", MeasurementUnit: "g"},
		{Name: "Milk", MeasurementUnit: "ml"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = storage.ImportIngredients(ctx, []models.Ingredient{
		{Name: "Flour", MeasurementUnit: "g"},
		{Name: "Salt", MeasurementUnit: "g"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := storage.ListIngredients(ctx, "fl")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = storage.ListIngredients(ctx, "flour_")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "flour_special", got[0].Name)

	got, err = storage.ListIngredients(ctx, "ilk")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = storage.ImportTags(ctx, []models.Tag{
		{Name: "Soup", Slug: "soup", Color: "#000001"},
		{Name: "Soup again", Slug: "soup", Color: "#000002"},
	})
	require.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, 0, newTestDataFactory(t, storage).count(`SELECT COUNT(*) FROM tags WHERE slug = 'soup'`))

	tags, err := storage.ListTags(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, tags)

	tag, err := storage.GetTag(ctx, tags[0].ID)
	require.NoError(t, err)
	assert.Equal(t, tags[0], tag)
}
