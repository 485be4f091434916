package recipe

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/foodgram/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateRecipe(ctx context.Context, r models.Recipe, ingredients []models.IngredientAmount, tags []int64) (int64, error) {
	args := m.Called(ctx, r, ingredients, tags)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) UpdateRecipe(ctx context.Context, id int64, upd models.RecipeUpdate) error {
	return m.Called(ctx, id, upd).Error(0)
}

func (m *RepoMock) DeleteRecipe(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) GetRecipe(ctx context.Context, id int64) (models.Recipe, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Recipe), args.Error(1)
}

func (m *RepoMock) ListRecipes(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *RepoMock) TagsForRecipes(ctx context.Context, ids []int64) (map[int64][]models.Tag, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int64][]models.Tag), args.Error(1)
}

func (m *RepoMock) IngredientsForRecipes(ctx context.Context, ids []int64) (map[int64][]models.RecipeIngredient, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int64][]models.RecipeIngredient), args.Error(1)
}

func (m *RepoMock) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int64]models.User), args.Error(1)
}

func (m *RepoMock) RelatedTargets(ctx context.Context, kind models.RelationKind, userID int64, ids []int64) (map[int64]bool, error) {
	args := m.Called(ctx, kind, userID, ids)
	return args.Get(0).(map[int64]bool), args.Error(1)
}

type ImagesMock struct{ mock.Mock }

func (m *ImagesMock) Save(ctx context.Context, ext string, data []byte) (string, error) {
	args := m.Called(ctx, ext, data)
	return args.String(0), args.Error(1)
}

func (m *ImagesMock) Delete(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, payload any) error {
	return m.Called(ctx, routingKey, payload).Error(0)
}

type fixture struct {
	repo   *RepoMock
	images *ImagesMock
	events *PublisherMock
	svc    *Service
}

func newFixture() *fixture {
	f := &fixture{repo: new(RepoMock), images: new(ImagesMock), events: new(PublisherMock)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = New(f.repo, f.images, f.events, log, "")
	return f
}

var (
	ctx    = context.Background()
	alice  = models.Identity{UserID: 1, Username: "alice", Role: models.RoleUser}
	bob    = models.Identity{UserID: 2, Username: "bob", Role: models.RoleUser}
	admin  = models.Identity{UserID: 3, Username: "root", Role: models.RoleAdmin}
	pngURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
)

// expectViews настраивает пакетные запросы сборки представления одного рецепта.
func (f *fixture) expectViews(r models.Recipe, ident models.Identity, tags []models.Tag, ings []models.RecipeIngredient) {
	ids := []int64{r.ID}
	f.repo.On("TagsForRecipes", ctx, ids).Return(map[int64][]models.Tag{r.ID: tags}, nil)
	f.repo.On("IngredientsForRecipes", ctx, ids).Return(map[int64][]models.RecipeIngredient{r.ID: ings}, nil)
	f.repo.On("GetUsersByIDs", ctx, []int64{r.AuthorID}).
		Return(map[int64]models.User{r.AuthorID: {ID: r.AuthorID, Username: "alice"}}, nil)
	if !ident.IsAnonymous() {
		f.repo.On("RelatedTargets", ctx, models.RelationFavorite, ident.UserID, ids).Return(map[int64]bool{}, nil)
		f.repo.On("RelatedTargets", ctx, models.RelationShoppingCart, ident.UserID, ids).Return(map[int64]bool{}, nil)
		f.repo.On("RelatedTargets", ctx, models.RelationSubscription, ident.UserID, []int64{r.AuthorID}).
			Return(map[int64]bool{}, nil)
	}
}

func validInput() models.RecipeInput {
	return models.RecipeInput{
		Ingredients: []models.IngredientAmount{{ID: 1, Amount: 2}, {ID: 2, Amount: 3}},
		Tags:        []int64{1, 2},
		Image:       pngURI,
		Name:        "Блины",
		Text:        "Смешать и пожарить",
		CookingTime: 30,
	}
}

func TestCreate_PersistsIngredientsAndTags(t *testing.T) {
	f := newFixture()
	in := validInput()

	f.images.On("Save", ctx, "png", []byte("png-bytes")).Return("/media/recipes/images/a.png", nil).Once()
	f.repo.On("CreateRecipe", ctx, models.Recipe{
		AuthorID: alice.UserID, Name: "Блины", Text: "Смешать и пожарить",
		Image: "/media/recipes/images/a.png", CookingTime: 30,
	}, in.Ingredients, in.Tags).Return(int64(10), nil).Once()
	f.events.On("Publish", ctx, DefaultRoutingKey, models.RecipePublishedEvent{
		RecipeID: 10, AuthorID: alice.UserID, Author: "alice", Name: "Блины",
	}).Return(nil).Once()

	stored := models.Recipe{ID: 10, AuthorID: alice.UserID, Name: "Блины", CookingTime: 30, PubDate: time.Now()}
	f.repo.On("GetRecipe", ctx, int64(10)).Return(stored, nil).Once()
	f.expectViews(stored, alice,
		[]models.Tag{{ID: 1, Slug: "breakfast"}, {ID: 2, Slug: "lunch"}},
		[]models.RecipeIngredient{
			{RecipeID: 10, IngredientID: 1, Name: "мука", MeasurementUnit: "г", Amount: 2},
			{RecipeID: 10, IngredientID: 2, Name: "молоко", MeasurementUnit: "мл", Amount: 3},
		})

	view, err := f.svc.Create(ctx, alice, in)
	require.NoError(t, err)
	assert.Equal(t, int64(10), view.ID)
	require.Len(t, view.Ingredients, 2)
	assert.Equal(t, 2, view.Ingredients[0].Amount)
	assert.Equal(t, 3, view.Ingredients[1].Amount)
	require.Len(t, view.Tags, 2)
	assert.Equal(t, "alice", view.Author.Username)

	f.repo.AssertExpectations(t)
	f.images.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestCreate_CookingTimeBounds(t *testing.T) {
	tests := []struct {
		cookingTime int
		wantErr     bool
	}{
		{cookingTime: 0, wantErr: true},
		{cookingTime: 1},
		{cookingTime: 720},
		{cookingTime: 721, wantErr: true},
	}

	for _, tt := range tests {
		f := newFixture()
		in := validInput()
		in.CookingTime = tt.cookingTime

		if !tt.wantErr {
			stored := models.Recipe{ID: 5, AuthorID: alice.UserID, CookingTime: tt.cookingTime}
			f.images.On("Save", ctx, "png", mock.Anything).Return("/media/x.png", nil)
			f.repo.On("CreateRecipe", ctx, mock.Anything, mock.Anything, mock.Anything).Return(int64(5), nil)
			f.events.On("Publish", ctx, mock.Anything, mock.Anything).Return(nil)
			f.repo.On("GetRecipe", ctx, int64(5)).Return(stored, nil)
			f.expectViews(stored, alice, nil, nil)
		}

		_, err := f.svc.Create(ctx, alice, in)
		if tt.wantErr {
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr, "cooking_time=%d", tt.cookingTime)
			assert.Contains(t, verr.Fields, "cooking_time")
			f.repo.AssertNotCalled(t, "CreateRecipe", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		} else {
			require.NoError(t, err, "cooking_time=%d", tt.cookingTime)
		}
	}
}

func TestCreate_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *models.RecipeInput)
		field  string
	}{
		{name: "no ingredients", mutate: func(in *models.RecipeInput) { in.Ingredients = nil }, field: "ingredients"},
		{name: "empty tags", mutate: func(in *models.RecipeInput) { in.Tags = []int64{} }, field: "tags"},
		{name: "zero amount", mutate: func(in *models.RecipeInput) { in.Ingredients[0].Amount = 0 }, field: "ingredients[0].amount"},
		{name: "repeated ingredient", mutate: func(in *models.RecipeInput) { in.Ingredients[1].ID = 1 }, field: "ingredients"},
		{name: "repeated tag", mutate: func(in *models.RecipeInput) { in.Tags = []int64{1, 1} }, field: "tags"},
		{name: "missing image", mutate: func(in *models.RecipeInput) { in.Image = "" }, field: "image"},
		{name: "plain url image", mutate: func(in *models.RecipeInput) { in.Image = "http://x/y.png" }, field: "image"},
		{name: "broken base64", mutate: func(in *models.RecipeInput) { in.Image = "data:image/png;base64,!!!" }, field: "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			in := validInput()
			tt.mutate(&in)

			_, err := f.svc.Create(ctx, alice, in)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			f.images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_Anonymous(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(ctx, models.Anonymous(), validInput())
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestCreate_StoreFailureRemovesImage(t *testing.T) {
	f := newFixture()
	f.images.On("Save", ctx, "png", mock.Anything).Return("/media/recipes/images/a.png", nil).Once()
	f.repo.On("CreateRecipe", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), models.NewValidationError("tags", "unknown tag")).Once()
	f.images.On("Delete", ctx, "/media/recipes/images/a.png").Return(nil).Once()

	_, err := f.svc.Create(ctx, alice, validInput())
	require.ErrorIs(t, err, models.ErrValidation)
	f.images.AssertExpectations(t)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	stored := models.Recipe{ID: 7, AuthorID: alice.UserID}
	f.images.On("Save", ctx, "png", mock.Anything).Return("/media/x.png", nil)
	f.repo.On("CreateRecipe", ctx, mock.Anything, mock.Anything, mock.Anything).Return(int64(7), nil)
	f.events.On("Publish", ctx, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	f.repo.On("GetRecipe", ctx, int64(7)).Return(stored, nil)
	f.expectViews(stored, alice, nil, nil)

	view, err := f.svc.Create(ctx, alice, validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(7), view.ID)
}

func TestUpdate_OnlyIngredientsKeepsTags(t *testing.T) {
	f := newFixture()
	stored := models.Recipe{ID: 10, AuthorID: alice.UserID, Name: "Блины", Image: "/media/old.png"}
	newIngredients := []models.IngredientAmount{{ID: 3, Amount: 4}}

	f.repo.On("GetRecipe", ctx, int64(10)).Return(stored, nil)
	f.repo.On("UpdateRecipe", ctx, int64(10), models.RecipeUpdate{
		Ingredients: newIngredients,
		ReplaceIngr: true,
	}).Return(nil).Once()
	f.expectViews(stored, alice, []models.Tag{{ID: 1}}, []models.RecipeIngredient{{RecipeID: 10, IngredientID: 3, Amount: 4}})

	view, err := f.svc.Update(ctx, alice, 10, models.RecipePatch{Ingredients: &newIngredients})
	require.NoError(t, err)
	require.Len(t, view.Ingredients, 1)
	assert.Equal(t, int64(3), view.Ingredients[0].ID)
	require.Len(t, view.Tags, 1)
	f.repo.AssertExpectations(t)
	f.images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUpdate_NewImageReplacesOld(t *testing.T) {
	f := newFixture()
	stored := models.Recipe{ID: 10, AuthorID: alice.UserID, Image: "/media/old.png"}
	image := pngURI
	newURL := "/media/new.png"

	f.repo.On("GetRecipe", ctx, int64(10)).Return(stored, nil)
	f.images.On("Save", ctx, "png", []byte("png-bytes")).Return(newURL, nil).Once()
	f.repo.On("UpdateRecipe", ctx, int64(10), models.RecipeUpdate{Image: &newURL}).Return(nil).Once()
	f.images.On("Delete", ctx, "/media/old.png").Return(nil).Once()
	f.expectViews(stored, alice, nil, nil)

	_, err := f.svc.Update(ctx, alice, 10, models.RecipePatch{Image: &image})
	require.NoError(t, err)
	f.images.AssertExpectations(t)
}

func TestUpdate_Validation(t *testing.T) {
	empty := []models.IngredientAmount{}
	noTags := []int64{}
	blank := "   "
	tooLong := 721

	tests := []struct {
		name  string
		patch models.RecipePatch
		field string
	}{
		{name: "empty ingredients", patch: models.RecipePatch{Ingredients: &empty}, field: "ingredients"},
		{name: "empty tags", patch: models.RecipePatch{Tags: &noTags}, field: "tags"},
		{name: "blank name", patch: models.RecipePatch{Name: &blank}, field: "name"},
		{name: "cooking time", patch: models.RecipePatch{CookingTime: &tooLong}, field: "cooking_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.On("GetRecipe", ctx, int64(10)).Return(models.Recipe{ID: 10, AuthorID: alice.UserID}, nil)

			_, err := f.svc.Update(ctx, alice, 10, tt.patch)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			f.repo.AssertNotCalled(t, "UpdateRecipe", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateAndRemove_Authorization(t *testing.T) {
	stored := models.Recipe{ID: 10, AuthorID: alice.UserID, Image: "/media/a.png"}
	name := "Чужой"

	t.Run("update by another user is forbidden", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetRecipe", ctx, int64(10)).Return(stored, nil)

		_, err := f.svc.Update(ctx, bob, 10, models.RecipePatch{Name: &name})
		require.ErrorIs(t, err, models.ErrForbidden)
		f.repo.AssertNotCalled(t, "UpdateRecipe", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin cannot update", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetRecipe", ctx, int64(10)).Return(stored, nil)

		_, err := f.svc.Update(ctx, admin, 10, models.RecipePatch{Name: &name})
		require.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("delete by another user is forbidden", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetRecipe", ctx, int64(10)).Return(stored, nil)

		err := f.svc.Remove(ctx, bob, 10)
		require.ErrorIs(t, err, models.ErrForbidden)
		f.repo.AssertNotCalled(t, "DeleteRecipe", mock.Anything, mock.Anything)
	})

	t.Run("admin can delete", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetRecipe", ctx, int64(10)).Return(stored, nil)
		f.repo.On("DeleteRecipe", ctx, int64(10)).Return(int64(1), nil).Once()
		f.images.On("Delete", ctx, "/media/a.png").Return(nil).Once()

		require.NoError(t, f.svc.Remove(ctx, admin, 10))
		f.repo.AssertExpectations(t)
	})

	t.Run("author can delete", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetRecipe", ctx, int64(10)).Return(stored, nil)
		f.repo.On("DeleteRecipe", ctx, int64(10)).Return(int64(1), nil).Once()
		f.images.On("Delete", ctx, "/media/a.png").Return(errors.New("gone")).Once()

		require.NoError(t, f.svc.Remove(ctx, alice, 10))
	})

	t.Run("missing recipe", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetRecipe", ctx, int64(99)).Return(models.Recipe{}, models.NotFoundf("not found"))

		err := f.svc.Remove(ctx, alice, 99)
		require.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestList_AnonymousSkipsRelationLookups(t *testing.T) {
	f := newFixture()
	stored := models.Recipe{ID: 1, AuthorID: alice.UserID}
	filter := models.RecipeFilter{IsFavorited: true}

	f.repo.On("ListRecipes", ctx, filter).Return([]models.Recipe{stored}, nil).Once()
	f.expectViews(stored, models.Anonymous(), nil, nil)

	views, err := f.svc.List(ctx, models.Anonymous(), filter)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].IsFavorited)
	f.repo.AssertNotCalled(t, "RelatedTargets", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestList_SetsViewerAndFlags(t *testing.T) {
	f := newFixture()
	stored := models.Recipe{ID: 1, AuthorID: alice.UserID}

	f.repo.On("ListRecipes", ctx, models.RecipeFilter{IsInShoppingCart: true, ViewerID: bob.UserID}).
		Return([]models.Recipe{stored}, nil).Once()
	f.repo.On("TagsForRecipes", ctx, []int64{1}).Return(map[int64][]models.Tag{}, nil)
	f.repo.On("IngredientsForRecipes", ctx, []int64{1}).Return(map[int64][]models.RecipeIngredient{}, nil)
	f.repo.On("GetUsersByIDs", ctx, []int64{alice.UserID}).
		Return(map[int64]models.User{alice.UserID: {ID: alice.UserID, Username: "alice"}}, nil)
	f.repo.On("RelatedTargets", ctx, models.RelationFavorite, bob.UserID, []int64{1}).Return(map[int64]bool{}, nil)
	f.repo.On("RelatedTargets", ctx, models.RelationShoppingCart, bob.UserID, []int64{1}).Return(map[int64]bool{1: true}, nil)
	f.repo.On("RelatedTargets", ctx, models.RelationSubscription, bob.UserID, []int64{alice.UserID}).
		Return(map[int64]bool{alice.UserID: true}, nil)

	views, err := f.svc.List(ctx, bob, models.RecipeFilter{IsInShoppingCart: true})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].IsInShoppingCart)
	assert.False(t, views[0].IsFavorited)
	assert.True(t, views[0].Author.IsSubscribed)
	assert.Equal(t, []models.Tag{}, views[0].Tags)
}
