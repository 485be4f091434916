package validate

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/foodgram/internal/models"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr error
	}{
		{name: "reserved me", value: "me", wantErr: ErrReservedUsername},
		{name: "me2 allowed", value: "me2"},
		{name: "with space", value: "john doe", wantErr: ErrUsernameChars},
		{name: "allowed symbols", value: "chef.bob+1@kitchen-team_x"},
		{name: "cyrillic letters", value: "повар"},
		{name: "slash", value: "a/b", wantErr: ErrUsernameChars},
		{name: "empty", value: "", wantErr: ErrUsernameChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Username(tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_RegisterInput(t *testing.T) {
	v := New()
	base := models.RegisterInput{
		Email:     "cook@example.com",
		FirstName: "Ivan",
		LastName:  "Petrov",
		Password:  "secret-pass",
	}

	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "me rejected", username: "me", wantErr: true},
		{name: "me2 accepted", username: "me2"},
		{name: "space rejected", username: "bad name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			in.Username = tt.username
			err := v.Struct(in)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, "username", verrs[0].Field())
		})
	}
}

func TestNew_RecipeInputCookingTime(t *testing.T) {
	v := New()
	in := models.RecipeInput{
		Ingredients: []models.IngredientAmount{{ID: 1, Amount: 2}},
		Tags:        []int64{1},
		Name:        "Борщ",
		Text:        "Варить",
	}

	for _, tc := range []struct {
		cookingTime int
		ok          bool
	}{
		{0, false}, {1, true}, {720, true}, {721, false},
	} {
		in.CookingTime = tc.cookingTime
		err := v.Struct(in)
		if tc.ok {
			assert.NoError(t, err, "cooking_time=%d", tc.cookingTime)
		} else {
			assert.Error(t, err, "cooking_time=%d", tc.cookingTime)
		}
	}
}

func TestNew_RecipeInputAmount(t *testing.T) {
	v := New()
	in := models.RecipeInput{
		Ingredients: []models.IngredientAmount{{ID: 1, Amount: 0}},
		Tags:        []int64{1},
		Name:        "Суп",
		Text:        "Варить",
		CookingTime: 10,
	}
	assert.Error(t, v.Struct(in))

	in.Ingredients = nil
	assert.Error(t, v.Struct(in))
}

func TestToValidationError(t *testing.T) {
	v := New()
	in := models.RecipeInput{
		Ingredients: []models.IngredientAmount{{ID: 1, Amount: 0}},
		Tags:        []int64{1},
		Name:        "Суп",
		Text:        "Варить",
		CookingTime: 721,
	}

	err := ToValidationError(v.Struct(in))
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, verr.Fields, "cooking_time")
	assert.Contains(t, verr.Fields, "ingredients[0].amount")
	assert.Equal(t, "must be less than or equal to 720", verr.Fields["cooking_time"])
}

func TestToValidationError_ReservedUsername(t *testing.T) {
	err := ToValidationError(New().Struct(models.RegisterInput{
		Email: "a@example.com", Username: "me", FirstName: "A", LastName: "B", Password: "x",
	}))
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrReservedUsername.Error(), verr.Fields["username"])
}

func TestToValidationError_Passthrough(t *testing.T) {
	assert.NoError(t, ToValidationError(nil))
}
