// Package form разбирает тело запроса создания и изменения рецепта.
// Принимается JSON с картинкой в виде data URI или multipart/form-data
// с файлом в поле image; ingredients и tags в multipart передаются JSON-строкой,
// tags также можно повторить несколькими полями.
package form

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	json "github.com/goccy/go-json"

	"github.com/magabrotheeeer/foodgram/internal/models"
)

// MaxImageSize — наибольший размер загружаемой картинки.
const MaxImageSize = 10 << 20

// ErrMalformed — тело запроса не удалось разобрать.
var ErrMalformed = errors.New("malformed request body")

// DecodeInput читает данные создания рецепта.
func DecodeInput(r *http.Request) (models.RecipeInput, error) {
	var in models.RecipeInput
	if !isMultipart(r) {
		if err := render.DecodeJSON(r.Body, &in); err != nil {
			return models.RecipeInput{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return in, nil
	}

	if err := r.ParseMultipartForm(MaxImageSize); err != nil {
		return models.RecipeInput{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var err error
	in.Name = r.FormValue("name")
	in.Text = r.FormValue("text")
	in.Image = r.FormValue("image")
	if raw := r.FormValue("cooking_time"); raw != "" {
		if in.CookingTime, err = strconv.Atoi(raw); err != nil {
			return models.RecipeInput{}, models.NewValidationError("cooking_time", "a valid integer is required")
		}
	}
	if in.Ingredients, err = ingredients(r); err != nil {
		return models.RecipeInput{}, err
	}
	if in.Tags, err = tags(r); err != nil {
		return models.RecipeInput{}, err
	}
	if in.ImageData, in.ImageExt, err = imageFile(r); err != nil {
		return models.RecipeInput{}, err
	}
	return in, nil
}

// DecodePatch читает частичное обновление рецепта. Отсутствующие поля остаются nil.
func DecodePatch(r *http.Request) (models.RecipePatch, error) {
	var p models.RecipePatch
	if !isMultipart(r) {
		if err := render.DecodeJSON(r.Body, &p); err != nil {
			return models.RecipePatch{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return p, nil
	}

	if err := r.ParseMultipartForm(MaxImageSize); err != nil {
		return models.RecipePatch{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	form := r.MultipartForm.Value
	if v, ok := form["name"]; ok && len(v) > 0 {
		p.Name = &v[0]
	}
	if v, ok := form["text"]; ok && len(v) > 0 {
		p.Text = &v[0]
	}
	if v, ok := form["image"]; ok && len(v) > 0 {
		p.Image = &v[0]
	}
	if v, ok := form["cooking_time"]; ok && len(v) > 0 {
		n, err := strconv.Atoi(v[0])
		if err != nil {
			return models.RecipePatch{}, models.NewValidationError("cooking_time", "a valid integer is required")
		}
		p.CookingTime = &n
	}
	if _, ok := form["ingredients"]; ok {
		items, err := ingredients(r)
		if err != nil {
			return models.RecipePatch{}, err
		}
		p.Ingredients = &items
	}
	if _, ok := form["tags"]; ok {
		ids, err := tags(r)
		if err != nil {
			return models.RecipePatch{}, err
		}
		p.Tags = &ids
	}

	var err error
	if p.ImageData, p.ImageExt, err = imageFile(r); err != nil {
		return models.RecipePatch{}, err
	}
	return p, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func ingredients(r *http.Request) ([]models.IngredientAmount, error) {
	raw := r.FormValue("ingredients")
	if raw == "" {
		return nil, nil
	}
	var items []models.IngredientAmount
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, models.NewValidationError("ingredients", `expected a JSON list like [{"id": 1, "amount": 10}]`)
	}
	return items, nil
}

func tags(r *http.Request) ([]int64, error) {
	values := r.MultipartForm.Value["tags"]
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var ids []int64
		if err := json.Unmarshal([]byte(values[0]), &ids); err != nil {
			return nil, models.NewValidationError("tags", "expected a JSON list of tag ids")
		}
		return ids, nil
	}

	ids := make([]int64, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, models.NewValidationError("tags", "tag ids must be integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func imageFile(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(data) > MaxImageSize {
		return nil, "", models.NewValidationError("image", "image is too large")
	}
	return data, filepath.Ext(header.Filename), nil
}
