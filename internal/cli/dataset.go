package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/magabrotheeeer/foodgram/internal/models"
)

// LoadIngredients читает список ингредиентов из .json, .yaml или .yml файла.
func LoadIngredients(path string) ([]models.Ingredient, error) {
	var items []models.Ingredient
	if err := decodeFile(path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// LoadTags читает список тегов из .json, .yaml или .yml файла.
func LoadTags(path string) ([]models.Tag, error) {
	var tags []models.Tag
	if err := decodeFile(path, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func decodeFile(path string, v any) error {
	const op = "cli.decodeFile"

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, v)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%s: unsupported file extension %q", op, ext)
	}
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return nil
}
