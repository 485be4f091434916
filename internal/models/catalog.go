package models

// DefaultTagColor — цвет тега, если он не задан при импорте.
const DefaultTagColor = "#ffffff"

// Tag — справочный тег рецепта.
type Tag struct {
	ID    int64  `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name" validate:"required,max=200"`
	Slug  string `json:"slug" yaml:"slug" validate:"required,max=200"`
	Color string `json:"color" yaml:"color" validate:"omitempty,hexcolor,len=7"`
}

// Ingredient — справочный ингредиент с единицей измерения.
type Ingredient struct {
	ID              int64  `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" yaml:"measurement_unit" validate:"required,max=200"`
}
