// Package validate настраивает общий валидатор входных данных
// и правила для имени пользователя.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/foodgram/internal/models"
)

// ReservedUsername занят под адрес собственного профиля /users/me.
const ReservedUsername = "me"

var (
	// ErrReservedUsername — имя совпадает с зарезервированным.
	ErrReservedUsername = errors.New("username \"me\" is reserved")
	// ErrUsernameChars — имя содержит недопустимые символы.
	ErrUsernameChars = errors.New("username may contain only letters, digits and . @ + - _")
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// Username проверяет имя пользователя.
func Username(value string) error {
	if value == ReservedUsername {
		return ErrReservedUsername
	}
	if !usernamePattern.MatchString(value) {
		return ErrUsernameChars
	}
	return nil
}

// New возвращает валидатор с зарегистрированным тегом username.
// Поля в ошибках называются по json-тегам.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return Username(fl.Field().String()) == nil
	})
	return v
}

// ToValidationError превращает ошибки валидатора в *models.ValidationError
// с сообщением на каждое поле. Прочие ошибки возвращаются как есть.
func ToValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	result := &models.ValidationError{}
	for _, fe := range verrs {
		result.Add(fieldPath(fe), message(fe))
	}
	return result
}

// fieldPath отрезает имя корневой структуры: "RecipeInput.ingredients[0].amount" -> "ingredients[0].amount".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "username":
		if s, ok := fe.Value().(string); ok {
			if err := Username(s); err != nil {
				return err.Error()
			}
		}
		return ErrUsernameChars.Error()
	case "hexcolor":
		return "must be a hex color like #ffffff"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}
