// Package models содержит доменные структуры сервиса рецептов: пользователей,
// рецепты, теги, ингредиенты и связи между ними, а также входные DTO,
// представления для ответов API и функции преобразования между ними.
package models

import "time"

// User представляет зарегистрированного пользователя.
type User struct {
	ID           int64
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// RegisterInput — данные регистрации из JSON-запроса.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=150"`
}

// ToUser переносит данные регистрации в запись пользователя с ролью user.
func (in RegisterInput) ToUser(passwordHash string) User {
	return User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: passwordHash,
		Role:         RoleUser,
	}
}
