package models

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity — личность автора запроса, которую middleware кладёт в контекст.
// Нулевое значение означает анонимный запрос.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

// Anonymous возвращает анонимную личность.
func Anonymous() Identity {
	return Identity{}
}

// IsAnonymous сообщает, что запрос пришёл без учётных данных.
func (i Identity) IsAnonymous() bool {
	return i.UserID == 0
}

// IsAdmin сообщает, что у пользователя роль администратора.
func (i Identity) IsAdmin() bool {
	return !i.IsAnonymous() && i.Role == RoleAdmin
}
