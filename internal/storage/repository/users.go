package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/foodgram/internal/models"
)

const userColumns = `id, email, username, first_name, last_name, password_hash, role, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// CreateUser сохраняет нового пользователя и возвращает его ID.
// Занятые email или username дают ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	role := user.Role
	if role == "" {
		role = models.RoleUser
	}

	query := `INSERT INTO users (email, username, first_name, last_name, password_hash, role)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int64
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.FirstName, user.LastName, user.PasswordHash, role,
	).Scan(&newID); err != nil {
		return 0, translate(op, err)
	}
	return newID, nil
}

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(ctx context.Context, id int64) (models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return models.User{}, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return models.User{}, translate(op, err)
	}
	return u, nil
}

// GetUserByUsername возвращает пользователя по username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	const op = "storage.GetUserByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return models.User{}, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err != nil {
		return models.User{}, translate(op, err)
	}
	return u, nil
}

// GetUsersByIDs возвращает пользователей по набору ID.
func (s *Storage) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	const op = "storage.GetUsersByIDs"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	result := make(map[int64]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[u.ID] = u
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListUsers возвращает пользователей по возрастанию ID. limit == 0 снимает ограничение.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	const op = "storage.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, nullLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectUsers(op, rows)
}

// ListSubscriptions возвращает авторов, на которых подписан пользователь,
// по убыванию ID автора.
func (s *Storage) ListSubscriptions(ctx context.Context, userID int64, limit, offset int) ([]models.User, error) {
	const op = "storage.ListSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT u.id, u.email, u.username, u.first_name, u.last_name,
				  u.password_hash, u.role, u.created_at
			  FROM subscriptions s
			  JOIN users u ON u.id = s.author_id
			  WHERE s.user_id = $1
			  ORDER BY s.author_id DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, nullLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectUsers(op, rows)
}

func collectUsers(op string, rows *sql.Rows) ([]models.User, error) {
	defer func() {
		_ = rows.Close()
	}()
	result := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// nullLimit превращает нулевой лимит в NULL, что для PostgreSQL означает LIMIT ALL.
func nullLimit(limit int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(limit), Valid: limit > 0}
}
