package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/foodgram/internal/migrations"
	"github.com/magabrotheeeer/foodgram/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	port := nat.Port("5432/tcp")

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(port)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(port),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, mapped.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))
	require.NoError(t, CheckDatabaseReady(storage))

	return storage, func() {
		_ = storage.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
}

// testDataFactory создаёт связанные тестовые данные.
type testDataFactory struct {
	t       *testing.T
	storage *Storage
}

func newTestDataFactory(t *testing.T, storage *Storage) *testDataFactory {
	return &testDataFactory{t: t, storage: storage}
}

func (f *testDataFactory) user(username string) int64 {
	f.t.Helper()
	id, err := f.storage.CreateUser(context.Background(), models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "First",
		LastName:     "Last",
		PasswordHash: "hash",
	})
	require.NoError(f.t, err)
	return id
}

func (f *testDataFactory) tag(name, slug, color string) int64 {
	f.t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO tags (name, slug, color) VALUES ($1, $2, $3) RETURNING id`,
		name, slug, color).Scan(&id)
	require.NoError(f.t, err)
	return id
}

func (f *testDataFactory) ingredient(name, unit string) int64 {
	f.t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2) RETURNING id`,
		name, unit).Scan(&id)
	require.NoError(f.t, err)
	return id
}

func (f *testDataFactory) recipe(authorID int64, name string, ingredients []models.IngredientAmount, tags []int64) int64 {
	f.t.Helper()
	id, err := f.storage.CreateRecipe(context.Background(), models.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Text:        "text",
		Image:       "/media/recipes/images/x.png",
		CookingTime: 10,
	}, ingredients, tags)
	require.NoError(f.t, err)
	return id
}

func (f *testDataFactory) count(query string, args ...any) int {
	f.t.Helper()
	var n int
	require.NoError(f.t, f.storage.DB.QueryRow(query, args...).Scan(&n))
	return n
}
