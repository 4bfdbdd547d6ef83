package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/magabrotheeeer/documind-api/internal/migrations"
	"github.com/magabrotheeeer/documind-api/internal/models"
)

// setupTestStorage поднимает MongoDB в контейнере, применяет миграции
// и возвращает Storage на отдельной базе.
func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongodb container test in short mode")
	}
	ctx := context.Background()

	container, err := tcmongo.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate mongodb container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	s, err := New(ctx, Options{URI: uri, Database: "documind_test", ConnectTimeout: 20 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	require.NoError(t, migrations.Run(s.Client, "documind_test"))
	return s
}

// TestDataFactory создаёт тестовые записи.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя
func (f *TestDataFactory) CreateUser(t *testing.T, name, email, role, plan string, createdAt time.Time) *models.User {
	t.Helper()
	sub := models.DefaultSubscription(createdAt)
	sub.Plan = plan
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Role:         role,
		Subscription: sub,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	_, err := f.storage.CreateUser(context.Background(), u)
	require.NoError(t, err)
	return u
}

// CreateContact создает тестовое сообщение
func (f *TestDataFactory) CreateContact(t *testing.T, name, email string, createdAt time.Time) *models.Contact {
	t.Helper()
	c := &models.Contact{
		Name:      name,
		Email:     email,
		Message:   "hello",
		Status:    models.ContactStatusNew,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	_, err := f.storage.CreateContact(context.Background(), c)
	require.NoError(t, err)
	return c
}
