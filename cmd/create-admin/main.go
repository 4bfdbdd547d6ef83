// Команда create-admin создаёт учётную запись администратора.
//
//	MONGODB_URI=mongodb://localhost:27017 go run ./cmd/create-admin -email admin@documind.ai -password secret123
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/documind-api/internal/config"
	"github.com/magabrotheeeer/documind-api/internal/lib/password"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/migrations"
	"github.com/magabrotheeeer/documind-api/internal/models"
	"github.com/magabrotheeeer/documind-api/internal/storage"
)

var errAdminExists = errors.New("admin user already exists")

type adminRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
}

type adminInput struct {
	Name     string
	Email    string
	Password string
}

func main() {
	name := flag.String("name", "Admin User", "имя администратора")
	email := flag.String("email", "admin@documind.ai", "email администратора")
	pass := flag.String("password", "", "пароль администратора (не короче 6 символов)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	_ = godotenv.Load()

	if err := run(logger, adminInput{Name: *name, Email: *email, Password: *pass}); err != nil {
		logger.Error("failed to create admin", sl.Err(err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, in adminInput) error {
	const op = "main.run"

	var mongoCfg config.Mongo
	if err := cleanenv.ReadEnv(&mongoCfg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if mongoCfg.URI == "" {
		return fmt.Errorf("%s: %w", op, config.ErrMissingMongoURI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := storage.New(ctx, storage.Options{
		URI:            mongoCfg.URI,
		Database:       mongoCfg.Database,
		ConnectTimeout: mongoCfg.ConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logger.Error("failed to close MongoDB", sl.Err(err))
		}
	}()

	if err = migrations.Run(db.Client, mongoCfg.Database); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := createAdmin(ctx, db, in, time.Now())
	if err != nil {
		return err
	}
	logger.Info("admin user created",
		slog.String("id", user.ID.Hex()),
		slog.String("email", user.Email),
	)
	return nil
}

func createAdmin(ctx context.Context, repo adminRepository, in adminInput, now time.Time) (*models.User, error) {
	const op = "main.createAdmin"

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%s: name and email are required", op)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("%s: password must be at least 6 characters", op)
	}

	_, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s: %w", op, errAdminExists)
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Subscription: models.Subscription{
			Plan:      models.PlanEnterprise,
			Status:    models.StatusActive,
			StartDate: now,
			Features:  append([]string(nil), models.AdminFeatures...),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err = repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, fmt.Errorf("%s: %w", op, errAdminExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
