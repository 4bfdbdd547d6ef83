// Package auth содержит регистрацию, вход и проверку токенов пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/documind-api/internal/lib/jwt"
	"github.com/magabrotheeeer/documind-api/internal/lib/password"
	"github.com/magabrotheeeer/documind-api/internal/models"
	"github.com/magabrotheeeer/documind-api/internal/storage"
)

var (
	// ErrUserExists — email уже занят.
	ErrUserExists = errors.New("user already exists with this email")
	// ErrInvalidCredentials — неизвестный email или неверный пароль. Намеренно один и тот же.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository описывает контракт хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// RegisterInput — данные регистрации.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Result — пользователь и выданный ему токен.
type Result struct {
	User  *models.User
	Token string
}

// Service отвечает за регистрацию, вход и проверку JWT.
type Service struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	allowRole bool
	now       func() time.Time
}

// NewService создает сервис. allowRole разрешает клиенту задавать роль при регистрации.
func NewService(users UserRepository, jwtMaker jwt.Maker, allowRole bool) *Service {
	return &Service{
		users:     users,
		jwtMaker:  jwtMaker,
		allowRole: allowRole,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register создает пользователя с бесплатной подпиской и выдает токен.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	const op = "auth.Register"

	email := normalizeEmail(in.Email)
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	role := models.RoleUser
	if s.allowRole && in.Role == models.RoleAdmin {
		role = models.RoleAdmin
	}

	now := s.now()
	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Subscription: models.DefaultSubscription(now),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// уникальный индекс закрывает гонку между проверкой и вставкой
	if _, err = s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Result{User: user, Token: token}, nil
}

// Login проверяет пароль, обновляет время последнего входа и выдает новый токен.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*Result, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !password.Verify(rawPassword, user.PasswordHash) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	now := s.now()
	if err = s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.LastLogin = &now

	token, err := s.jwtMaker.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Result{User: user, Token: token}, nil
}

// Authenticate проверяет токен и загружает его владельца.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.Authenticate"
	claims, err := s.jwtMaker.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
