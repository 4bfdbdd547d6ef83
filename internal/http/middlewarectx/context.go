// Package middlewarectx содержит HTTP middleware сервиса: аутентификацию по bearer-токену,
// проверку роли администратора, ограничение частоты запросов, метрики и восстановление после паники.
//
// Аутентифицированный пользователь передаётся обработчикам через контекст запроса.
package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/documind-api/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// UserKey — ключ пользователя в контексте.
const UserKey Key = "user"

// WithUser возвращает контекст с пользователем.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// UserFromContext извлекает пользователя, положенного JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}
