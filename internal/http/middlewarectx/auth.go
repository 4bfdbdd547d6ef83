package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/documind-api/internal/http/response"
	"github.com/magabrotheeeer/documind-api/internal/lib/jwt"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/models"
	"github.com/magabrotheeeer/documind-api/internal/storage"
)

// Тексты ответов аутентификации.
const (
	MsgTokenRequired = "Access token required"
	MsgInvalidToken  = "Invalid or expired token"
	MsgAdminRequired = "Admin access required"
)

// Authenticator проверяет bearer-токен и загружает его владельца.
// Ошибки: jwt.ErrInvalidToken, storage.ErrUserNotFound или ошибка хранилища.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// JWTMiddleware проверяет токен из заголовка Authorization и кладёт пользователя в контекст.
//
//   - нет токена → 401 "Access token required"
//   - токен не прошёл проверку → 403 "Invalid or expired token"
//   - пользователь из токена не найден → 401 "User not found"
//
// Каждый запрос проверяется заново, результаты не кэшируются.
func JWTMiddleware(authenticator Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				log.Debug("missing bearer token")
				response.WriteError(w, r, http.StatusUnauthorized, MsgTokenRequired)
				return
			}

			user, err := authenticator.Authenticate(r.Context(), tokenStr)
			switch {
			case err == nil:
			case errors.Is(err, jwt.ErrInvalidToken):
				log.Info("token rejected", sl.Err(err))
				response.WriteError(w, r, http.StatusForbidden, MsgInvalidToken)
				return
			case errors.Is(err, storage.ErrUserNotFound):
				log.Info("token owner not found", sl.Err(err))
				response.WriteError(w, r, http.StatusUnauthorized, response.MsgUserNotFound)
				return
			default:
				log.Error("failed to load token owner", sl.Err(err))
				response.WriteError(w, r, http.StatusInternalServerError, response.MsgInternal)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin пропускает только пользователей с ролью admin. Должен стоять после JWTMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsAdmin() {
			response.WriteError(w, r, http.StatusForbidden, MsgAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken извлекает токен из значения "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
