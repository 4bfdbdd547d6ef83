// Package jwt выпускает и проверяет подписанные bearer-токены пользователей.
//
// Токен содержит идентификатор пользователя, email и срок действия (по умолчанию 24 часа).
// Отзыв токенов не поддерживается: токен действителен до истечения срока.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL — время жизни токена по умолчанию.
const DefaultTTL = 24 * time.Hour

// ErrInvalidToken возвращается, если подпись не совпадает, payload повреждён или срок истёк.
var ErrInvalidToken = errors.New("invalid token")

// Claims описывает данные, хранящиеся в токене.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Maker описывает выпуск и проверку токенов.
type Maker interface {
	Issue(userID, email string) (string, error)
	Verify(tokenStr string) (*Claims, error)
}

// MakerImpl подписывает токены HS256 секретным ключом.
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl. Нулевой ttl заменяется на DefaultTTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// Issue создаёт токен с userID и email, истекающий через tokenTTL.
func (m *MakerImpl) Issue(userID, email string) (string, error) {
	const op = "jwt.Issue"
	now := m.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Verify проверяет подпись и срок действия токена и возвращает его claims.
// Любая ошибка оборачивает ErrInvalidToken.
func (m *MakerImpl) Verify(tokenStr string) (*Claims, error) {
	const op = "jwt.Verify"
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return m.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
