// Package models содержит доменные модели сервиса: пользователя, подписку,
// сообщения формы обратной связи и агрегированную статистику.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Тарифные планы.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Статусы подписки.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusExpired  = "expired"
)

// FeatureBasicAI — набор возможностей бесплатного плана.
const FeatureBasicAI = "basic_ai_assistance"

// AdminFeatures возможности, выдаваемые администратору при создании.
var AdminFeatures = []string{"admin_access", "user_management", "analytics", "priority_support"}

// User представляет зарегистрированного пользователя.
// Хэш пароля никогда не сериализуется в JSON.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Subscription Subscription       `bson:"subscription" json:"subscription"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
	LastLogin    *time.Time         `bson:"lastLogin" json:"lastLogin"`
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Subscription описывает тариф пользователя.
type Subscription struct {
	Plan      string     `bson:"plan" json:"plan" validate:"required,oneof=free pro enterprise"`
	Status    string     `bson:"status" json:"status" validate:"required,oneof=active inactive expired"`
	StartDate time.Time  `bson:"startDate" json:"startDate"`
	EndDate   *time.Time `bson:"endDate" json:"endDate"`
	Features  []string   `bson:"features" json:"features"`
}

// DefaultSubscription возвращает подписку, выдаваемую при регистрации.
func DefaultSubscription(now time.Time) Subscription {
	return Subscription{
		Plan:      PlanFree,
		Status:    StatusActive,
		StartDate: now,
		Features:  []string{FeatureBasicAI},
	}
}

// SubscriptionUpdate — изменение подписки администратором.
type SubscriptionUpdate struct {
	Plan     string     `json:"plan" validate:"required,oneof=free pro enterprise"`
	Status   string     `json:"status" validate:"required,oneof=active inactive expired"`
	EndDate  *time.Time `json:"endDate"`
	Features []string   `json:"features"`
}

// UserUpdate — частичное обновление пользователя администратором.
// Пустые поля не изменяются.
type UserUpdate struct {
	Name         string        `json:"name" validate:"omitempty,max=100"`
	Email        string        `json:"email" validate:"omitempty,email"`
	Role         string        `json:"role" validate:"omitempty,oneof=user admin"`
	Subscription *Subscription `json:"subscription" validate:"omitempty"`
}

// IsEmpty сообщает, что обновление ничего не меняет.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == "" && u.Email == "" && u.Role == "" && u.Subscription == nil
}

// SubscriptionView — состояние подписки, возвращаемое пользователю.
type SubscriptionView struct {
	Plan      string     `json:"plan"`
	Status    string     `json:"status"`
	Features  []string   `json:"features"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate"`
	Message   string     `json:"message"`
}
