// Package users содержит управление пользователями и их подписками.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/documind-api/internal/models"
)

// Параметры постраничного списка по умолчанию.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = "createdAt"
)

// Сообщения о подписке.
const (
	MsgNotSubscribed = "You are not subscribed to DocumindAI"
	msgActiveFormat  = "You have an active %s subscription"
)

// ErrEmptyUpdate — в обновлении нет ни одного поля.
var ErrEmptyUpdate = errors.New("no fields to update")

// Repository описывает контракт хранилища пользователей.
type Repository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate, at time.Time) error
	UpdateSubscription(ctx context.Context, id string, upd models.SubscriptionUpdate, at time.Time) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, q models.UserListQuery) ([]*models.User, int64, error)
}

// Service реализует операции над пользователями.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService создает сервис пользователей.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// SubscriptionStatus возвращает состояние подписки пользователя.
// Подписка с истекшей датой окончания считается expired.
func (s *Service) SubscriptionStatus(user *models.User) models.SubscriptionView {
	sub := user.Subscription
	if sub.Plan == "" {
		return models.SubscriptionView{
			Plan:     models.PlanFree,
			Status:   models.StatusInactive,
			Features: []string{},
			Message:  MsgNotSubscribed,
		}
	}

	status := sub.Status
	if sub.EndDate != nil && sub.EndDate.Before(s.now()) {
		status = models.StatusExpired
	}
	features := sub.Features
	if features == nil {
		features = []string{}
	}

	view := models.SubscriptionView{
		Plan:     sub.Plan,
		Status:   status,
		Features: features,
		EndDate:  sub.EndDate,
		Message:  fmt.Sprintf(msgActiveFormat, sub.Plan),
	}
	if !sub.StartDate.IsZero() {
		start := sub.StartDate
		view.StartDate = &start
	}
	if sub.Plan == models.PlanFree || status == models.StatusExpired {
		view.Message = MsgNotSubscribed
	}
	return view
}

// UpdateSubscription заменяет подписку пользователя и возвращает обновленную запись.
func (s *Service) UpdateSubscription(ctx context.Context, id string, upd models.SubscriptionUpdate) (*models.User, error) {
	const op = "users.UpdateSubscription"
	if err := s.repo.UpdateSubscription(ctx, id, upd, s.now()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.Get(ctx, id)
}

// List возвращает страницу пользователей. Некорректные параметры заменяются значениями по умолчанию.
func (s *Service) List(ctx context.Context, q models.UserListQuery) (*models.UserPage, error) {
	const op = "users.List"

	q = NormalizeQuery(q)
	list, total, err := s.repo.ListUsers(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pages := (total + int64(q.Limit) - 1) / int64(q.Limit)
	return &models.UserPage{
		Users: list,
		Pagination: models.Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// NormalizeQuery приводит параметры списка к допустимым значениям.
func NormalizeQuery(q models.UserListQuery) models.UserListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if _, ok := models.UserSortFields[q.SortBy]; !ok {
		q.SortBy = DefaultSort
	}
	if q.SortOrder = strings.ToLower(q.SortOrder); q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Get возвращает пользователя по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "users.Get"
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Update частично обновляет пользователя и возвращает результат.
func (s *Service) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	const op = "users.Update"
	if upd.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyUpdate)
	}
	if err := s.repo.UpdateUser(ctx, id, upd, s.now()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.Get(ctx, id)
}

// Delete удаляет пользователя.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "users.Delete"
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
