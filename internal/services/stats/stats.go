// Package stats собирает статистику для панели администратора.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/models"
)

// CacheKey — ключ кэша статистики.
const CacheKey = "stats:dashboard"

// ContactDays — за сколько последних дней с сообщениями строится график.
const ContactDays = 30

// Repository описывает агрегирующие запросы к хранилищу.
type Repository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountContacts(ctx context.Context) (int64, error)
	UsersByPlan(ctx context.Context) (map[string]int64, error)
	ContactsByDate(ctx context.Context, days int) ([]models.DateCount, error)
}

// Cache — кэш значений в JSON.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service отдает статистику, кэшируя результат на ttl.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewService создает сервис статистики.
func NewService(log *slog.Logger, repo Repository, cache Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, log: log}
}

// Dashboard возвращает статистику. Ошибки кэша не прерывают запрос.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	const op = "stats.Dashboard"
	log := s.log.With(slog.String("op", op))

	var cached models.DashboardStats
	found, err := s.cache.Get(ctx, CacheKey, &cached)
	if err != nil {
		log.Warn("stats cache read failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	stats := &models.DashboardStats{}
	if stats.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if stats.TotalContacts, err = s.repo.CountContacts(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if stats.UsersByPlan, err = s.repo.UsersByPlan(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if stats.ContactsByDate, err = s.repo.ContactsByDate(ctx, ContactDays); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.ttl > 0 {
		if err = s.cache.Set(ctx, CacheKey, stats, s.ttl); err != nil {
			log.Warn("stats cache write failed", sl.Err(err))
		}
	}
	return stats, nil
}
