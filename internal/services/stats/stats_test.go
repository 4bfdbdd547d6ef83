package stats_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/documind-api/internal/cache"
	"github.com/magabrotheeeer/documind-api/internal/config"
	"github.com/magabrotheeeer/documind-api/internal/models"
	"github.com/magabrotheeeer/documind-api/internal/services/stats"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) CountContacts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) UsersByPlan(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	plans, _ := args.Get(0).(map[string]int64)
	return plans, args.Error(1)
}

func (m *RepoMock) ContactsByDate(ctx context.Context, days int) ([]models.DateCount, error) {
	args := m.Called(ctx, days)
	rows, _ := args.Get(0).([]models.DateCount)
	return rows, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func expectQueries(repo *RepoMock, times int) {
	repo.On("CountUsers", mock.Anything).Return(int64(3), nil).Times(times)
	repo.On("CountContacts", mock.Anything).Return(int64(7), nil).Times(times)
	repo.On("UsersByPlan", mock.Anything).Return(map[string]int64{"free": 2, "pro": 1}, nil).Times(times)
	repo.On("ContactsByDate", mock.Anything, stats.ContactDays).
		Return([]models.DateCount{{Date: "2026-03-01", Count: 7}}, nil).Times(times)
}

func TestService_Dashboard_CachedInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := cache.InitServer(context.Background(), config.Redis{Address: mr.Addr()})
	require.NoError(t, err)

	repo := new(RepoMock)
	expectQueries(repo, 2)
	svc := stats.NewService(newNoopLogger(), repo, c, time.Minute)

	want := &models.DashboardStats{
		TotalUsers:     3,
		TotalContacts:  7,
		UsersByPlan:    map[string]int64{"free": 2, "pro": 1},
		ContactsByDate: []models.DateCount{{Date: "2026-03-01", Count: 7}},
	}

	got, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, mr.Exists(stats.CacheKey))

	got, err = svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	repo.AssertNumberOfCalls(t, "CountUsers", 1)

	mr.FastForward(2 * time.Minute)
	_, err = svc.Dashboard(context.Background())
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Dashboard_NoopCache(t *testing.T) {
	repo := new(RepoMock)
	expectQueries(repo, 2)
	svc := stats.NewService(newNoopLogger(), repo, cache.Noop{}, time.Minute)

	for range 2 {
		_, err := svc.Dashboard(context.Background())
		require.NoError(t, err)
	}
	repo.AssertExpectations(t)
}

func TestService_Dashboard_RepoError(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CountUsers", mock.Anything).Return(int64(0), errors.New("db error")).Once()
	svc := stats.NewService(newNoopLogger(), repo, cache.Noop{}, time.Minute)

	_, err := svc.Dashboard(context.Background())
	assert.ErrorContains(t, err, "stats.Dashboard")
}
