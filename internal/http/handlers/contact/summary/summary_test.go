package summary

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/documind-api/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Summary(ctx context.Context, r *models.DateRange) ([]models.ContactDaySummary, error) {
	args := m.Called(ctx, r)
	days, _ := args.Get(0).([]models.ContactDaySummary)
	return days, args.Error(1)
}

func TestSummaryHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	days := []models.ContactDaySummary{{
		Date:     "2026-03-01",
		Count:    1,
		Contacts: []models.ContactBrief{{Name: "Jane", Email: "jane@acme.io", Time: "09:00:00"}},
	}}

	t.Run("without range", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Summary", mock.Anything, (*models.DateRange)(nil)).Return(days, nil).Once()

		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contact/summary", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.Success)
		assert.Equal(t, days, got.Summary)
		svc.AssertExpectations(t)
	})

	t.Run("with range", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Summary", mock.Anything, mock.MatchedBy(func(r *models.DateRange) bool {
			return r != nil && r.From.Format("2006-01-02") == "2026-03-01"
		})).Return(days, nil).Once()

		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contact/summary?from=2026-03-01&to=2026-03-01", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("half range rejected", func(t *testing.T) {
		svc := new(ServiceMock)
		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contact/summary?to=2026-03-01", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
