package documind

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/documind-api/internal/cache"
	"github.com/magabrotheeeer/documind-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/documind-api/internal/lib/jwt"
	"github.com/magabrotheeeer/documind-api/internal/models"
	authservice "github.com/magabrotheeeer/documind-api/internal/services/auth"
	contactservice "github.com/magabrotheeeer/documind-api/internal/services/contact"
	statsservice "github.com/magabrotheeeer/documind-api/internal/services/stats"
	userservice "github.com/magabrotheeeer/documind-api/internal/services/users"
	"github.com/magabrotheeeer/documind-api/internal/storage"
)

// memStore — хранилище в памяти для проверки маршрутов целиком.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	contacts []*models.Contact
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*models.User)}
}

func (s *memStore) CreateUser(_ context.Context, u *models.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return primitive.NilObjectID, storage.ErrUserExists
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	s.users[u.ID.Hex()] = &cp
	return u.ID, nil
}

func (s *memStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (s *memStore) TouchLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id.Hex()]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (s *memStore) UpdateUser(_ context.Context, id string, upd models.UserUpdate, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	if upd.Name != "" {
		u.Name = upd.Name
	}
	if upd.Role != "" {
		u.Role = upd.Role
	}
	u.UpdatedAt = at
	return nil
}

func (s *memStore) UpdateSubscription(_ context.Context, id string, upd models.SubscriptionUpdate, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.Subscription.Plan = upd.Plan
	u.Subscription.Status = upd.Status
	u.UpdatedAt = at
	return nil
}

func (s *memStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return storage.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *memStore) ListUsers(_ context.Context, _ models.UserListQuery) ([]*models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		users = append(users, &cp)
	}
	return users, int64(len(users)), nil
}

func (s *memStore) CountUsers(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *memStore) UsersByPlan(context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make(map[string]int64)
	for _, u := range s.users {
		res[u.Subscription.Plan]++
	}
	return res, nil
}

func (s *memStore) CreateContact(_ context.Context, c *models.Contact) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	s.contacts = append(s.contacts, c)
	return c.ID, nil
}

func (s *memStore) ListContacts(context.Context, int) ([]*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Contact(nil), s.contacts...), nil
}

func (s *memStore) ListContactsByDate(_ context.Context, r models.DateRange) ([]*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []*models.Contact
	for _, c := range s.contacts {
		if !c.CreatedAt.Before(r.From) && !c.CreatedAt.After(r.To) {
			res = append(res, c)
		}
	}
	return res, nil
}

func (s *memStore) CountContacts(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.contacts)), nil
}

func (s *memStore) ContactsByDate(context.Context, int) ([]models.DateCount, error) {
	return []models.DateCount{}, nil
}

func (s *memStore) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T, store *memStore) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	r := chi.NewRouter()
	RegisterRoutes(r, Deps{
		Logger:         logger,
		Auth:           authservice.NewService(store, maker, false),
		Users:          userservice.NewService(store),
		Contacts:       contactservice.NewService(logger, store, nil),
		Stats:          statsservice.NewService(logger, store, cache.Noop{}, time.Minute),
		DB:             store,
		APILimiter:     middlewarectx.NewMemoryLimiter(1000, 15*time.Minute),
		ContactLimiter: middlewarectx.NewMemoryLimiter(5, 15*time.Minute),
		Registry:       prometheus.NewRegistry(),
		FrontendURL:    "http://localhost:5173",
		Development:    true,
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type authResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) authResponse {
	t.Helper()
	var resp authResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestRoutes_RegisterLoginProfile(t *testing.T) {
	h := newTestRouter(t, newMemStore())

	rr := doJSON(t, h, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "A", "email": "a@b.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "password")

	rr = doJSON(t, h, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "A@B.COM", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	login := decode(t, rr)
	require.NotEmpty(t, login.Token)

	rr = doJSON(t, h, http.MethodGet, "/api/users/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	profile := decode(t, rr)
	require.NotNil(t, profile.User)
	assert.Equal(t, "A", profile.User.Name)
	assert.Equal(t, models.RoleUser, profile.User.Role)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = doJSON(t, h, http.MethodGet, "/api/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoutes_AdminGate(t *testing.T) {
	store := newMemStore()
	h := newTestRouter(t, store)

	rr := doJSON(t, h, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Boss", "email": "boss@b.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	reg := decode(t, rr)

	rr = doJSON(t, h, http.MethodGet, "/api/admin/users", reg.Token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, middlewarectx.MsgAdminRequired, decode(t, rr).Error)

	store.mu.Lock()
	store.users[reg.User.ID.Hex()].Role = models.RoleAdmin
	store.mu.Unlock()

	rr = doJSON(t, h, http.MethodGet, "/api/admin/users", reg.Token, nil)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doJSON(t, h, http.MethodGet, "/api/admin/dashboard/stats", reg.Token, nil)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestRoutes_NotFound(t *testing.T) {
	h := newTestRouter(t, newMemStore())

	rr := doJSON(t, h, http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	resp := decode(t, rr)
	assert.False(t, resp.Success)
	assert.Equal(t, MsgNotFound, resp.Error)
}

func TestRoutes_ContactRateLimit(t *testing.T) {
	store := newMemStore()
	h := newTestRouter(t, store)

	body := map[string]string{"name": "Ann", "email": "ann@example.com", "message": "hello"}
	for i := 0; i < 5; i++ {
		rr := doJSON(t, h, http.MethodPost, "/api/contact", "", body)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	rr := doJSON(t, h, http.MethodPost, "/api/contact", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, MsgContactLimited, decode(t, rr).Error)

	count, err := store.CountContacts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}

func TestRoutes_ContactRateLimitIgnoresForwardedFor(t *testing.T) {
	store := newMemStore()
	h := newTestRouter(t, store)

	body := map[string]string{"name": "Ann", "email": "ann@example.com", "message": "hello"}
	created := 0
	for i := 0; i < 20; i++ {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(buf))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusCreated {
			created++
		}
	}
	assert.Equal(t, 5, created)
}

func TestRoutes_Health(t *testing.T) {
	h := newTestRouter(t, newMemStore())

	rr := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/api/db-check", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
