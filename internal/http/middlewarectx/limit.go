package middlewarectx

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/documind-api/internal/http/response"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
)

// Limiter решает, можно ли обслужить очередной запрос с ключом key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitMiddleware ограничивает частоту запросов по IP клиента.
// При ошибке лимитера запрос пропускается.
func RateLimitMiddleware(log *slog.Logger, limiter Limiter, msg string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				log.Error("rate limiter failed", sl.Err(err))
			} else if !allowed {
				log.Warn("too many requests", slog.String("ip", ip), slog.String("path", r.URL.Path))
				response.WriteError(w, r, http.StatusTooManyRequests, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Counter — счётчик фиксированного окна (реализуется cache.Cache).
type Counter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// WindowLimiter ограничивает число запросов за окно через общий счётчик в Redis.
type WindowLimiter struct {
	counter Counter
	prefix  string
	limit   int
	window  time.Duration
}

// NewWindowLimiter создаёт лимитер limit запросов за window.
func NewWindowLimiter(counter Counter, prefix string, limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{counter: counter, prefix: prefix, limit: limit, window: window}
}

// Allow реализует Limiter.
func (l *WindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.counter.Allow(ctx, "ratelimit:"+l.prefix+":"+key, l.limit, l.window)
}

// MemoryLimiter — token bucket на каждый ключ в памяти процесса.
// Используется, если Redis не настроен.
type MemoryLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	every    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter допускает всплеск из limit запросов с восполнением по одному за window/limit.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limiters: make(map[string]*visitor),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		ttl:      window,
		now:      time.Now,
	}
}

// Allow реализует Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = v
	}
	v.lastSeen = now
	allowed := v.limiter.AllowN(now, 1)

	if len(l.limiters) > 1024 {
		l.evict(now)
	}
	return allowed, nil
}

// evict удаляет ключи, не встречавшиеся дольше окна.
func (l *MemoryLimiter) evict(now time.Time) {
	for key, v := range l.limiters {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.limiters, key)
		}
	}
}
