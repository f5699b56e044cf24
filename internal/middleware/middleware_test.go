package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/room-booking/internal/config"
	"github.com/iliyamo/room-booking/internal/utils"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func serve(e *echo.Echo, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRedisCache_MissHitPurge(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache:rooms",
	}

	calls := 0
	e := echo.New()
	e.GET("/rooms", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"ok": true, "calls": calls})
	}, NewRedisCache(cfg, rdb, zap.NewNop()))

	rec := serve(e, http.MethodGet, "/rooms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	first := rec.Body.String()

	rec = serve(e, http.MethodGet, "/rooms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, first, rec.Body.String())
	assert.Equal(t, echo.MIMEApplicationJSON, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, calls)

	require.NoError(t, NewCachePurger(rdb, cfg.Prefix).Purge(context.Background()))
	assert.Empty(t, mr.Keys())

	rec = serve(e, http.MethodGet, "/rooms", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestRedisCache_SkipsErrorsAndDisabled(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute, Prefix: "cache:rooms"}

	e := echo.New()
	e.GET("/rooms", func(c echo.Context) error {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"ok": false})
	}, NewRedisCache(cfg, rdb, nil))
	serve(e, http.MethodGet, "/rooms", nil)
	assert.Empty(t, mr.Keys())

	// nil client passes through without headers
	e = echo.New()
	e.GET("/rooms", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewRedisCache(cfg, nil, nil))
	rec := serve(e, http.MethodGet, "/rooms", nil)
	assert.Empty(t, rec.Header().Get("X-Cache"))

	var nilPurger *CachePurger
	assert.NoError(t, nilPurger.Purge(context.Background()))
}

func TestTokenBucket_Blocks(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.POST("/bookings", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, NewTokenBucket(cfg, rdb, nil))

	for i := 0; i < 2; i++ {
		rec := serve(e, http.MethodPost, "/bookings", nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := serve(e, http.MethodPost, "/bookings", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_requests")
}

func TestTokenBucket_RedisDownAllows(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour, Prefix: "rl"}

	e := echo.New()
	e.GET("/rooms", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, rdb, nil))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/rooms", nil).Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/rooms")

	assert.Equal(t, "rl:ip:10.0.0.1:route:GET /rooms", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}, c))
	assert.Equal(t, "rl:user:anon", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
	c.Set(ctxSubject, "admin")
	assert.Equal(t, "rl:ip:10.0.0.1:user:admin:route:GET /rooms", buildRateKey(config.RateLimitConfig{Prefix: "rl"}, c))
}

func TestJWTAuthAndRole(t *testing.T) {
	const secret = "test-secret"
	e := echo.New()
	e.GET("/admin/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, Subject(c))
	}, JWTAuth(secret), RequireRole(utils.RoleAdmin))

	rec := serve(e, http.MethodGet, "/admin/ping", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodGet, "/admin/ping", http.Header{"Authorization": {"Bearer not-a-token"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := utils.NewAccessToken("other-secret", "admin", utils.RoleAdmin, 5)
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/admin/ping", http.Header{"Authorization": {"Bearer " + other.Token}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	guest, err := utils.NewAccessToken(secret, "someone", "GUEST", 5)
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/admin/ping", http.Header{"Authorization": {"Bearer " + guest.Token}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin, err := utils.NewAccessToken(secret, "admin", utils.RoleAdmin, 5)
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/admin/ping", http.Header{"Authorization": {"Bearer " + admin.Token}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadGateway, "upstream") })

	serve(e, http.MethodGet, "/ok", nil)
	rec := serve(e, http.MethodGet, "/fail", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(http.StatusNoContent), entries[0].ContextMap()["status"])
	assert.Equal(t, "error", entries[1].Level.String())
	assert.Equal(t, "/fail", entries[1].ContextMap()["path"])
}
