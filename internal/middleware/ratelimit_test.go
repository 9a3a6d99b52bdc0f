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
	"github.com/ulule/limiter/v3"
)

func newRateLimitedEcho(store limiter.Store, limit int64) *echo.Echo {
	e := echo.New()
	e.GET("/limited", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(store, limit, time.Minute))
	return e
}

func hit(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_MemoryStore(t *testing.T) {
	store, err := NewRateLimitStore(nil)
	require.NoError(t, err)
	e := newRateLimitedEcho(store, 2)

	first := hit(e, "10.0.0.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(e, "10.0.0.1").Code)

	// limits are per client IP
	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.2").Code)
}

func TestRateLimit_RedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRateLimitStore(client)
	require.NoError(t, err)
	e := newRateLimitedEcho(store, 1)

	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(e, "10.0.0.1").Code)

	// a second instance sharing redis sees the same counter
	otherStore, err := NewRateLimitStore(client)
	require.NoError(t, err)
	other := newRateLimitedEcho(otherStore, 1)
	assert.Equal(t, http.StatusTooManyRequests, hit(other, "10.0.0.1").Code)
}

func TestRateLimit_Defaults(t *testing.T) {
	store, err := NewRateLimitStore(nil)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/limited", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(store, 0, 0))

	rec := hit(e, "10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
}
