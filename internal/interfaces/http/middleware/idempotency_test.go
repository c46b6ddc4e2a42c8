package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"chainpay.backend/pkg/logger"
	pkgredis "chainpay.backend/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Init("production")
	m.Run()
}

func newIdempotencyRouter(t *testing.T, handled *atomic.Int32) *gin.Engine {
	t.Helper()

	mr := miniredis.RunT(t)
	pkgredis.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	router := gin.New()
	router.POST("/payments", IdempotencyMiddleware(), func(c *gin.Context) {
		handled.Add(1)
		c.JSON(http.StatusCreated, gin.H{"id": "payment-1"})
	})
	return router
}

func post(router *gin.Engine, idempotencyKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments", nil)
	if idempotencyKey != "" {
		req.Header.Set(IdempotencyHeader, idempotencyKey)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyMiddleware_ReplaysCachedResponse(t *testing.T) {
	var handled atomic.Int32
	router := newIdempotencyRouter(t, &handled)

	first := post(router, "key-1")
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get("X-Idempotency-Hit"))

	second := post(router, "key-1")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	assert.Equal(t, int32(1), handled.Load(), "handler runs once per key")
}

func TestIdempotencyMiddleware_DistinctKeysProcessSeparately(t *testing.T) {
	var handled atomic.Int32
	router := newIdempotencyRouter(t, &handled)

	require.Equal(t, http.StatusCreated, post(router, "key-1").Code)
	require.Equal(t, http.StatusCreated, post(router, "key-2").Code)
	assert.Equal(t, int32(2), handled.Load())
}

func TestIdempotencyMiddleware_NoKeyBypasses(t *testing.T) {
	var handled atomic.Int32
	router := newIdempotencyRouter(t, &handled)

	require.Equal(t, http.StatusCreated, post(router, "").Code)
	require.Equal(t, http.StatusCreated, post(router, "").Code)
	assert.Equal(t, int32(2), handled.Load())
}

func TestIdempotencyMiddleware_FailedResponseNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	pkgredis.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	var handled atomic.Int32
	router := gin.New()
	router.POST("/payments", IdempotencyMiddleware(), func(c *gin.Context) {
		if handled.Add(1) == 1 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": "payment-1"})
	})

	require.Equal(t, http.StatusInternalServerError, post(router, "key-1").Code)

	// The failed attempt left no cached body; the retry processes normally
	retry := post(router, "key-1")
	require.Equal(t, http.StatusCreated, retry.Code)
	assert.Equal(t, int32(2), handled.Load())
}

func TestIdempotencyMiddleware_InFlightRequestConflicts(t *testing.T) {
	mr := miniredis.RunT(t)
	pkgredis.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	router := gin.New()
	router.POST("/payments", IdempotencyMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": "payment-1"})
	})

	// Simulate a concurrent request still holding the processing lock
	require.NoError(t, mr.Set("idempotency:00000000-0000-0000-0000-000000000000:key-1", "processing"))

	rec := post(router, "key-1")
	assert.Equal(t, http.StatusConflict, rec.Code)
}
