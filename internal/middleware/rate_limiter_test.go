package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}
	// A tiny refill rate keeps the bucket from refilling during the test.
	e.POST("/", handler, RateLimiter(0.001))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allows the burst", func(t *testing.T) {
		rec := send("192.0.2.1:1234")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("blocks requests exceeding the limit", func(t *testing.T) {
		clientIP := "192.0.2.2:1234"
		require.Equal(t, http.StatusOK, send(clientIP).Code)

		rec := send(clientIP)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error"`)
		assert.Contains(t, rec.Body.String(), "Too many requests")
	})

	t.Run("limits each client separately", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send("192.0.2.3:1234").Code)
	})
}

func TestRateLimiter_BurstMatchesRate(t *testing.T) {
	e := echo.New()
	e.POST("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RateLimiter(5))

	codes := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "192.0.2.9:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{200, 200, 200, 200, 200}, codes[:5])
	assert.Equal(t, http.StatusTooManyRequests, codes[5])
}

func TestRateLimiter_Disabled(t *testing.T) {
	e := echo.New()
	e.POST("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RateLimiter(0))

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "192.0.2.4:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
