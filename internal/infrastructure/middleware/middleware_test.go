package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"room_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/api/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_BlocksAfterMax(t *testing.T) {
	rl := NewRateLimiter(RateLimiterOptions{Window: time.Hour, Max: 3})
	defer rl.Close()
	r := newEngine(rl.Middleware())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "10.0.0.1:1234").Code)
	}
	w := get(r, "10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))

	var body struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, errorx.CodeRateLimited, body.Code)
	assert.Equal(t, errorx.ErrRateLimited.Msg, body.Msg)

	// 其他 IP 不受影响
	assert.Equal(t, http.StatusOK, get(r, "10.0.0.2:1234").Code)
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterOptions{})
	defer rl.Close()
	assert.Equal(t, 100, rl.options.Max)
	assert.Equal(t, 15*time.Minute, rl.options.Window)
	assert.Equal(t, 9*time.Second, rl.interval())
}

func TestSecureHeaders_SetsHeaders(t *testing.T) {
	r := newEngine(SecureHeaders(SecureOptions{}))
	w := get(r, "10.0.0.1:1234")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestSecureHeaders_RedirectsToHTTPS(t *testing.T) {
	r := newEngine(SecureHeaders(SecureOptions{SSLRedirect: true, SSLHost: "chat.example.com"}))
	w := get(r, "10.0.0.1:1234")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "https://chat.example.com/api/ping")
}
