package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"room_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiterOptions 限流参数：每个 key 在 Window 内最多 Max 次请求
type RateLimiterOptions struct {
	Window time.Duration
	Max    int
	// ExpiryDuration 客户端长时间无请求后清除其限流状态
	ExpiryDuration time.Duration
	// KeyFunc 提取限流 key，默认按客户端 IP
	KeyFunc func(*gin.Context) string
}

// DefaultRateLimiterOptions 每个 IP 15 分钟 100 次
func DefaultRateLimiterOptions() RateLimiterOptions {
	return RateLimiterOptions{
		Window:         15 * time.Minute,
		Max:            100,
		ExpiryDuration: time.Hour,
		KeyFunc:        func(c *gin.Context) string { return c.ClientIP() },
	}
}

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 基于令牌桶的按 key 限流
type RateLimiter struct {
	mu      sync.Mutex
	options RateLimiterOptions
	clients map[string]*rateClient
	done    chan struct{}
	once    sync.Once
}

// NewRateLimiter 创建限流器，零值字段使用默认值
func NewRateLimiter(opts RateLimiterOptions) *RateLimiter {
	def := DefaultRateLimiterOptions()
	if opts.Window <= 0 {
		opts.Window = def.Window
	}
	if opts.Max <= 0 {
		opts.Max = def.Max
	}
	if opts.ExpiryDuration <= 0 {
		opts.ExpiryDuration = def.ExpiryDuration
	}
	if opts.KeyFunc == nil {
		opts.KeyFunc = def.KeyFunc
	}
	return &RateLimiter{
		options: opts,
		clients: make(map[string]*rateClient),
		done:    make(chan struct{}),
	}
}

// Middleware 返回 gin 中间件，并启动过期清理协程
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	go r.cleanup()

	return func(c *gin.Context) {
		key := r.options.KeyFunc(c)
		if !r.Allow(key) {
			zap.L().Warn("rate limit exceeded",
				zap.String("client", key),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			c.Header("Retry-After", strconv.Itoa(int(r.interval().Seconds())+1))
			c.Header("X-RateLimit-Limit", strconv.Itoa(r.options.Max))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code": errorx.ErrRateLimited.Code,
				"msg":  errorx.ErrRateLimited.Msg,
				"data": nil,
			})
			return
		}
		c.Next()
	}
}

// Allow 消耗 key 的一个令牌
func (r *RateLimiter) Allow(key string) bool {
	return r.getLimiter(key).Allow()
}

// Close 停止清理协程
func (r *RateLimiter) Close() {
	r.once.Do(func() { close(r.done) })
}

// interval 补充一个令牌所需时间
func (r *RateLimiter) interval() time.Duration {
	return r.options.Window / time.Duration(r.options.Max)
}

func (r *RateLimiter) getLimiter(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.clients[key]
	if !ok {
		v = &rateClient{limiter: rate.NewLimiter(rate.Every(r.interval()), r.options.Max)}
		r.clients[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (r *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.mu.Lock()
			for k, v := range r.clients {
				if time.Since(v.lastSeen) > r.options.ExpiryDuration {
					delete(r.clients, k)
				}
			}
			r.mu.Unlock()
		}
	}
}
