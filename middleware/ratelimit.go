package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// LoginRateLimit 登录/注册接口限流中间件
// 每 IP 在 window 内最多 maxAttempts 次尝试，超过则返回 429
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	type entry struct {
		timestamps []time.Time
	}
	var (
		mu    sync.Mutex
		store = make(map[string]*entry)
	)
	// 定期清理过期数据
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			cutoff := time.Now().Add(-window)
			for ip, e := range store {
				e.timestamps = pruneBefore(e.timestamps, cutoff)
				if len(e.timestamps) == 0 {
					delete(store, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()
		mu.Lock()
		e, ok := store[ip]
		if !ok {
			e = &entry{}
			store[ip] = e
		}
		e.timestamps = pruneBefore(e.timestamps, now.Add(-window))
		if len(e.timestamps) >= maxAttempts {
			mu.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "登录尝试过于频繁，请稍后再试",
			})
			return
		}
		e.timestamps = append(e.timestamps, now)
		mu.Unlock()
		c.Next()
	}
}

func pruneBefore(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

type keyLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// TokenBucket 按 key 维护令牌桶，空闲超过 ttl 的桶被回收
type TokenBucket struct {
	mu  sync.Mutex
	m   map[string]*keyLimiter
	r   rate.Limit
	b   int
	ttl time.Duration
}

// NewTokenBucket 创建令牌桶集合
func NewTokenBucket(r rate.Limit, burst int, ttl time.Duration) *TokenBucket {
	return &TokenBucket{m: make(map[string]*keyLimiter), r: r, b: burst, ttl: ttl}
}

// Allow 消耗 key 对应桶中的一个令牌
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	now := time.Now()
	kl, ok := tb.m[key]
	if !ok {
		kl = &keyLimiter{lim: rate.NewLimiter(tb.r, tb.b)}
		tb.m[key] = kl
	}
	kl.seen = now
	return kl.lim.Allow()
}

// gc 回收空闲的桶
func (tb *TokenBucket) gc(now time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	for k, v := range tb.m {
		if now.Sub(v.seen) > tb.ttl {
			delete(tb.m, k)
		}
	}
}

// InferenceRateLimit 调用大模型/语音等外部服务的接口按 IP+路由限速
func InferenceRateLimit(rps float64, burst int) gin.HandlerFunc {
	tb := NewTokenBucket(rate.Limit(rps), burst, 2*time.Minute)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for now := range ticker.C {
			tb.gc(now)
		}
	}()

	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if !tb.Allow(c.ClientIP() + "|" + path) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "请求过于频繁，请稍后再试",
			})
			return
		}
		c.Next()
	}
}
