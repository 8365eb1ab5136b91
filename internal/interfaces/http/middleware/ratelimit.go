package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/portal/internal/interfaces/http/dto"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key. A bucket holds limit
// tokens and refills at limit per window.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	limit    int
	window   time.Duration
	every    rate.Limit
	stop     chan struct{}
	stopOnce sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter. Call Stop to end the sweeper.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		window:  window,
		every:   rate.Every(window / time.Duration(limit)),
		stop:    make(chan struct{}),
	}
	go rl.cleanup(window * 2)
	return rl
}

// cleanup drops clients idle for two windows; their bucket would be full anyway
func (rl *RateLimiter) cleanup(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, c := range rl.clients {
				if now.Sub(c.lastSeen) > rl.window*2 {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[key] = c
	}
	c.lastSeen = time.Now()
	return c.limiter
}

// Allow checks if a request from the given key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).Allow()
}

// Remaining returns the number of whole tokens left for key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	c, ok := rl.clients[key]
	rl.mu.Unlock()
	if !ok {
		return rl.limit
	}
	n := int(c.limiter.Tokens())
	if n < 0 {
		return 0
	}
	return n
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeRateLimited,
					"Too many requests. Please try again later.", getRequestIDFromContext(c)))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))

		c.Next()
	}
}

// OTPRateLimit guards the onboarding endpoints that make the backend send an
// SMS or call the KYC provider. It is keyed per client IP and answers with
// its own message so the wizard can show it next to the OTP field.
func OTPRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow("otp:" + c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeRateLimited,
					"Too many verification attempts. Please wait a minute and try again.", getRequestIDFromContext(c)))
			return
		}
		c.Next()
	}
}
