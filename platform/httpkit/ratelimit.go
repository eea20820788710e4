package httpkit

import (
	"net/http"
	"sync"
	"time"

	"enquiry_intake_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
	log     *logger.Logger
}

func NewIPRateLimiter(limit rate.Limit, burst int, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   limit,
		burst:   burst,
		log:     log,
	}
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	b, ok := l.buckets[ip]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[ip] = b
	}
	l.mu.Unlock()
	return b.Allow()
}

func (l *IPRateLimiter) middleware(reject func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if l.allow(ip) {
			c.Next()
			return
		}
		if l.log != nil {
			l.log.RateLimitExceeded(ip, c.Request.URL.Path)
		}
		reject(c)
	}
}

// RateLimit answers 429 once an IP is over budget.
func (l *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return l.middleware(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
	})
}

// Shed drops over-budget webhook deliveries with a 200 so GreenAPI keeps the
// endpoint enabled.
func (l *IPRateLimiter) Shed() gin.HandlerFunc {
	return l.middleware(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusOK, gin.H{"success": false, "message": "Rate limited, delivery dropped"})
	})
}

// PublicFormRateLimiter throttles the unauthenticated enquiry form.
type PublicFormRateLimiter struct {
	*IPRateLimiter
}

// NewPublicFormRateLimiter allows a burst of 10 and refills one slot every 6s.
func NewPublicFormRateLimiter(log *logger.Logger) *PublicFormRateLimiter {
	return &PublicFormRateLimiter{IPRateLimiter: NewIPRateLimiter(rate.Every(6*time.Second), 10, log)}
}
