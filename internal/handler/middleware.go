package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/BloggingApp/post-store/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request-id"
)

func (h *Handler) requestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	c.Set(requestIDKey, requestID)
	c.Header(requestIDHeader, requestID)

	c.Next()
}

func (h *Handler) accessLogMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next()

	h.logger.Sugar().Infow("http request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency_ms", float64(time.Since(start).Microseconds())/1000,
		"client_ip", c.ClientIP(),
		"request_id", c.GetString(requestIDKey),
	)
}

func (h *Handler) metricsMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next()

	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	h.metrics.ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
}

func (h *Handler) rateLimitMiddleware(c *gin.Context) {
	if !h.limiter.allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, dto.NewBasicResponse(false, errRateLimitExceeded.Error()))
		c.Abort()
		return
	}

	c.Next()
}

// clientLimiter hands each client IP its own token bucket. A bucket left idle
// for refill or longer is full again and indistinguishable from a new one, so
// such buckets are swept and the map only holds recently active clients.
type clientLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	refill    time.Duration
	lastSweep time.Time
	clients   map[string]*clientBucket
	now       func() time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	return &clientLimiter{
		limit:   limit,
		burst:   burst,
		refill:  time.Duration(float64(burst) / float64(limit) * float64(time.Second)),
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.refill {
		l.sweep(now)
	}

	bucket, ok := l.clients[client]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = bucket
	}
	bucket.lastSeen = now

	return bucket.limiter.AllowN(now, 1)
}

func (l *clientLimiter) sweep(now time.Time) {
	for client, bucket := range l.clients {
		if now.Sub(bucket.lastSeen) >= l.refill {
			delete(l.clients, client)
		}
	}
	l.lastSweep = now
}
