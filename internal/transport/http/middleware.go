package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"app-icon-server-go/internal/domain/eventbus"
	"app-icon-server-go/internal/domain/ratelimit"
	"app-icon-server-go/internal/platform/logging"
)

const (
	// HeaderRequestID carries the per-request correlation id.
	HeaderRequestID = "X-Request-ID"

	requestIDKey = "request_id"
)

// RequestIDMiddleware reuses an incoming X-Request-ID or assigns a new UUID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestID returns the id assigned by RequestIDMiddleware.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RateLimitOptions configures RateLimitMiddleware.
type RateLimitOptions struct {
	Limiter ratelimit.Limiter
	Logger  *logging.Logger
	Events  *eventbus.Bus
	Locale  string
}

// RateLimitMiddleware enforces the per-client fixed window. Limiter failures let the
// request through so that a redis outage does not take the service down.
func RateLimitMiddleware(opts RateLimitOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.Limiter == nil {
			c.Next()
			return
		}

		client := c.ClientIP()
		res, err := opts.Limiter.Allow(c.Request.Context(), client)
		if err != nil {
			opts.Logger.WarnTag("限流", "限流检查失败，放行请求: %v", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if res.Allowed {
			c.Next()
			return
		}

		retry := res.RetryAfter(time.Now())
		c.Header("Retry-After", strconv.Itoa(int(retry.Round(time.Second).Seconds())))
		opts.Logger.WarnTag("限流", "客户端 %s 请求过于频繁: %s", client, c.Request.URL.Path)
		opts.Events.PublishAsync(eventbus.EventRateLimited, eventbus.RateLimitedData{
			Client: client,
			Path:   c.Request.URL.Path,
		})
		AbortWithError(c, http.StatusTooManyRequests, ErrorResponse{
			Error: Message(LocaleFor(c, opts.Locale), MsgRateLimited),
		})
	}
}
