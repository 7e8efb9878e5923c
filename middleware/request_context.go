package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"storeit/utils"
)

const RequestIDHeader = "X-Request-ID"

// RequestContext tags every request with an id and records the caller's
// address and user agent on the request context.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		meta := utils.RequestMeta{
			RequestID: requestID,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		c.Request = c.Request.WithContext(utils.WithRequestMeta(c.Request.Context(), meta))
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// RequestLogger writes one line per request once the handler chain finishes.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l := utils.RequestLogger(c.Request.Context(), logger)
		evt := l.Info()
		if c.Writer.Status() >= 500 {
			evt = l.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
