package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	RequestIDHeader = "X-Request-ID"
	ctxLoggerKey    = "logger"
)

// RequestID assigns every request an id (keeping a client-provided one),
// binds a request-scoped logger into the context and logs the completed
// request.
func RequestID(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		reqLogger := logger.With().Str("request_id", requestID).Logger()
		c.Set(ctxLoggerKey, reqLogger)

		start := time.Now()
		c.Next()

		reqLogger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request completed")
	}
}

// Logger returns the request-scoped logger, or a disabled one when the
// middleware did not run (tests).
func Logger(c *gin.Context) zerolog.Logger {
	if v, ok := c.Get(ctxLoggerKey); ok {
		if l, ok := v.(zerolog.Logger); ok {
			return l
		}
	}
	return zerolog.Nop()
}
