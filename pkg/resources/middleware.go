package resources

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const RequestIdHeader = "X-Request-ID"

func TracerMiddleware(name string) gin.HandlerFunc {
	return otelgin.Middleware(name)
}

func MeterMiddleware(name string) gin.HandlerFunc {
	return NewHTTPMetrics(name).Middleware()
}

// RequestIdMiddleware tags the request logger with a request_id, reusing a well-formed incoming
// X-Request-ID and minting a new UUID otherwise.
func RequestIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIdHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Header(RequestIdHeader, id)

		ctx := c.Request.Context()
		logger := log.Ctx(ctx).With().Str("request_id", id).
			Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx))

		c.Next()
	}
}

// AccessLogMiddleware writes one line per request through the request logger.
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()

		level := zerolog.InfoLevel
		if status >= 500 {
			level = zerolog.WarnLevel
		}

		log.Ctx(c.Request.Context()).WithLevel(level).Str("route", c.FullPath()).Int("status", status).
			Dur("latency", time.Since(start)).Msg("request served")
	}
}
