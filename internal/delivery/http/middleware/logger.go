package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger returns a middleware that logs each request with its outcome.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if requestID := c.GetString(contextKeyRequestID); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if c.Writer.Status() >= 500 {
			logger.Error("Request completed", fields...)
			return
		}
		logger.Info("Request completed", fields...)
	}
}
