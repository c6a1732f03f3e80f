package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			zap.L().Error("request", fields...)
		case status >= 400:
			zap.L().Warn("request", fields...)
		default:
			zap.L().Info("request", fields...)
		}
	}
}

// AuditAdminActions records who changed what once a guarded mutation
// succeeds.
func AuditAdminActions() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "GET" || c.Writer.Status() >= 300 {
			return
		}
		p, ok := Admin(c)
		if !ok {
			return
		}
		zap.L().Info("🛡️ admin action",
			zap.String("admin", p.Username),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("id", c.Param("id")),
			zap.Int("status", c.Writer.Status()))
	}
}
