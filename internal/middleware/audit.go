package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
)

// Audit writes an admin_audit log entry after each successful back-office mutation.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
		}
		if resource := c.Param("resource"); resource != "" {
			fields = append(fields, zap.String("resource", resource))
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, zap.String("target_id", id))
		}
		if value, ok := c.Get(ContextUserKey); ok {
			if claims, ok := value.(*models.JWTClaims); ok {
				fields = append(fields, zap.Int64("actor_id", int64(claims.UserID)), zap.String("actor_role", string(claims.Role)))
			}
		}
		logger.Info("admin_audit", fields...)
	}
}
