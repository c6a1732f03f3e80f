package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/cache"
)

const (
	OrderMaxRequests = 10
	OrderWindow      = time.Minute
)

// OrderRateLimit caps order submissions per client IP. Without Redis it
// lets everything through.
func OrderRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}
		requests, err := cache.IncrementRateLimit(c.Request.Context(), rdb, "order_requests:"+c.ClientIP(), OrderWindow)
		if err != nil {
			zap.L().Warn("rate limit update failed", zap.Error(err))
			c.Next()
			return
		}
		if requests > OrderMaxRequests {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many orders, try again in a minute",
				"retry_after": int(OrderWindow.Seconds()),
			})
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(OrderMaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(OrderMaxRequests-requests, 10))
		c.Next()
	}
}
