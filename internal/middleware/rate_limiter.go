package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// loginCounter bumps the hit count for a window key and returns the new
// total.
type loginCounter func(ctx context.Context, key string) (int64, error)

// LoginRateLimit throttles credential endpoints per client IP with a
// fixed one-minute window in redis. When redis is unreachable the
// limiter fails open so an infra outage cannot lock out logins.
func LoginRateLimit(rdb *redis.Client, perMinute int, logger *zap.Logger) gin.HandlerFunc {
	var counter loginCounter
	if rdb != nil {
		counter = func(ctx context.Context, key string) (int64, error) {
			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return 0, err
			}
			if count == 1 {
				rdb.Expire(ctx, key, time.Minute)
			}
			return count, nil
		}
	}
	return loginRateLimit(counter, perMinute, logger)
}

func loginRateLimit(counter loginCounter, perMinute int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || perMinute <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rl:login:%s", c.ClientIP())
		count, err := counter(c.Request.Context(), key)
		if err != nil {
			logger.Warn("Rate limiter unavailable, failing open", zap.Error(err))
			c.Next()
			return
		}

		if count > int64(perMinute) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    42900,
				"message": "Too many attempts, try again later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
