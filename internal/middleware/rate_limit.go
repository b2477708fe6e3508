package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateLimitConfig is a fixed window: at most Limit requests per Window for
// each user, counted under keys starting with KeyPrefix.
type RateLimitConfig struct {
	Window    time.Duration
	Limit     int
	KeyPrefix string
}

// Quota is the state of one user's current window
type Quota struct {
	Used    int
	Limit   int
	ResetAt time.Time
}

func (q Quota) Allowed() bool {
	return q.Used <= q.Limit
}

func (q Quota) Remaining() int {
	if q.Used >= q.Limit {
		return 0
	}
	return q.Limit - q.Used
}

// RateLimiter counts write requests per user in Redis
type RateLimiter struct {
	redis  redis.Cmdable
	config RateLimitConfig
}

func NewRateLimiter(redisClient redis.Cmdable, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// NewRecipeCreationRateLimiter allows 30 new recipes per user per hour
func NewRecipeCreationRateLimiter(redisClient redis.Cmdable) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     30,
		KeyPrefix: "foodgram:recipes:create",
	})
}

// RateLimitMiddleware must run after AuthMiddleware. Requests go through
// untouched, flagged with X-RateLimit-Error, when Redis cannot be reached.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get(UserIDKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}
		id, ok := userID.(uuid.UUID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		quota, err := rl.Take(c.Request.Context(), id)
		if err != nil {
			log.Warn().Err(err).Str("user_id", id.String()).Msg("rate limit check failed")
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(quota.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(quota.Remaining()))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(quota.ResetAt.Unix(), 10))

		if !quota.Allowed() {
			retryAfter := int(time.Until(quota.ResetAt).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("at most %d recipes per %v", quota.Limit, rl.config.Window),
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// Take counts one request for userID in the current window
func (rl *RateLimiter) Take(ctx context.Context, userID uuid.UUID) (Quota, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, userID, windowStart.Unix())

	var incr *redis.IntCmd
	_, err := rl.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, rl.config.Window)
		return nil
	})
	if err != nil {
		return Quota{}, fmt.Errorf("failed to count request: %w", err)
	}

	return Quota{
		Used:    int(incr.Val()),
		Limit:   rl.config.Limit,
		ResetAt: windowStart.Add(rl.config.Window),
	}, nil
}
