package http

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/auth"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const submissionWindow = 24 * time.Hour

// SubmissionCounter counts hits on key within a fixed window starting at the
// first hit.
type SubmissionCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, retryAfter time.Duration, err error)
}

// RedisSubmissionCounter keeps counters in Redis with INCR and EXPIRE.
type RedisSubmissionCounter struct {
	client redis.Cmdable
	prefix string
}

// NewRedisSubmissionCounter returns a counter storing keys under prefix.
func NewRedisSubmissionCounter(client redis.Cmdable, prefix string) *RedisSubmissionCounter {
	return &RedisSubmissionCounter{client: client, prefix: prefix}
}

// Increment bumps the counter and starts the window on the first hit.
func (r *RedisSubmissionCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	fullKey := r.prefix + key
	count, err := r.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return count, 0, err
		}
		return count, window, nil
	}
	ttl, err := r.client.TTL(ctx, fullKey).Result()
	if err != nil {
		return count, 0, err
	}
	// A key left without expiry by a failed EXPIRE would block the user forever.
	if ttl < 0 {
		_ = r.client.Expire(ctx, fullKey, window).Err()
		ttl = window
	}
	return count, ttl, nil
}

// SubmissionRateLimiter caps complaint submissions per citizen per day. It is
// a no-op without a counter or with a non-positive limit, and staff are exempt.
func SubmissionRateLimiter(counter SubmissionCounter, limit int, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if counter == nil || limit <= 0 {
			return c.Next()
		}
		principal, ok := auth.PrincipalFromContext(c)
		if !ok || principal == nil || principal.Role.IsStaff() {
			return c.Next()
		}

		count, retryAfter, err := counter.Increment(c.UserContext(), principal.UserID, submissionWindow)
		if err != nil {
			logger.Warn("rate limiter unavailable; allowing request", zap.String("user_id", principal.UserID), zap.Error(err))
			return c.Next()
		}
		if count > int64(limit) {
			seconds := int(retryAfter.Seconds())
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
			return apperrors.NewTooManyRequests("daily complaint limit reached", map[string]any{
				"limit":               limit,
				"retry_after_seconds": seconds,
			})
		}
		return c.Next()
	}
}
