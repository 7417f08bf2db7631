package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pollgate/pollgate/internal/phone"
)

// SendRateLimit bounds how often a single phone number can request a new
// one-time code, using Redis when available. The key is the normalized phone
// so separator variants share one budget; requests without a phone fall back
// to the client IP. Code resubmission inside an open session is deliberately
// not limited here.
func SendRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		var req struct {
			Phone string `json:"phone"`
		}
		_ = c.BodyParser(&req)
		key := strings.TrimSpace(req.Phone)
		if key == "" {
			key = c.IP()
		} else {
			key = phone.Normalize(key)
		}
		cnt, err := cache.Incr(c.UserContext(), "rl:send:"+key).Result()
		if err == nil && cnt == 1 {
			cache.Expire(c.UserContext(), "rl:send:"+key, time.Minute)
		}
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many code requests, try again later")
		}
		return c.Next()
	}
}
