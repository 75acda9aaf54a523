package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-blog-cms/pkg/response"
)

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP, scoped by name so limiters do not share buckets
func KeyByIP(name string) KeyFunc {
	return func(c *gin.Context) string {
		return "rl:" + name + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID falls back to the client IP on routes without an identity
func KeyByUserID(name string) KeyFunc {
	return func(c *gin.Context) string {
		if id := Identity(c).ID; id > 0 {
			return "rl:" + name + ":user:" + strconv.FormatInt(id, 10)
		}
		return "rl:" + name + ":anon:ip:" + ipFromCtx(c)
	}
}

// INCR and set the window on the first hit in one round trip
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// AllowFunc returns true to bypass the limit
type AllowFunc func(*gin.Context) bool

// RateLimit is a fixed-window counter in Redis.
// It fails open when Redis is unavailable and is a no-op without a client.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, http.MethodOptions) || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := keyFn(c)

		count, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int()
		if err != nil {
			c.Next()
			return
		}

		resetSec := 0
		if ttl, err := rdb.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
			resetSec = int((ttl + time.Second - 1) / time.Second)
		}

		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
