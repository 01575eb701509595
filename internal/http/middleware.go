package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"address-book/internal/auth"
)

const currentUserKey = "currentUser"

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// bannedIPMiddleware rejects requests from statically banned addresses.
func (h *Handler) bannedIPMiddleware() gin.HandlerFunc {
	banned := make(map[string]struct{}, len(h.opts.BannedIPs))
	for _, ip := range h.opts.BannedIPs {
		banned[strings.TrimSpace(ip)] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := banned[c.ClientIP()]; ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You are banned"})
			return
		}
		c.Next()
	}
}

// rateLimitMiddleware applies a fixed window counter per client IP backed
// by redis. Redis being unreachable fails open.
func (h *Handler) rateLimitMiddleware() gin.HandlerFunc {
	limit := int64(h.opts.RateLimit)
	window := h.opts.RateWindow
	if window <= 0 {
		window = time.Minute
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:%s", c.ClientIP())

		count, err := h.limiter.Incr(ctx, key).Result()
		if err != nil {
			h.logger.Warnf("rate limiter unavailable: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := h.limiter.Expire(ctx, key, window).Err(); err != nil {
				h.logger.Warnf("rate limiter expire: %v", err)
			}
		}
		if count > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}

		c.Next()
	}
}

// authRequired validates the bearer access token and loads the account it
// belongs to into the request context.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		email, err := h.tokens.Validate(token, auth.ScopeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		user, err := h.users.GetByEmail(c.Request.Context(), email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
