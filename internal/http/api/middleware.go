package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playerfinder/playerfinder/internal/apperr"
	"github.com/playerfinder/playerfinder/internal/http/api/handlers"
	"github.com/playerfinder/playerfinder/internal/ratelimit"
	"github.com/playerfinder/playerfinder/internal/sessions"
	log "github.com/sirupsen/logrus"
)

// authMiddleware validates bearer tokens and loads the caller.
func authMiddleware(svc *sessions.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handlers.RenderError(c, apperr.Unauthorized("missing authorization header"))
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			handlers.RenderError(c, apperr.Unauthorized("invalid authorization format"))
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			handlers.RenderError(c, apperr.Unauthorized("empty token"))
			return
		}

		principal, errAuth := svc.Authenticate(c.Request.Context(), token)
		if errAuth != nil {
			handlers.RenderError(c, errAuth)
			return
		}
		handlers.SetPrincipal(c, principal)
		c.Next()
	}
}

// rateLimitMiddleware throttles a route per client address.
func rateLimitMiddleware(manager *ratelimit.Manager, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := manager.Limit()
		if limit <= 0 {
			c.Next()
			return
		}
		result, errAllow := manager.Allow(c.Request.Context(), ratelimit.KeyForClient(scope, c.ClientIP()), limit)
		if errAllow != nil {
			log.WithError(errAllow).Warn("rate limit: check failed, allowing request")
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Reset.IsZero() {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(result.Reset.Unix(), 10))
		}
		if !result.Allowed {
			handlers.RenderError(c, apperr.TooManyRequests("too many requests"))
			return
		}
		c.Next()
	}
}

// requestLogger logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}
		if user := handlers.CurrentUser(c); user != nil {
			fields["user_id"] = user.ID
		}
		entry := log.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Info("request")
		default:
			entry.Debug("request")
		}
	}
}

// corsMiddleware allows browser clients from any origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
