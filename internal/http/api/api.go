// Package api wires the HTTP routes, middleware and handlers.
package api

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/playerfinder/playerfinder/internal/apperr"
	"github.com/playerfinder/playerfinder/internal/groups"
	"github.com/playerfinder/playerfinder/internal/http/api/handlers"
	"github.com/playerfinder/playerfinder/internal/passwords"
	"github.com/playerfinder/playerfinder/internal/ratelimit"
	"github.com/playerfinder/playerfinder/internal/sessions"
	"github.com/playerfinder/playerfinder/internal/users"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes depend on.
type Deps struct {
	DB          *gorm.DB
	Users       *users.Service
	Sessions    *sessions.Service
	Passwords   *passwords.Service
	Groups      *groups.Service
	RateLimiter *ratelimit.Manager
}

var registerTagNameOnce sync.Once

// NewEngine builds a gin engine with the standard middleware stack and all routes.
func NewEngine(deps Deps) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		handlers.RenderError(c, fmt.Errorf("panic: %v", recovered))
	}))
	engine.Use(requestLogger())
	metrics := newHTTPMetrics()
	engine.Use(metrics.middleware())
	engine.Use(corsMiddleware())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	engine.GET("/metrics", gin.WrapH(metrics.handler()))
	RegisterRoutes(engine, deps)
	return engine
}

// RegisterRoutes registers API routes, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}
	registerTagNameOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(handlers.JSONTagName)
		}
	})

	r.NoRoute(func(c *gin.Context) {
		handlers.RenderError(c, apperr.NotFound("route %s %s not found", c.Request.Method, c.Request.URL.Path))
	})
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		handlers.RenderError(c, &apperr.Error{
			Status:  http.StatusMethodNotAllowed,
			Code:    apperr.CodeBadRequest,
			Message: "method not allowed",
		})
	})

	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)

	userHandler := handlers.NewUserHandler(deps.Users)
	sessionHandler := handlers.NewSessionHandler(deps.Sessions)
	passwordHandler := handlers.NewPasswordHandler(deps.Passwords)
	groupHandler := handlers.NewGroupHandler(deps.Groups)
	groupRequestHandler := handlers.NewGroupRequestHandler(deps.Groups)

	r.POST("/users", userHandler.Create)
	r.POST("/sessions", rateLimitMiddleware(deps.RateLimiter, "sessions"), sessionHandler.Create)
	r.POST("/forgot-password", rateLimitMiddleware(deps.RateLimiter, "forgot-password"), passwordHandler.Forgot)
	r.POST("/reset-password", passwordHandler.Reset)

	authed := r.Group("")
	authed.Use(authMiddleware(deps.Sessions))

	authed.PUT("/users/:id", userHandler.Update)
	authed.DELETE("/sessions", sessionHandler.Delete)

	authed.POST("/groups", groupHandler.Create)
	authed.GET("/groups", groupHandler.List)
	authed.GET("/groups/:id", groupHandler.Get)
	authed.PATCH("/groups/:id", groupHandler.Update)
	authed.DELETE("/groups/:id", groupHandler.Delete)
	authed.DELETE("/groups/:id/players/:userId", groupHandler.RemovePlayer)

	authed.POST("/groups/:id/requests", groupRequestHandler.Create)
	authed.POST("/groups/:id/requests/:requestId/accept", groupRequestHandler.Accept)
	authed.DELETE("/groups/:id/requests/:requestId", groupRequestHandler.Reject)
	authed.GET("/group-requests", groupRequestHandler.List)
}
