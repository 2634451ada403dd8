package routes

import (
	"net/http"
	"time"

	"authcore/api/handler"
	"authcore/api/middleware"
	"authcore/internal/entity"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Users          *handler.UserHandler
	Sessions       *handler.SessionHandler
	AuthMiddleware middleware.AuthMiddleware
	RegisterRate   *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	sessionHandler *handler.SessionHandler,
	authMiddleware middleware.AuthMiddleware,
) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		Users:          userHandler,
		Sessions:       sessionHandler,
		AuthMiddleware: authMiddleware,
		RegisterRate:   middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	requireAuth := r.AuthMiddleware.RequireAuth
	requireAdmin := middleware.RequireRole(entity.UserRoleAdmin)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"success": true, "status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	auth := e.Group("/auth")
	auth.POST("/register", r.Auth.Register, r.RegisterRate.Middleware())
	auth.POST("/login", r.Auth.Login, r.LoginRate.Middleware())
	auth.POST("/logout", r.Auth.Logout, requireAuth)
	auth.GET("/me", r.Auth.Me, requireAuth)

	users := e.Group("/users", requireAuth)
	users.GET("/sessions", r.Sessions.Mine)
	users.GET("/sessions/all", r.Sessions.All, requireAdmin)
	users.POST("/sessions/logout", r.Sessions.Logout)
	users.POST("/sessions/logout-all", r.Sessions.LogoutAll)
	users.POST("/sessions/sweep", r.Sessions.Sweep, requireAdmin)
	users.DELETE("/sessions/:sessionId", r.Sessions.Terminate, requireAdmin)
	users.PUT("/profile", r.Users.UpdateProfile)

	users.GET("", r.Users.List, requireAdmin)
	users.GET("/:id", r.Users.Get, requireAdmin)
	users.PUT("/:id", r.Users.Update, requireAdmin)
	users.DELETE("/:id", r.Users.Delete, requireAdmin)
}
