package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yonetake/cafe-pos/internal/handler"
	"github.com/yonetake/cafe-pos/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication:
// the health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers login under /v1/auth and the admin-only register
// endpoint under the protected /v1 group.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.POST("/auth/register", a.Register, middleware.RequireRole("ADMIN"))
}

// RegisterFloor registers the seating map and table game endpoints.
func RegisterFloor(e *echo.Echo, f *handler.FloorHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(limiter)
	g.Use(middleware.RequireRole("ADMIN", "STAFF"))

	g.GET("/tables", f.Tables)
	g.POST("/tables/:id/games", f.StartGame)
}

// RegisterSessions registers the seat session lifecycle endpoints. Editing
// billed times is restricted to admins.
func RegisterSessions(e *echo.Echo, s *handler.SessionHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(limiter)
	g.Use(middleware.RequireRole("ADMIN", "STAFF"))

	g.POST("/seats/:id/session", s.Start)
	g.POST("/seats/:id/session/stop", s.Stop)
	g.POST("/seats/:id/transfer", s.Transfer)
	g.PATCH("/sessions/:id/times", s.EditTimes, middleware.RequireRole("ADMIN"))
}

// RegisterOrders registers bill inspection, line items, merge/unmerge and
// settlement endpoints.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(limiter)
	g.Use(middleware.RequireRole("ADMIN", "STAFF"))

	g.GET("/orders/:id", o.Detail)
	g.POST("/orders/:id/items", o.AddItem)
	g.POST("/orders/merge", o.Merge)
	g.POST("/orders/:id/unmerge", o.Unmerge)
	g.POST("/orders/:id/settle", o.Settle)
}
