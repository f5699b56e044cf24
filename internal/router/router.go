package router // package router registers the HTTP routes of the booking API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-booking/internal/handler"
	"github.com/iliyamo/room-booking/internal/middleware"
	"github.com/iliyamo/room-booking/internal/utils"
)

// RegisterRoutes registers routes that need no session: liveness and
// readiness probes.
func RegisterRoutes(e *echo.Echo, b *handler.BookingHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", b.Ready)
}

// RegisterPublic registers the room and booking endpoints.  roomCache wraps
// GET /rooms only; every other route always reaches the store.
func RegisterPublic(e *echo.Echo, b *handler.BookingHandler, roomCache echo.MiddlewareFunc) {
	e.GET("/rooms", b.ListRooms, roomCache)

	e.GET("/bookings", b.ListBookings)
	e.GET("/bookings/export", b.ExportBookings)
	e.POST("/bookings", b.CreateBooking)
	e.PATCH("/bookings/:id", b.UpdateStatus)
	e.DELETE("/bookings/:id", b.DeleteBooking)
}

// RegisterAdmin registers /admin routes.  POST /admin/session exchanges the
// admin override token for a session JWT; the remaining routes require that
// JWT with role ADMIN.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	e.POST("/admin/session", a.CreateSession)

	g := e.Group("/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(utils.RoleAdmin))
	g.POST("/bookings", a.CreateOverrideBooking)
	g.POST("/rooms", a.CreateRoom)
	g.PUT("/rooms/:id", a.UpsertRoom)
	g.DELETE("/rooms/:id", a.DeleteRoom)
}
