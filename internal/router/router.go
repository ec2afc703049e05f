package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/confhall/waitlist-service/internal/handler"    // import the handlers that implement business logic
	"github.com/confhall/waitlist-service/internal/middleware" // import middleware for identity extraction and rate limiting
)

// RegisterHealth registers the health check endpoint on the provided
// Echo instance.
func RegisterHealth(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterScheduler registers the seven booking-scheduler endpoints
// from spec.md §6.1. /book and /confirm sit behind the rate limiter
// since they are the two write paths a client could hammer to starve
// other attendees of a fair shot at a freed slot; the remaining
// endpoints are left unlimited.
func RegisterScheduler(e *echo.Echo, h *handler.SchedulerHandler, limiter echo.MiddlewareFunc) {
	e.POST("/user", h.CreateUser)
	e.POST("/conference", h.CreateConference)
	e.POST("/book", h.Book, limiter)
	e.GET("/booking/:id", h.GetBooking)
	e.POST("/confirm", h.ConfirmBooking, limiter)
	e.POST("/cancel", h.CancelBooking)
	e.GET("/conference/:name/bookings", h.ListConferenceBookings)
}

// UseIdentity installs the optional-identity middleware globally so
// the rate limiter can key by user_id when a bearer token is present,
// falling back to IP otherwise.
func UseIdentity(e *echo.Echo, jwtSecret string) {
	if jwtSecret == "" {
		return
	}
	e.Use(middleware.Identity(jwtSecret))
}
