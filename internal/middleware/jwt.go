package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"strings" // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/confhall/waitlist-service/internal/utils"
)

// Identity returns an Echo middleware that, when an Authorization: Bearer
// header carrying a valid token is present, stores its subject in the
// request context under "user_id" for the rate limiter to key on. Unlike
// the teacher's JWTAuth, it never rejects a request: this service has no
// login/session system, and endpoints that need to know the caller
// (/book, /confirm) take the user_id from the request body instead.
func Identity(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if raw, ok := strings.CutPrefix(auth, "Bearer "); ok {
				if sub, ok := utils.SubjectFromBearer(secret, raw); ok {
					c.Set("user_id", sub)
				}
			}
			return next(c)
		}
	}
}
