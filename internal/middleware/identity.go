package middleware

import "github.com/labstack/echo/v4"

// Context keys set by JWTAuth.
const (
	ctxSubject = "subject"
	ctxRole    = "role"
)

// Subject returns the authenticated admin subject, or "anon" when the request
// carried no valid session token.
func Subject(c echo.Context) string {
	if s, ok := c.Get(ctxSubject).(string); ok && s != "" {
		return s
	}
	return "anon"
}

// Role returns the role claim stored by JWTAuth.
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}
