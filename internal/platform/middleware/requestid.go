package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CtxRequestID is the echo context key the request id is stored under. The
// logging and recovery middleware read it back to tag their lines.
const CtxRequestID = "request_id"

// RequestID attaches a request id to the context and response, honoring a
// client-supplied X-Request-ID when present.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.New().String()
			}
			c.Set(CtxRequestID, rid)
			c.Response().Header().Set(echo.HeaderXRequestID, rid)
			return next(c)
		}
	}
}
