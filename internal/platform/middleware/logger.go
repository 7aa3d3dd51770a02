package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicportal/clinicportal/internal/platform/auth"
)

// Logger writes one line per request. Client errors land at warn and server
// errors at error, so booking conflicts and storage faults separate cleanly
// in the stream. Requests that passed the token middleware also carry the
// actor kind.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			var evt *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				evt = logger.Error().Err(err)
			case status >= http.StatusBadRequest:
				evt = logger.Warn()
			default:
				evt = logger.Info()
			}

			rid, _ := c.Get(CtxRequestID).(string)
			evt = evt.
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Dur("elapsed", time.Since(start)).
				Str("remote_ip", c.RealIP())
			if kind, ok := c.Get(auth.CtxKind).(string); ok && kind != "" {
				evt = evt.Str("actor_kind", kind)
			}
			evt.Msg("request")

			return err
		}
	}
}
