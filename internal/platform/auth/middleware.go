package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys set by Middleware for downstream handlers.
const (
	CtxKind  = "actor_kind"
	CtxKey   = "actor_key"
	CtxEmail = "actor_email"
)

// Middleware extracts and validates the bearer token, then exposes the
// actor's kind, key and email on the echo context.
func Middleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			claims, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(CtxKind, claims.Kind)
			c.Set(CtxKey, claims.Subject)
			c.Set(CtxEmail, claims.Email)
			return next(c)
		}
	}
}

// RequireKind rejects requests whose token is not for the given actor kind.
func RequireKind(kind string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if k, _ := c.Get(CtxKind).(string); k != kind {
				return echo.NewHTTPError(http.StatusForbidden, "wrong actor kind")
			}
			return next(c)
		}
	}
}
