package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	UIDCookie  = "AGRI_UID"
	UIDHeader  = "X-User-Id"
	DefaultUID = "U_DEV_DEFAULT"
)

// DevLogin gives every request a uid: header, then cookie, then ?uid=, then
// DefaultUID. A uid that did not come from the cookie is written back to it.
func DevLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := c.Request().Header.Get(UIDHeader)
			if uid == "" {
				if ck, err := c.Cookie(UIDCookie); err == nil {
					uid = ck.Value
				}
			}
			if uid == "" {
				uid = c.QueryParam("uid")
				if uid == "" {
					uid = DefaultUID
				}
				c.SetCookie(&http.Cookie{Name: UIDCookie, Value: uid, Path: "/", HttpOnly: true})
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}

// RequireUser rejects requests without a uid header or cookie with 401.
// When enabled is false it passes through; use DevLogin instead.
func RequireUser(enabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return next(c)
			}
			uid := c.Request().Header.Get(UIDHeader)
			if uid == "" {
				if ck, err := c.Cookie(UIDCookie); err == nil {
					uid = ck.Value
				}
			}
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "login required: missing uid"})
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}
