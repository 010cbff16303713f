package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowOrigins  []string // "*" allows any origin
	AllowMethods  []string
	AllowHeaders  []string
	ExposeHeaders []string
	MaxAge        int // seconds a preflight may be cached, 0 to omit
}

// CORS returns CORS middleware. Requests from origins outside AllowOrigins
// are served without CORS headers, so browsers block them.
func CORS(cfg CORSConfig) echo.MiddlewareFunc {
	anyOrigin := false
	origins := make(map[string]struct{}, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			anyOrigin = true
		}
		origins[strings.TrimRight(o, "/")] = struct{}{}
	}

	static := map[string]string{}
	if len(cfg.AllowMethods) > 0 {
		static[echo.HeaderAccessControlAllowMethods] = strings.Join(cfg.AllowMethods, ", ")
	}
	if len(cfg.AllowHeaders) > 0 {
		static[echo.HeaderAccessControlAllowHeaders] = strings.Join(cfg.AllowHeaders, ", ")
	}
	if len(cfg.ExposeHeaders) > 0 {
		static[echo.HeaderAccessControlExposeHeaders] = strings.Join(cfg.ExposeHeaders, ", ")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Add(echo.HeaderVary, echo.HeaderOrigin)

			origin := c.Request().Header.Get(echo.HeaderOrigin)
			_, listed := origins[origin]
			switch {
			case origin != "" && (anyOrigin || listed):
				h.Set(echo.HeaderAccessControlAllowOrigin, origin)
			case origin == "" && anyOrigin:
				h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			default:
				return next(c)
			}
			for k, v := range static {
				h.Set(k, v)
			}

			if c.Request().Method != http.MethodOptions {
				return next(c)
			}
			if cfg.MaxAge > 0 {
				h.Set(echo.HeaderAccessControlMaxAge, strconv.Itoa(cfg.MaxAge))
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}
