// Package middleware carries the echo middleware shared by the control
// socket server.
package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// CharmLog logs each request through charmbracelet/log so socket traffic
// shows up in the daemon log with the same formatting as everything else.
func CharmLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			log.Debug("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"duration", time.Since(start),
			)
			return err
		}
	}
}
