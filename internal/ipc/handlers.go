package ipc

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/quenby/photoframed"
	"github.com/quenby/photoframed/internal/weather"
)

// GET /status
func (s *Server) statusHandler(c echo.Context) error {
	resp := StatusResponse{
		Status:     "ok",
		Message:    "photoframed is running",
		Version:    strings.Trim(photoframed.Version, "\n\r "),
		PID:        os.Getpid(),
		Socket:     SocketPath(),
		Config:     viper.ConfigFileUsed(),
		ImagesDir:  s.manager.Dir(),
		Images:     s.manager.ImageCount(),
		Compositor: s.status(),
	}
	if s.weather != nil {
		resp.Weather = s.weather.Get()
	}
	return c.JSONPretty(http.StatusOK, resp, "  ")
}

// POST /stop
func (s *Server) stopHandler(c echo.Context) error {
	// Acknowledge first; the daemon tears the socket down right after.
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.shutdown()
	}()
	return c.JSON(http.StatusOK, Response{Status: "ok", Message: "stopping"})
}

// POST /next
func (s *Server) nextHandler(c echo.Context) error {
	s.manager.Next()
	return c.JSON(http.StatusOK, Response{Status: "ok"})
}

// POST /load
func (s *Server) loadHandler(c echo.Context) error {
	var req LoadRequest
	if err := c.Bind(&req); err != nil || req.Path == "" {
		return c.JSON(http.StatusBadRequest, Response{
			Status:  "error",
			Message: `expected {"path": "/absolute/path/to/image"}`,
		})
	}
	if err := s.manager.Load(req.Path); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: err.Error()})
	}
	return c.JSON(http.StatusOK, Response{Status: "ok", Message: "queued " + req.Path})
}

// POST /rescan
func (s *Server) rescanHandler(c echo.Context) error {
	s.manager.Rescan()
	return c.JSON(http.StatusOK, Response{Status: "ok"})
}

// POST /weather
func (s *Server) weatherHandler(c echo.Context) error {
	if s.weather == nil {
		return c.JSON(http.StatusServiceUnavailable, Response{Status: "error", Message: "weather disabled"})
	}
	var snap weather.Snapshot
	if err := c.Bind(&snap); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: "invalid weather payload"})
	}
	if snap.Unit != "" && snap.Unit != "C" && snap.Unit != "F" {
		return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: "unit must be C or F"})
	}
	s.weather.Set(snap)
	return c.JSON(http.StatusOK, Response{Status: "ok"})
}

// GET /frame returns the most recently composed frame as JPEG.
func (s *Server) frameHandler(c echo.Context) error {
	if s.stream == nil {
		return c.JSON(http.StatusServiceUnavailable, Response{Status: "error", Message: "streaming disabled"})
	}
	data, ok := s.stream.Latest()
	if !ok {
		return c.JSON(http.StatusServiceUnavailable, Response{Status: "error", Message: "no frame composed yet"})
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}

// GET /stream serves multipart MJPEG until the client disconnects.
func (s *Server) streamHandler(c echo.Context) error {
	if s.stream == nil {
		return c.JSON(http.StatusServiceUnavailable, Response{Status: "error", Message: "streaming disabled"})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "multipart/x-mixed-replace; boundary=frame")
	res.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	next := s.stream.LatestOrWait
	for {
		data, err := next(ctx)
		if err != nil {
			return nil // client went away
		}
		next = s.stream.NextFrame

		if _, err := fmt.Fprintf(res, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
			return nil
		}
		if _, err := res.Write(data); err != nil {
			return nil
		}
		if _, err := fmt.Fprint(res, "\r\n"); err != nil {
			return nil
		}
		res.Flush()
	}
}
