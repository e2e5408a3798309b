package ipc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"github.com/quenby/photoframed/internal/compositor"
	"github.com/quenby/photoframed/internal/fanout"
	"github.com/quenby/photoframed/internal/middleware"
	"github.com/quenby/photoframed/internal/weather"
)

// SocketPath returns the control socket location: the user runtime dir when
// available, the system temp dir otherwise.
func SocketPath() string {
	sockDir := os.Getenv("XDG_RUNTIME_DIR")
	if sockDir == "" {
		sockDir = os.TempDir()
	}
	return filepath.Join(sockDir, "photoframed.sock")
}

// Server exposes the running daemon on a unix socket.
type Server struct {
	echo    *echo.Echo
	manager Manager
	status  func() compositor.Status
	weather *weather.Store
	stream  *fanout.JPEGSink

	// shutdown stops the whole daemon; invoked by POST /stop.
	shutdown func()
}

// NewServer wires the handlers. stream may be nil when the frame endpoints
// are disabled.
func NewServer(m Manager, status func() compositor.Status, ws *weather.Store, stream *fanout.JPEGSink, shutdown func()) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.CharmLog())

	s := &Server{
		echo:     e,
		manager:  m,
		status:   status,
		weather:  ws,
		stream:   stream,
		shutdown: shutdown,
	}
	s.registerRoutes()
	return s
}

// Start listens on sockPath and serves until Shutdown. A stale socket file
// from a previous run is removed first.
func (s *Server) Start(sockPath string) error {
	if _, err := os.Stat(sockPath); err == nil {
		_ = os.Remove(sockPath)
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return err
	}

	s.echo.Listener = listener
	log.Info("control socket listening", "path", sockPath)

	if err := s.echo.StartServer(new(http.Server)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener, waiting briefly for in-flight requests.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
