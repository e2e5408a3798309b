package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"

	"github.com/quenby/photoframed/internal/compositor"
	"github.com/quenby/photoframed/internal/display"
	"github.com/quenby/photoframed/internal/effect"
	"github.com/quenby/photoframed/internal/fanout"
	"github.com/quenby/photoframed/internal/ipc"
	"github.com/quenby/photoframed/internal/overlay"
	"github.com/quenby/photoframed/internal/slideshow"
	"github.com/quenby/photoframed/internal/weather"
)

// Options carries the resolved configuration into the daemon.
type Options struct {
	Compositor    compositor.Config
	Slideshow     slideshow.Config
	Overlay       overlay.Config
	StreamQuality int
	WeatherMaxAge time.Duration
	Preview       bool
}

// StartDaemon wires the compositor, slideshow manager, sinks and the
// control socket together and blocks until a signal or a stop command.
func StartDaemon(opts Options) {
	log.Infof("StartDaemon() started in PID: %d", os.Getpid())

	if _, err := ipc.GetStatus(); err == nil {
		log.Infof("photoframed is already running, exiting")
		os.Exit(0)
	}

	out := fanout.New()
	stream := fanout.NewJPEGSink(opts.StreamQuality)
	out.Attach(stream)

	store := weather.NewStore(opts.WeatherMaxAge)
	renderer := overlay.New(opts.Compositor.Width, opts.Compositor.Height, opts.Overlay)
	comp := compositor.New(opts.Compositor, renderer, out, func() overlay.Data {
		return overlay.Data{Now: time.Now(), Weather: store.Get()}
	})

	manager := slideshow.New(opts.Slideshow, comp, effect.DefaultLibrary(nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if opts.Preview {
		preview, err := display.NewPreview(cancel)
		if err != nil {
			log.Fatalf("Error starting terminal preview: %v", err)
		}
		defer preview.Close()
		out.Attach(preview)
	}

	server := ipc.NewServer(manager, comp.Status, store, stream, cancel)
	go func() {
		log.Infof("Starting socket server")
		if err := server.Start(ipc.SocketPath()); err != nil {
			log.Errorf("Socket server error: %v", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("Received signal %v, shutting down", sig)
		cancel()
	}()

	log.Infof("Showing images from %s", opts.Slideshow.Dir)
	if err := manager.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("Slideshow stopped: %v", err)
	}

	if err := server.Shutdown(); err != nil {
		log.Errorf("Error shutting down socket server: %v", err)
	}
	os.Remove(ipc.SocketPath())
	log.Infof("photoframed exited")
}

// SetupRotatingLogger redirects logging to a rotating file. Used when
// running detached from a terminal.
func SetupRotatingLogger() {
	home := os.Getenv("HOME")
	logDir := filepath.Join(home, ".local", "share", "photoframed")
	logPath := filepath.Join(logDir, "photoframed.log")

	writer, err := rotatelogs.New(
		logPath+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationSize(10*1024*1024),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Fatalf("failed to configure log rotation: %v", err)
	}

	log.SetOutput(writer)
	log.SetLevel(log.InfoLevel)
}
