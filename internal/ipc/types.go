package ipc

import (
	"github.com/quenby/photoframed/internal/compositor"
	"github.com/quenby/photoframed/internal/weather"
)

// Manager is the slice of the slideshow manager the control socket drives.
type Manager interface {
	Next()
	Load(path string) error
	Rescan()
	ImageCount() int
	Dir() string
}

// LoadRequest is the POST /load body.
type LoadRequest struct {
	Path string `json:"path"`
}

// Response is the generic acknowledgement body.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// StatusResponse is the GET /status body.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
	PID     int    `json:"pid"`
	Socket  string `json:"socket"`
	Config  string `json:"config"`

	ImagesDir string `json:"images_dir"`
	Images    int    `json:"images"`

	Compositor compositor.Status `json:"compositor"`

	Weather *weather.Snapshot `json:"weather,omitempty"`
}
