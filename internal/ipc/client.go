package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"resty.dev/v3"

	"github.com/quenby/photoframed/internal/weather"
)

// newClient builds a resty client that tunnels HTTP over the daemon's unix
// socket.
func newClient() *resty.Client {
	path := SocketPath()

	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", path)
			},
		},
	})

	client.SetBaseURL("http://photoframed")
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "photoframed")

	return client
}

// GetStatus queries the running daemon.
func GetStatus() (*StatusResponse, error) {
	result := StatusResponse{}
	resp, err := newClient().R().SetResult(&result).Get("/status")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status request failed: %s", resp.Status())
	}
	return &result, nil
}

func post(path string, body any) (*Response, error) {
	result := Response{}
	req := newClient().R().SetResult(&result).SetError(&result)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		if result.Message != "" {
			return nil, fmt.Errorf("%s failed: %s", path, result.Message)
		}
		return nil, fmt.Errorf("%s failed: %s", path, resp.Status())
	}
	return &result, nil
}

// SendNext advances the slideshow.
func SendNext() (*Response, error) { return post("/next", nil) }

// SendStop asks the daemon to exit.
func SendStop() (*Response, error) { return post("/stop", nil) }

// SendRescan asks the daemon to rescan its image directory.
func SendRescan() (*Response, error) { return post("/rescan", nil) }

// SendLoad queues a specific image.
func SendLoad(path string) (*Response, error) {
	return post("/load", LoadRequest{Path: path})
}

// SendWeather pushes a weather snapshot for the overlay.
func SendWeather(snap weather.Snapshot) (*Response, error) {
	return post("/weather", snap)
}
