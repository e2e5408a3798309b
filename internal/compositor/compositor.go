// Package compositor owns the render loop: it holds the current base image,
// alternates between idle recomposes (which keep the on-screen clock ticking)
// and draining a transition effect, and paces both against the target frame
// rate before handing frames to the output fanout.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/quenby/photoframed/internal/effect"
	"github.com/quenby/photoframed/internal/fanout"
	"github.com/quenby/photoframed/internal/imaging"
	"github.com/quenby/photoframed/internal/overlay"
)

var (
	// ErrBusy is returned when a transition is requested while another one is
	// still being drained.
	ErrBusy = errors.New("compositor: transition already in progress")
)

// Config fixes the canvas and pacing for the lifetime of the compositor.
type Config struct {
	Width     int
	Height    int
	FrameRate float64

	// Duration applied when a transition request does not carry its own.
	DefaultDuration time.Duration

	Easing effect.EasingFunc

	// Rand seeds effect randomness (directions, block orders). Nil selects an
	// OS-seeded source.
	Rand *rand.Rand
}

// Request asks for one animated advance to a new image.
type Request struct {
	Image     image.Image
	Name      string
	Generator effect.Generator

	// Duration overrides Config.DefaultDuration when positive.
	Duration time.Duration
}

// Status is a point-in-time snapshot of the compositor for telemetry.
type Status struct {
	State        string  `json:"state"` // "idle" or "transitioning"
	CurrentImage string  `json:"current_image"`
	Effect       string  `json:"effect,omitempty"`
	Frames       uint64  `json:"frames"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	FrameRate    float64 `json:"framerate"`
}

// Compositor is driven by a single scheduler goroutine; Tick and Transition
// must not be called concurrently with each other. Status and the overlay
// data source are safe from any goroutine.
type Compositor struct {
	cfg      Config
	renderer *overlay.Renderer
	out      *fanout.Fanout
	data     func() overlay.Data

	mu           sync.Mutex
	base         *image.RGBA
	inTransition bool
	currentImage string
	effectName   string
	frames       uint64

	// Injectable clock for pacing tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New wires the compositor to its overlay renderer, output fanout and overlay
// data source. data is called once per composed frame and must never block.
func New(cfg Config, r *overlay.Renderer, out *fanout.Fanout, data func() overlay.Data) *Compositor {
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 30
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = 2 * time.Second
	}
	if data == nil {
		data = func() overlay.Data { return overlay.Data{Now: time.Now()} }
	}
	return &Compositor{
		cfg:      cfg,
		renderer: r,
		out:      out,
		data:     data,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Period returns the tick interval derived from the target frame rate.
func (c *Compositor) Period() time.Duration {
	return time.Duration(float64(time.Second) / c.cfg.FrameRate)
}

// SetBase primes the compositor with its first image (or replaces the base
// without animation), letterboxing it to the canvas and publishing one
// composed frame.
func (c *Compositor) SetBase(img image.Image, name string) {
	base := imaging.Letterbox(img, c.cfg.Width, c.cfg.Height)

	c.mu.Lock()
	c.base = base
	c.currentImage = name
	c.mu.Unlock()

	c.publish(base)
}

// Tick performs one idle compose: the unchanged base with a fresh overlay.
// It is a no-op while a transition is being drained or before the first base
// image arrives.
func (c *Compositor) Tick() {
	c.mu.Lock()
	if c.inTransition || c.base == nil {
		c.mu.Unlock()
		return
	}
	base := c.base
	c.mu.Unlock()

	c.publish(base)
}

// Transition animates from the current base to req.Image, publishing each
// composed frame at the target rate. Validation problems (bad effect
// parameters, missing generator) are returned before any frame is emitted.
// A generator failure mid-drive is logged, the previous base is retained and
// the compositor returns to idle. Context cancellation skips to the final
// frame so the new image is never lost.
func (c *Compositor) Transition(ctx context.Context, req Request) error {
	if req.Image == nil {
		return errors.New("compositor: transition request without an image")
	}

	dst := imaging.Letterbox(req.Image, c.cfg.Width, c.cfg.Height)

	c.mu.Lock()
	if c.inTransition {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.base == nil {
		// Priming: nothing to animate from yet.
		c.base = dst
		c.currentImage = req.Name
		c.mu.Unlock()
		c.publish(dst)
		return nil
	}
	if req.Generator == nil {
		c.mu.Unlock()
		return errors.New("compositor: transition request without an effect")
	}
	src := c.base
	c.inTransition = true
	c.effectName = req.Generator.Name()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inTransition = false
		c.effectName = ""
		c.mu.Unlock()
	}()

	duration := req.Duration
	if duration <= 0 {
		duration = c.cfg.DefaultDuration
	}
	seq, err := req.Generator.Sequence(src, dst, effect.Options{
		Duration:  duration,
		FrameRate: c.cfg.FrameRate,
		Easing:    c.cfg.Easing,
		Rand:      c.cfg.Rand,
	})
	if err != nil {
		return fmt.Errorf("compositor: building %s sequence: %w", req.Generator.Name(), err)
	}

	log.Debug("transition started",
		"effect", req.Generator.Name(), "image", req.Name, "frames", seq.Len())

	period := c.Period()
	deadline := c.now()
	aborted := false

drive:
	for {
		select {
		case <-ctx.Done():
			aborted = true
			break drive
		default:
		}

		frame, err := nextFrame(seq)
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Error("transition effect failed, keeping previous image",
				"effect", req.Generator.Name(), "error", err)
			return fmt.Errorf("compositor: driving %s: %w", req.Generator.Name(), err)
		}

		c.publish(frame)

		// Running deadline: late frames shrink the next sleep instead of
		// pushing every subsequent frame back.
		deadline = deadline.Add(period)
		if wait := deadline.Sub(c.now()); wait > 0 {
			c.sleep(wait)
		}
	}

	// The destination always lands, even when the last yielded frame was an
	// intermediate or the context was cancelled mid-drive.
	c.mu.Lock()
	c.base = dst
	c.currentImage = req.Name
	c.mu.Unlock()
	c.publish(dst)

	if aborted {
		return ctx.Err()
	}
	return nil
}

// nextFrame converts a panicking generator into an error so one bad effect
// cannot take down the scheduler.
func nextFrame(seq *effect.Sequence) (frame *image.RGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			frame = nil
			err = fmt.Errorf("effect panicked: %v", r)
		}
	}()
	return seq.Next()
}

// publish composes the overlay onto the frame and pushes it downstream.
func (c *Compositor) publish(frame *image.RGBA) {
	composed := c.renderer.Compose(frame, c.data())
	c.out.Publish(composed)

	c.mu.Lock()
	c.frames++
	c.mu.Unlock()
}

// Status reports the current state for the control socket.
func (c *Compositor) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := "idle"
	if c.inTransition {
		state = "transitioning"
	}
	return Status{
		State:        state,
		CurrentImage: c.currentImage,
		Effect:       c.effectName,
		Frames:       c.frames,
		Width:        c.cfg.Width,
		Height:       c.cfg.Height,
		FrameRate:    c.cfg.FrameRate,
	}
}
