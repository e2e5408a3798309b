// Package fanout delivers composed frames to the attached output sinks with
// drop-oldest, never-block semantics. A slow or broken sink can never stall
// the render loop or starve its siblings.
package fanout

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/quenby/photoframed/internal/imaging"
)

// A Sink consumes composed frames. Publish must return quickly; hand the
// frame to a goroutine or a Cell if delivery is slow. The frame is shared
// between sinks and must be treated as read-only.
type Sink interface {
	Name() string
	Publish(frame *image.RGBA)
}

// Fanout distributes each published frame to every attached sink, isolating
// per-sink panics.
type Fanout struct {
	mu    sync.RWMutex
	sinks []Sink
	count uint64
}

func New() *Fanout {
	return &Fanout{}
}

// Attach registers a sink. Frames published before Attach are not replayed.
func (f *Fanout) Attach(s Sink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, s)
}

// Detach removes the sink with the given name.
func (f *Fanout) Detach(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.sinks[:0]
	for _, s := range f.sinks {
		if s.Name() != name {
			kept = append(kept, s)
		}
	}
	f.sinks = kept
}

// Published returns the number of frames pushed through the fanout.
func (f *Fanout) Published() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}

// Publish copies the frame once and hands the copy to every sink. The caller
// may reuse or mutate its own frame immediately after Publish returns.
func (f *Fanout) Publish(frame *image.RGBA) {
	f.mu.RLock()
	sinks := make([]Sink, len(f.sinks))
	copy(sinks, f.sinks)
	f.mu.RUnlock()

	f.mu.Lock()
	f.count++
	f.mu.Unlock()

	if len(sinks) == 0 {
		return
	}

	shared := imaging.Clone(frame)
	for _, s := range sinks {
		deliver(s, shared)
	}
}

func deliver(s Sink, frame *image.RGBA) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("sink panicked, frame dropped", "sink", s.Name(), "panic", r)
		}
	}()
	s.Publish(frame)
}

// CallbackSink adapts a plain function into a Sink, e.g. the terminal
// preview or a display handoff.
type CallbackSink struct {
	name string
	fn   func(*image.RGBA)
}

func NewCallbackSink(name string, fn func(*image.RGBA)) *CallbackSink {
	return &CallbackSink{name: name, fn: fn}
}

func (s *CallbackSink) Name() string { return s.name }

func (s *CallbackSink) Publish(frame *image.RGBA) { s.fn(frame) }

// JPEGSink encodes each frame to JPEG and parks the bytes in a single-slot
// cell for stream consumers. Encoding failures drop the frame and keep the
// previous one readable.
type JPEGSink struct {
	quality int
	cell    *Cell[[]byte]
}

// NewJPEGSink clamps quality into [1,100]; zero selects 80.
func NewJPEGSink(quality int) *JPEGSink {
	if quality <= 0 {
		quality = 80
	}
	if quality > 100 {
		quality = 100
	}
	return &JPEGSink{quality: quality, cell: NewCell[[]byte]()}
}

func (s *JPEGSink) Name() string { return "jpeg-stream" }

func (s *JPEGSink) Publish(frame *image.RGBA) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: s.quality}); err != nil {
		log.Error("jpeg encode failed, frame dropped", "error", err)
		return
	}
	s.cell.Set(buf.Bytes())
}

// Latest returns the newest encoded frame without waiting.
func (s *JPEGSink) Latest() ([]byte, bool) {
	return s.cell.Get()
}

// LatestOrWait returns the newest encoded frame, waiting for the first one
// when none has been published yet.
func (s *JPEGSink) LatestOrWait(ctx context.Context) ([]byte, error) {
	return s.cell.Latest(ctx)
}

// NextFrame waits for a frame published after the previous NextFrame call.
func (s *JPEGSink) NextFrame(ctx context.Context) ([]byte, error) {
	return s.cell.Next(ctx)
}
