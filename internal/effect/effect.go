// Package effect implements the transition effect generators: pure,
// deterministic production rules that turn a source/destination image pair
// into a finite, ordered sequence of composited frames.
package effect

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"math/rand/v2"
	"time"
)

var (
	// ErrShapeMismatch is returned when the two images of a transition do not
	// share identical dimensions. The surrounding pipeline letterboxes both
	// images to the canvas first, so hitting this is a usage error.
	ErrShapeMismatch = errors.New("effect: source and destination dimensions differ")
)

// Options control one transition run. The zero value is not usable; Duration
// and FrameRate must both be positive.
type Options struct {
	Duration  time.Duration
	FrameRate float64

	// Easing defaults to Smoothstep when nil.
	Easing EasingFunc

	// Rand is drawn from once at sequence construction (scroll direction,
	// dissolve block order). When nil an OS-seeded source is used.
	Rand *rand.Rand
}

func (o Options) validate() error {
	if o.Duration <= 0 {
		return fmt.Errorf("effect: duration must be positive, got %v", o.Duration)
	}
	if o.FrameRate <= 0 {
		return fmt.Errorf("effect: frame rate must be positive, got %v", o.FrameRate)
	}
	return nil
}

// Steps returns the number of frames the sequence will emit:
// max(1, round(duration * frameRate)).
func (o Options) Steps() int {
	n := int(math.Round(o.Duration.Seconds() * o.FrameRate))
	if n < 1 {
		n = 1
	}
	return n
}

func (o Options) easing() EasingFunc {
	if o.Easing != nil {
		return o.Easing
	}
	return Smoothstep
}

func (o Options) rand() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// A Generator builds the frame sequence for a single transition. Generators
// are stateless across calls; all per-transition state (chosen direction,
// block permutation, precomputed grids) lives in the returned Sequence.
type Generator interface {
	Name() string
	Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error)
}

// renderFunc produces frame i with eased progress t.
type renderFunc func(i int, t float64) (*image.RGBA, error)

// Sequence is a finite, pull-based frame stream. It is not restartable; a
// fresh Generator.Sequence call is required to replay a transition.
type Sequence struct {
	steps  int
	next   int
	ease   EasingFunc
	render renderFunc
}

// NewSequence builds a sequence from a custom render function, for effects
// implemented outside this package. render is called once per frame with the
// frame index and eased progress.
func NewSequence(opts Options, render func(i int, t float64) (*image.RGBA, error)) (*Sequence, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return newSequence(opts, render), nil
}

func newSequence(opts Options, render renderFunc) *Sequence {
	return &Sequence{
		steps:  opts.Steps(),
		ease:   opts.easing(),
		render: render,
	}
}

// Len returns the total number of frames the sequence emits.
func (s *Sequence) Len() int { return s.steps }

// Next returns the next composited frame, or io.EOF once the sequence is
// exhausted. Progress on frame i is ease((i+1)/steps), so the final frame is
// rendered at progress 1.
func (s *Sequence) Next() (*image.RGBA, error) {
	if s.next >= s.steps {
		return nil, io.EOF
	}
	i := s.next
	s.next++
	t := s.ease(float64(i+1) / float64(s.steps))
	return s.render(i, t)
}

func validatePair(src, dst *image.RGBA) error {
	if src == nil || dst == nil {
		return errors.New("effect: nil image")
	}
	if src.Bounds().Dx() != dst.Bounds().Dx() || src.Bounds().Dy() != dst.Bounds().Dy() {
		return ErrShapeMismatch
	}
	return nil
}

func round(v float64) int { return int(math.Round(v)) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
