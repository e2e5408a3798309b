package compositor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenby/photoframed/internal/effect"
	"github.com/quenby/photoframed/internal/fanout"
	"github.com/quenby/photoframed/internal/imaging"
	"github.com/quenby/photoframed/internal/overlay"
)

const (
	testW = 64
	testH = 48
)

var frozenTime = time.Date(2026, 5, 17, 9, 0, 0, 0, time.UTC)

// capture collects every frame the fanout delivers.
type capture struct {
	mu     sync.Mutex
	frames []*image.RGBA
}

func (c *capture) sink() fanout.Sink {
	return fanout.NewCallbackSink("capture", func(f *image.RGBA) {
		c.mu.Lock()
		c.frames = append(c.frames, f)
		c.mu.Unlock()
	})
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *capture) last() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

// fakeClock advances simulated time by exactly the slept amount.
type fakeClock struct {
	mu     sync.Mutex
	t      time.Time
	sleeps []time.Duration
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) sleep(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
	f.sleeps = append(f.sleeps, d)
}

func testCompositor(t *testing.T) (*Compositor, *capture, *fakeClock) {
	t.Helper()
	cap := &capture{}
	out := fanout.New()
	out.Attach(cap.sink())

	r := overlay.New(testW, testH, overlay.Config{TimeSize: 10, DateSize: 8})
	c := New(Config{
		Width:           testW,
		Height:          testH,
		FrameRate:       10,
		DefaultDuration: 500 * time.Millisecond, // 5 frames at 10 fps
		Easing:          func(t float64) float64 { return t },
	}, r, out, func() overlay.Data { return overlay.Data{Now: frozenTime} })

	clk := &fakeClock{t: frozenTime}
	c.now = clk.now
	c.sleep = clk.sleep
	return c, cap, clk
}

func slide(shade uint8) *image.RGBA {
	img := imaging.New(testW, testH)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = shade
	}
	return img
}

func TestTickBeforeBaseIsNoop(t *testing.T) {
	c, cap, _ := testCompositor(t)
	c.Tick()
	c.Tick()
	assert.Equal(t, 0, cap.count())
	assert.Equal(t, "idle", c.Status().State)
}

func TestSetBasePrimesAndPublishes(t *testing.T) {
	c, cap, _ := testCompositor(t)
	c.SetBase(slide(40), "first.jpg")

	require.Equal(t, 1, cap.count())
	f := cap.last()
	assert.Equal(t, testW, f.Bounds().Dx())
	assert.Equal(t, testH, f.Bounds().Dy())

	st := c.Status()
	assert.Equal(t, "first.jpg", st.CurrentImage)
	assert.EqualValues(t, 1, st.Frames)
}

func TestIdleTicksKeepPublishing(t *testing.T) {
	c, cap, _ := testCompositor(t)
	c.SetBase(slide(40), "first.jpg")

	c.Tick()
	c.Tick()
	c.Tick()
	assert.Equal(t, 4, cap.count())

	// Frozen overlay data: idle recomposes are byte-identical.
	a := cap.frames[1]
	b := cap.frames[2]
	assert.True(t, bytes.Equal(a.Pix, b.Pix))
}

func TestTransitionPrimesWhenNoBase(t *testing.T) {
	c, cap, _ := testCompositor(t)

	err := c.Transition(context.Background(), Request{Image: slide(80), Name: "first.jpg"})
	require.NoError(t, err)
	assert.Equal(t, 1, cap.count())
	assert.Equal(t, "first.jpg", c.Status().CurrentImage)
}

func TestTransitionDrainsEffectAndLandsOnDestination(t *testing.T) {
	c, cap, clk := testCompositor(t)
	c.SetBase(slide(40), "first.jpg")

	dst := slide(200)
	err := c.Transition(context.Background(), Request{
		Image:     dst,
		Name:      "second.jpg",
		Generator: effect.Wipe{Direction: effect.DirectionLeft},
	})
	require.NoError(t, err)

	// Priming frame + 5 transition frames + the final destination compose.
	assert.Equal(t, 7, cap.count())

	st := c.Status()
	assert.Equal(t, "idle", st.State)
	assert.Equal(t, "second.jpg", st.CurrentImage)

	r := overlay.New(testW, testH, overlay.Config{TimeSize: 10, DateSize: 8})
	want := r.Compose(imaging.Letterbox(dst, testW, testH), overlay.Data{Now: frozenTime})
	assert.True(t, bytes.Equal(want.Pix, cap.last().Pix), "final frame must be the composed destination")

	// One paced sleep per yielded frame, none negative.
	require.Len(t, clk.sleeps, 5)
	for _, d := range clk.sleeps {
		assert.Greater(t, d, time.Duration(0))
	}
}

func TestTransitionPacingUsesRunningDeadline(t *testing.T) {
	c, _, clk := testCompositor(t)
	c.SetBase(slide(40), "first.jpg")

	err := c.Transition(context.Background(), Request{
		Image:     slide(90),
		Name:      "second.jpg",
		Generator: effect.AlphaDissolve{},
		Duration:  time.Second, // 10 frames at 10 fps
	})
	require.NoError(t, err)

	var total time.Duration
	for _, d := range clk.sleeps {
		total += d
	}
	// Rendering is instantaneous under the fake clock, so the sleeps make up
	// the whole second.
	assert.Equal(t, time.Second, total)
}

func TestTransitionRejectsWhileBusy(t *testing.T) {
	c, _, _ := testCompositor(t)
	c.SetBase(slide(40), "first.jpg")

	c.mu.Lock()
	c.inTransition = true
	c.mu.Unlock()

	err := c.Transition(context.Background(), Request{
		Image:     slide(90),
		Generator: effect.AlphaDissolve{},
	})
	assert.ErrorIs(t, err, ErrBusy)
}

func TestTransitionSurfacesValidationErrors(t *testing.T) {
	c, cap, _ := testCompositor(t)
	c.SetBase(slide(40), "first.jpg")
	before := cap.count()

	err := c.Transition(context.Background(), Request{
		Image:     slide(90),
		Name:      "second.jpg",
		Generator: effect.PixelDissolve{BlockSize: 0},
	})
	require.Error(t, err)

	st := c.Status()
	assert.Equal(t, "idle", st.State)
	assert.Equal(t, "first.jpg", st.CurrentImage, "base must be retained")
	assert.Equal(t, before, cap.count(), "no frames published for a rejected request")
}

// failingEffect yields a couple of frames, then blows up.
type failingEffect struct {
	failAt int
}

func (failingEffect) Name() string { return "failing" }

func (e failingEffect) Sequence(src, dst *image.RGBA, opts effect.Options) (*effect.Sequence, error) {
	return effect.NewSequence(opts, func(i int, _ float64) (*image.RGBA, error) {
		if i >= e.failAt {
			return nil, errors.New("render exploded")
		}
		return imaging.Clone(src), nil
	})
}

func TestTransitionFailureKeepsPreviousImage(t *testing.T) {
	c, _, _ := testCompositor(t)
	c.SetBase(slide(40), "first.jpg")

	err := c.Transition(context.Background(), Request{
		Image:     slide(90),
		Name:      "second.jpg",
		Generator: failingEffect{failAt: 2},
	})
	require.Error(t, err)

	st := c.Status()
	assert.Equal(t, "idle", st.State, "must return to idle after a failure")
	assert.Equal(t, "first.jpg", st.CurrentImage, "previous image is kept")

	// The compositor is usable again afterwards.
	err = c.Transition(context.Background(), Request{
		Image:     slide(120),
		Name:      "third.jpg",
		Generator: effect.AlphaDissolve{},
	})
	require.NoError(t, err)
	assert.Equal(t, "third.jpg", c.Status().CurrentImage)
}

// panickyEffect panics mid-render instead of returning an error.
type panickyEffect struct{}

func (panickyEffect) Name() string { return "panicky" }

func (panickyEffect) Sequence(src, dst *image.RGBA, opts effect.Options) (*effect.Sequence, error) {
	return effect.NewSequence(opts, func(i int, _ float64) (*image.RGBA, error) {
		panic("render panicked")
	})
}

func TestTransitionRecoversFromPanickingEffect(t *testing.T) {
	c, _, _ := testCompositor(t)
	c.SetBase(slide(40), "first.jpg")

	var err error
	assert.NotPanics(t, func() {
		err = c.Transition(context.Background(), Request{
			Image:     slide(90),
			Name:      "second.jpg",
			Generator: panickyEffect{},
		})
	})
	require.Error(t, err)
	assert.Equal(t, "idle", c.Status().State)
	assert.Equal(t, "first.jpg", c.Status().CurrentImage)
}

func TestTransitionCancelledStillLandsDestination(t *testing.T) {
	c, cap, _ := testCompositor(t)
	c.SetBase(slide(40), "first.jpg")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Transition(ctx, Request{
		Image:     slide(200),
		Name:      "second.jpg",
		Generator: effect.AlphaDissolve{},
	})
	assert.ErrorIs(t, err, context.Canceled)

	st := c.Status()
	assert.Equal(t, "second.jpg", st.CurrentImage, "cancellation must not lose the new image")
	assert.Equal(t, "idle", st.State)
	assert.Equal(t, 2, cap.count(), "priming frame plus the final compose")
}

func TestTransitionWithoutImageRejected(t *testing.T) {
	c, _, _ := testCompositor(t)
	err := c.Transition(context.Background(), Request{Generator: effect.AlphaDissolve{}})
	assert.Error(t, err)
}
