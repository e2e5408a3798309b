package fanout

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenby/photoframed/internal/imaging"
)

func testFrame(shade uint8) *image.RGBA {
	img := imaging.New(16, 16)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = shade
	}
	return img
}

func TestCellLatestWins(t *testing.T) {
	c := NewCell[int]()

	_, ok := c.Get()
	assert.False(t, ok, "empty cell")

	for i := 1; i <= 100; i++ {
		c.Set(i)
	}
	v, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, 100, v, "only the most recent value is retained")
}

func TestCellNextConsumesNotification(t *testing.T) {
	c := NewCell[string]()
	c.Set("a")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, err := c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	// No new Set since; Next must block until the context gives up.
	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	_, err = c.Next(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCellLatestReturnsImmediatelyWhenFilled(t *testing.T) {
	c := NewCell[int]()
	c.Set(7)
	if _, err := c.Next(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Notification already consumed, but Latest must not block.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := c.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestPublishReachesAllSinks(t *testing.T) {
	f := New()
	var a, b int
	f.Attach(NewCallbackSink("a", func(*image.RGBA) { a++ }))
	f.Attach(NewCallbackSink("b", func(*image.RGBA) { b++ }))

	f.Publish(testFrame(1))
	f.Publish(testFrame(2))

	assert.Equal(t, 2, a)
	assert.Equal(t, 2, b)
	assert.EqualValues(t, 2, f.Published())
}

func TestPanickingSinkIsIsolated(t *testing.T) {
	f := New()
	delivered := 0
	f.Attach(NewCallbackSink("bad", func(*image.RGBA) { panic("boom") }))
	f.Attach(NewCallbackSink("good", func(*image.RGBA) { delivered++ }))

	assert.NotPanics(t, func() { f.Publish(testFrame(3)) })
	assert.Equal(t, 1, delivered, "healthy sink still receives the frame")
}

func TestDetach(t *testing.T) {
	f := New()
	count := 0
	f.Attach(NewCallbackSink("x", func(*image.RGBA) { count++ }))

	f.Publish(testFrame(1))
	f.Detach("x")
	f.Publish(testFrame(2))

	assert.Equal(t, 1, count)
}

func TestPublishedFrameIsACopy(t *testing.T) {
	f := New()
	var seen *image.RGBA
	f.Attach(NewCallbackSink("grab", func(fr *image.RGBA) { seen = fr }))

	frame := testFrame(50)
	f.Publish(frame)
	frame.Pix[0] = 99

	require.NotNil(t, seen)
	assert.EqualValues(t, 50, seen.Pix[0], "sink frame must not alias the producer's")
}

func TestJPEGSinkNeverBlocks(t *testing.T) {
	s := NewJPEGSink(80)
	f := New()
	f.Attach(s)

	done := make(chan struct{})
	go func() {
		// Nobody drains the cell; publishing must still complete.
		for i := 0; i < 50; i++ {
			f.Publish(testFrame(uint8(i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on an undrained sink")
	}

	data, ok := s.Latest()
	require.True(t, ok)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
}

func TestJPEGSinkLatestOrWait(t *testing.T) {
	s := NewJPEGSink(0) // default quality

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.LatestOrWait(ctx)
	assert.Error(t, err, "no frame yet")

	s.Publish(testFrame(10))
	data, err := s.LatestOrWait(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
