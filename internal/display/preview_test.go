package display

import (
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenby/photoframed/internal/imaging"
)

func TestPreviewDrawsPublishedFrames(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	p, err := newPreview(screen, nil)
	require.NoError(t, err)
	defer p.Close()

	frame := imaging.New(64, 48)
	imaging.Fill(frame, color.RGBA{255, 0, 0, 255})
	p.Publish(frame)

	// The draw goroutine is asynchronous; poll for the painted cell.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mainc, _, style, _ := screen.GetContent(0, 0)
		fg, _, _ := style.Decompose()
		if mainc == '▀' && fg != tcell.ColorDefault {
			r, _, _ := fg.RGB()
			assert.EqualValues(t, 255, r)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("preview never painted the frame")
}

func TestPreviewQuitKey(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	quit := make(chan struct{}, 1)
	p, err := newPreview(screen, func() { quit <- struct{}{} })
	require.NoError(t, err)
	defer p.Close()

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	select {
	case <-quit:
	case <-time.After(2 * time.Second):
		t.Fatal("escape key did not trigger quit")
	}
}

func TestPreviewPublishNeverBlocks(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	p, err := newPreview(screen, nil)
	require.NoError(t, err)
	defer p.Close()

	frame := imaging.New(16, 16)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			p.Publish(frame)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked")
	}
}
