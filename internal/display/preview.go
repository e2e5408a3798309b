// Package display renders composed frames into a terminal as a development
// preview, using half-block characters so every cell carries two pixels.
package display

import (
	"context"
	"image"

	"github.com/gdamore/tcell/v2"

	"github.com/quenby/photoframed/internal/fanout"
	"github.com/quenby/photoframed/internal/imaging"
)

// Preview is a fanout sink that draws frames onto a tcell screen. Publishing
// never blocks: frames land in a single-slot cell and the draw goroutine
// keeps up as well as the terminal allows, dropping stale frames.
type Preview struct {
	screen tcell.Screen
	frames *fanout.Cell[*image.RGBA]
	cancel context.CancelFunc
	done   chan struct{}
	onQuit func()
}

// NewPreview opens the terminal screen. onQuit is called once when the user
// presses Escape, q or Ctrl-C.
func NewPreview(onQuit func()) (*Preview, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return newPreview(screen, onQuit)
}

func newPreview(screen tcell.Screen, onQuit func()) (*Preview, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Preview{
		screen: screen,
		frames: fanout.NewCell[*image.RGBA](),
		cancel: cancel,
		done:   make(chan struct{}),
		onQuit: onQuit,
	}
	go p.drawLoop(ctx)
	go p.eventLoop()
	return p, nil
}

func (p *Preview) Name() string { return "terminal-preview" }

// Publish hands a frame to the draw goroutine.
func (p *Preview) Publish(frame *image.RGBA) {
	p.frames.Set(frame)
}

// Close tears the screen down. Safe to call once.
func (p *Preview) Close() {
	p.cancel()
	<-p.done
	p.screen.Fini()
}

func (p *Preview) drawLoop(ctx context.Context) {
	defer close(p.done)
	for {
		frame, err := p.frames.Next(ctx)
		if err != nil {
			return
		}
		p.draw(frame)
	}
}

// draw scales the frame to the terminal grid and paints it with upper
// half-blocks: the foreground colors the top pixel, the background the
// bottom one.
func (p *Preview) draw(frame *image.RGBA) {
	w, h := p.screen.Size()
	if w < 1 || h < 1 {
		return
	}
	scaled := imaging.Resize(frame, w, h*2)

	for y := 0; y < h; y++ {
		top := scaled.Pix[(2*y)*scaled.Stride:]
		bot := scaled.Pix[(2*y+1)*scaled.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top[i]), int32(top[i+1]), int32(top[i+2]))).
				Background(tcell.NewRGBColor(int32(bot[i]), int32(bot[i+1]), int32(bot[i+2])))
			p.screen.SetContent(x, y, '▀', nil, style)
		}
	}
	p.screen.Show()
}

func (p *Preview) eventLoop() {
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return // screen finalized
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
				p.quit()
			case ev.Rune() == 'q':
				p.quit()
			}
		case *tcell.EventResize:
			p.screen.Sync()
		}
	}
}

func (p *Preview) quit() {
	if p.onQuit != nil {
		p.onQuit()
	}
}
