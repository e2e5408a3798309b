package effect

import (
	"fmt"
	"image"
)

// Blinds reveals the destination through horizontal strips: even strips flip
// on the first frame, odd strips open top-down as progress grows.
type Blinds struct {
	Strips int
}

func (Blinds) Name() string { return "blinds" }

func (e Blinds) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if e.Strips <= 0 {
		return nil, fmt.Errorf("effect: blinds strip count must be positive, got %d", e.Strips)
	}

	h := src.Bounds().Dy()
	stripH := h / e.Strips
	if stripH < 1 {
		stripH = 1
	}

	rowOn := make([]bool, h)
	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		openH := round(t * float64(stripH))
		for y := 0; y < h; y++ {
			strip := y / stripH
			if strip > e.Strips-1 {
				strip = e.Strips - 1
			}
			if strip%2 == 0 {
				rowOn[y] = true
			} else {
				rowOn[y] = y%stripH < openH
			}
		}
		return composeRows(src, dst, rowOn), nil
	}), nil
}

// Checkerboard reveals the destination through a grid of cells: even cells
// flip on the first frame, odd cells open top-down within the cell.
type Checkerboard struct {
	GridSize int
}

func (Checkerboard) Name() string { return "checkerboard" }

func (e Checkerboard) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if e.GridSize <= 0 {
		return nil, fmt.Errorf("effect: checkerboard grid size must be positive, got %d", e.GridSize)
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	cellW := w / e.GridSize
	if cellW < 1 {
		cellW = 1
	}
	cellH := h / e.GridSize
	if cellH < 1 {
		cellH = 1
	}

	mask := make([]bool, w*h)
	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		openH := round(t * float64(cellH))
		for y := 0; y < h; y++ {
			ci := y / cellH
			if ci > e.GridSize-1 {
				ci = e.GridSize - 1
			}
			within := y%cellH < openH
			for x := 0; x < w; x++ {
				cj := x / cellW
				if cj > e.GridSize-1 {
					cj = e.GridSize - 1
				}
				if (ci+cj)%2 == 0 {
					mask[y*w+x] = true
				} else {
					mask[y*w+x] = within
				}
			}
		}
		return composeMask(src, dst, mask), nil
	}), nil
}
