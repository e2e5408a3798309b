package effect

import (
	"fmt"
	"image"

	"github.com/quenby/photoframed/internal/imaging"
)

// Wipe is a hard-edged reveal sweeping from one edge of the canvas.
type Wipe struct {
	Direction Direction
}

func (Wipe) Name() string { return "wipe" }

func (e Wipe) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	dir, err := e.Direction.resolve(opts.rand(), slideDirections)
	if err != nil {
		return nil, err
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	mask := make([]bool, w*h)
	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		for i := range mask {
			mask[i] = false
		}
		switch dir {
		case DirectionLeft:
			edge := clampInt(round(t*float64(w)), 0, w)
			for y := 0; y < h; y++ {
				for x := 0; x < edge; x++ {
					mask[y*w+x] = true
				}
			}
		case DirectionRight:
			edge := clampInt(round(t*float64(w)), 0, w)
			for y := 0; y < h; y++ {
				for x := w - edge; x < w; x++ {
					mask[y*w+x] = true
				}
			}
		case DirectionUp:
			edge := clampInt(round(t*float64(h)), 0, h)
			for y := 0; y < edge; y++ {
				for x := 0; x < w; x++ {
					mask[y*w+x] = true
				}
			}
		default: // down
			edge := clampInt(round(t*float64(h)), 0, h)
			for y := h - edge; y < h; y++ {
				for x := 0; x < w; x++ {
					mask[y*w+x] = true
				}
			}
		}
		return composeMask(src, dst, mask), nil
	}), nil
}

// SoftWipe is a wipe whose edge is a feathered alpha ramp instead of a hard
// boundary.
type SoftWipe struct {
	Direction Direction
	// Softness is the feather width as a fraction of min(H, W).
	Softness float64
}

func (SoftWipe) Name() string { return "soft_wipe" }

func (e SoftWipe) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if e.Softness < 0 || e.Softness > 1 {
		return nil, fmt.Errorf("effect: soft wipe softness must be in [0,1], got %v", e.Softness)
	}
	softness := e.Softness
	if softness == 0 {
		softness = 0.08
	}
	dir, err := e.Direction.resolve(opts.rand(), slideDirections)
	if err != nil {
		return nil, err
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	minDim := w
	if h < minDim {
		minDim = h
	}
	feather := float64(round(float64(minDim) * softness))
	if feather < 1 {
		feather = 1
	}

	ramp := func(d float64) float64 {
		a := d / feather
		if a < 0 {
			return 0
		}
		if a > 1 {
			return 1
		}
		return a
	}

	horizontal := dir == DirectionLeft || dir == DirectionRight
	n := w
	if !horizontal {
		n = h
	}
	reversed := dir == DirectionRight || dir == DirectionDown
	alpha := make([]float64, n)

	// The edge travels n+feather so the trailing ramp fully clears the canvas
	// by the final frame.
	travel := float64(n) + feather

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		edge := t * travel
		for i := 0; i < n; i++ {
			pos := float64(i)
			if reversed {
				pos = float64(n - 1 - i)
			}
			alpha[i] = ramp(edge - pos)
		}

		out := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			rs := src.Pix[y*src.Stride:]
			rd := dst.Pix[y*dst.Stride:]
			ro := out.Pix[y*out.Stride:]
			for x := 0; x < w; x++ {
				a := alpha[x]
				if !horizontal {
					a = alpha[y]
				}
				i := x * 4
				ro[i] = uint8(float64(rs[i])*(1-a) + float64(rd[i])*a + 0.5)
				ro[i+1] = uint8(float64(rs[i+1])*(1-a) + float64(rd[i+1])*a + 0.5)
				ro[i+2] = uint8(float64(rs[i+2])*(1-a) + float64(rd[i+2])*a + 0.5)
				ro[i+3] = 0xff
			}
		}
		return out, nil
	}), nil
}

// Linear is the plainest wipe: the destination grows from the top (vertical)
// or from the left (horizontal) with no randomness.
type Linear struct {
	Horizontal bool
}

func (Linear) Name() string { return "linear" }

func (e Linear) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	if e.Horizontal {
		mask := make([]bool, w*h)
		return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
			edge := clampInt(round(t*float64(w)), 0, w)
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					mask[y*w+x] = x < edge
				}
			}
			return composeMask(src, dst, mask), nil
		}), nil
	}

	rowOn := make([]bool, h)
	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		edge := clampInt(round(t*float64(h)), 0, h)
		for y := 0; y < h; y++ {
			rowOn[y] = y < edge
		}
		return composeRows(src, dst, rowOn), nil
	}), nil
}

// LumaWipe reveals the destination wherever its luminance crosses a threshold
// that sweeps with progress.
type LumaWipe struct {
	// BrightToDark reverses the sweep so bright regions reveal first.
	BrightToDark bool
}

func (LumaWipe) Name() string { return "luma_wipe" }

func (e LumaWipe) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	luma := imaging.Luma(dst)
	mask := make([]bool, w*h)
	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		if t >= 1 {
			// Luminance can round a hair above 1.0 for pure white; do not let
			// those pixels survive the sweep.
			for i := range mask {
				mask[i] = true
			}
			return composeMask(src, dst, mask), nil
		}
		thr := float32(t)
		if e.BrightToDark {
			for i, l := range luma {
				mask[i] = l >= 1-thr
			}
		} else {
			for i, l := range luma {
				mask[i] = l <= thr
			}
		}
		return composeMask(src, dst, mask), nil
	}), nil
}
