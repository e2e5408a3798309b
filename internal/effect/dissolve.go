package effect

import (
	"fmt"
	"image"

	"github.com/quenby/photoframed/internal/imaging"
)

// AlphaDissolve is a global crossfade: src*(1-t) + dst*t.
type AlphaDissolve struct{}

func (AlphaDissolve) Name() string { return "alpha_dissolve" }

func (AlphaDissolve) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		return imaging.Blend(src, dst, t), nil
	}), nil
}

// PixelDissolve reveals the destination block by block in a random order
// drawn once at sequence construction.
type PixelDissolve struct {
	// BlockSize is the square block edge in pixels.
	BlockSize int
}

func (PixelDissolve) Name() string { return "pixel_dissolve" }

func (e PixelDissolve) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if e.BlockSize <= 0 {
		return nil, fmt.Errorf("effect: pixel dissolve block size must be positive, got %d", e.BlockSize)
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	hb := h / e.BlockSize
	if hb < 1 {
		hb = 1
	}
	wb := w / e.BlockSize
	if wb < 1 {
		wb = 1
	}
	nblocks := hb * wb

	// One permutation per transition; block b is "on" once rank[b] < t*nblocks.
	rank := opts.rand().Perm(nblocks)

	mask := make([]bool, w*h)
	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		k := round(t * float64(nblocks))
		for y := 0; y < h; y++ {
			by := y * hb / h
			if by > hb-1 {
				by = hb - 1
			}
			for x := 0; x < w; x++ {
				bx := x * wb / w
				if bx > wb-1 {
					bx = wb - 1
				}
				mask[y*w+x] = rank[by*wb+bx] < k
			}
		}
		return composeMask(src, dst, mask), nil
	}), nil
}
