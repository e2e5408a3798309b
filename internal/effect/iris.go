package effect

import "image"

func radialDistances(w, h int) (dist2 []int64, max2 int64) {
	dist2 = make([]int64, w*h)
	cx := w / 2
	cy := h / 2
	for y := 0; y < h; y++ {
		dy := int64(y - cy)
		for x := 0; x < w; x++ {
			dx := int64(x - cx)
			d := dx*dx + dy*dy
			dist2[y*w+x] = d
			if d > max2 {
				max2 = d
			}
		}
	}
	return dist2, max2
}

// IrisOpen reveals the destination through a circle growing from the center.
type IrisOpen struct{}

func (IrisOpen) Name() string { return "iris_open" }

func (IrisOpen) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	dist2, max2 := radialDistances(w, h)

	mask := make([]bool, w*h)
	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		// Quadratic radius growth reads better than linear.
		r2 := int64(t*t*float64(max2) + 0.5)
		for i, d := range dist2 {
			mask[i] = d <= r2
		}
		return composeMask(src, dst, mask), nil
	}), nil
}

// IrisClose shrinks a circle of the source toward the center, with the
// destination filling in from the edges.
type IrisClose struct{}

func (IrisClose) Name() string { return "iris_close" }

func (IrisClose) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	dist2, max2 := radialDistances(w, h)

	mask := make([]bool, w*h)
	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		u := 1 - t
		r2 := int64(u*u*float64(max2) + 0.5)
		if t >= 1 {
			// The center pixel has distance zero; make sure it flips too.
			r2 = -1
		}
		for i, d := range dist2 {
			mask[i] = d > r2
		}
		return composeMask(src, dst, mask), nil
	}), nil
}
