package effect

import (
	"image"
	"math"

	"github.com/quenby/photoframed/internal/imaging"
)

// polarGrid carries the per-pixel polar decomposition precomputed once per
// transition for the warp effects.
type polarGrid struct {
	w, h   int
	cx, cy float64
	r      []float32 // distance from center
	ux, uy []float32 // unit radial direction
	rmax   float64
}

func newPolarGrid(w, h int) *polarGrid {
	g := &polarGrid{
		w: w, h: h,
		cx: float64(w-1) * 0.5,
		cy: float64(h-1) * 0.5,
		r:  make([]float32, w*h),
		ux: make([]float32, w*h),
		uy: make([]float32, w*h),
	}
	for y := 0; y < h; y++ {
		dy := float64(y) - g.cy
		for x := 0; x < w; x++ {
			dx := float64(x) - g.cx
			r := math.Sqrt(dx*dx + dy*dy)
			i := y*w + x
			g.r[i] = float32(r)
			if r > 1e-6 {
				g.ux[i] = float32(dx / r)
				g.uy[i] = float32(dy / r)
			}
		}
	}
	g.rmax = math.Sqrt(g.cx*g.cx + g.cy*g.cy)
	return g
}

// Ripple sends concentric waves out from the center, displacing the
// destination radially before crossfading it over the source. Amplitude is
// damped over time; once negligible the frame degrades to a plain crossfade.
type Ripple struct {
	Rings        int     // trailing ripples behind the front
	Wavelength   float64 // pixels between rings
	RingWidth    float64 // Gaussian width of each ring, pixels
	MaxAmplitude float64 // peak radial displacement, pixels
	Damping      float64 // temporal decay; higher dies out faster
}

func (Ripple) Name() string { return "ripple" }

func (e Ripple) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	rings := e.Rings
	if rings <= 0 {
		rings = 5
	}
	wavelength := e.Wavelength
	if wavelength <= 0 {
		wavelength = 120
	}
	ringWidth := e.RingWidth
	if ringWidth <= 0 {
		ringWidth = 22
	}
	maxAmp := e.MaxAmplitude
	if maxAmp <= 0 {
		maxAmp = 10
	}
	damping := e.Damping
	if damping <= 0 {
		damping = 1.2
	}
	const minEffectPx = 0.35

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	grid := newPolarGrid(w, h)
	invWL := 2 * math.Pi / math.Max(1, wavelength)
	sig2 := 2 * ringWidth * ringWidth

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		// The extra (1-t) factor lands the wave at zero displacement on the
		// final frame, so the sequence ends on the destination exactly.
		amp := maxAmp * math.Exp(-damping*t) * (1 - t)
		r0 := t * grid.rmax
		if amp < minEffectPx || !isFinite(amp) || !isFinite(r0) {
			return imaging.Blend(src, dst, t), nil
		}

		out := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			ro := out.Pix[y*out.Stride:]
			rs := src.Pix[y*src.Stride:]
			for x := 0; x < w; x++ {
				i := y*w + x
				r := float64(grid.r[i])

				g := 0.0
				for k := 0; k < rings; k++ {
					d := r - (r0 - float64(k)*wavelength)
					g += math.Exp(-(d * d) / sig2)
				}
				disp := amp * g * math.Sin((r-r0)*invWL)

				sx := float64(x) + float64(grid.ux[i])*disp
				sy := float64(y) + float64(grid.uy[i])*disp
				wr, wg, wb := imaging.SampleBilinear(dst, sx, sy)

				j := x * 4
				ro[j] = uint8(float64(wr)*t + float64(rs[j])*(1-t) + 0.5)
				ro[j+1] = uint8(float64(wg)*t + float64(rs[j+1])*(1-t) + 0.5)
				ro[j+2] = uint8(float64(wb)*t + float64(rs[j+2])*(1-t) + 0.5)
				ro[j+3] = 0xff
			}
		}
		return out, nil
	}), nil
}

// Swirl twists the destination around the center, strongest in the middle and
// decaying with radius, unwinding as it crossfades in.
type Swirl struct {
	MaxAngle float64 // radians of twist at the center
	Falloff  float64 // higher decays the twist faster with radius
}

func (Swirl) Name() string { return "swirl" }

func (e Swirl) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	maxAngle := e.MaxAngle
	if maxAngle == 0 {
		maxAngle = math.Pi * 0.65
	}
	falloff := e.Falloff
	if falloff <= 0 {
		falloff = 2.2
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	grid := newPolarGrid(w, h)

	theta := make([]float32, w*h)
	for y := 0; y < h; y++ {
		dy := float64(y) - grid.cy
		for x := 0; x < w; x++ {
			dx := float64(x) - grid.cx
			theta[y*w+x] = float32(math.Atan2(dy, dx))
		}
	}

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		// Twist peaks mid-transition and unwinds to zero at both ends.
		k := maxAngle * math.Sin(math.Pi*t)
		if !isFinite(k) {
			return imaging.Blend(src, dst, t), nil
		}

		out := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			ro := out.Pix[y*out.Stride:]
			rs := src.Pix[y*src.Stride:]
			for x := 0; x < w; x++ {
				i := y*w + x
				r := float64(grid.r[i])

				decay := 1 - r/(grid.rmax+1e-6)
				if decay < 0 {
					decay = 0
				}
				th := float64(theta[i]) + k*math.Pow(decay, falloff)

				sx := grid.cx + r*math.Cos(th)
				sy := grid.cy + r*math.Sin(th)
				wr, wg, wb := imaging.SampleBilinear(dst, sx, sy)

				j := x * 4
				ro[j] = uint8(float64(wr)*t + float64(rs[j])*(1-t) + 0.5)
				ro[j+1] = uint8(float64(wg)*t + float64(rs[j+1])*(1-t) + 0.5)
				ro[j+2] = uint8(float64(wb)*t + float64(rs[j+2])*(1-t) + 0.5)
				ro[j+3] = 0xff
			}
		}
		return out, nil
	}), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
