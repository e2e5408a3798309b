package effect

import (
	"fmt"
	"image"
	"math"

	"github.com/quenby/photoframed/internal/imaging"
)

// accumulate adds img into acc (RGB only).
func accumulate(acc []float32, img *image.RGBA, w, h int) {
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			j := x * 4
			acc[i] += float32(row[j])
			acc[i+1] += float32(row[j+1])
			acc[i+2] += float32(row[j+2])
		}
	}
}

// flattenBlend converts the accumulated stack into a frame crossfaded with
// other: out = acc/n * accAlpha + other * (1-accAlpha).
func flattenBlend(acc []float32, n float64, other *image.RGBA, accAlpha float64, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	inv := 1 - accAlpha
	for y := 0; y < h; y++ {
		ro := out.Pix[y*out.Stride:]
		ot := other.Pix[y*other.Stride:]
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			j := x * 4
			ro[j] = clampByte(float64(acc[i])/n*accAlpha + float64(ot[j])*inv)
			ro[j+1] = clampByte(float64(acc[i+1])/n*accAlpha + float64(ot[j+1])*inv)
			ro[j+2] = clampByte(float64(acc[i+2])/n*accAlpha + float64(ot[j+2])*inv)
			ro[j+3] = 0xff
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// ZoomBlur crossfades to the destination while the source picks up a subtle
// outward motion blur built from a handful of progressively scaled copies.
type ZoomBlur struct {
	MaxScale float64 // peak zoom applied to the source
	Samples  int     // zoom samples averaged per frame
}

func (ZoomBlur) Name() string { return "zoom_blur" }

func (e ZoomBlur) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	maxScale := e.MaxScale
	if maxScale <= 0 {
		maxScale = 1.08
	}
	if maxScale < 1 {
		return nil, fmt.Errorf("effect: zoom blur max scale must be >= 1, got %v", maxScale)
	}
	samples := e.Samples
	if samples <= 0 {
		samples = 6
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	acc := make([]float32, w*h*3)

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		sMax := 1 + (maxScale-1)*t
		for i := range acc {
			acc[i] = 0
		}
		for j := 0; j < samples; j++ {
			frac := 0.0
			if samples > 1 {
				frac = float64(j) / float64(samples-1)
			}
			s := 1 + (sMax-1)*frac
			zw := clampInt(round(float64(w)*s), 1, 1<<20)
			zh := clampInt(round(float64(h)*s), 1, 1<<20)
			z := imaging.Resize(src, zw, zh)
			accumulate(acc, imaging.CenterCrop(z, w, h), w, h)
		}
		return flattenBlend(acc, float64(samples), dst, 1-t, w, h), nil
	}), nil
}

// CrossZoom zoom-blurs the destination toward the viewer while crossfading it
// over the source.
type CrossZoom struct {
	MaxZoom float64
	Samples int
}

func (CrossZoom) Name() string { return "cross_zoom" }

func (e CrossZoom) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	maxZoom := e.MaxZoom
	if maxZoom <= 0 {
		maxZoom = 1.20
	}
	if maxZoom < 1 {
		return nil, fmt.Errorf("effect: cross zoom max zoom must be >= 1, got %v", maxZoom)
	}
	samples := e.Samples
	if samples <= 0 {
		samples = 3
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	acc := make([]float32, w*h*3)

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		for i := range acc {
			acc[i] = 0
		}
		// The zoom envelope peaks mid-transition and returns to 1 at the end,
		// leaving the final frame on the destination exactly.
		env := math.Sin(math.Pi * t)
		for s := 0; s < samples; s++ {
			k := float64(s+1) / float64(samples)
			z := 1 + (maxZoom-1)*env*k
			if z < 1 {
				z = 1
			}
			zw := clampInt(round(float64(w)*z), 1, 1<<20)
			zh := clampInt(round(float64(h)*z), 1, 1<<20)
			zoomed := imaging.Resize(dst, zw, zh)
			accumulate(acc, imaging.ResizeCover(zoomed, w, h), w, h)
		}
		return flattenBlend(acc, float64(samples), src, t, w, h), nil
	}), nil
}

// SpinZoomFade rotates and zooms the destination slightly while crossfading
// it over the source; the rotation unwinds to zero as the transition ends.
type SpinZoomFade struct {
	MaxDegrees float64
	MaxScale   float64
}

func (SpinZoomFade) Name() string { return "spin_zoom_fade" }

func (e SpinZoomFade) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	maxDeg := e.MaxDegrees
	if maxDeg == 0 {
		maxDeg = 12
	}
	maxScale := e.MaxScale
	if maxScale <= 0 {
		maxScale = 1.15
	}

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		// Both spin and zoom unwind to identity at the ends.
		env := math.Sin(math.Pi * t)
		angle := env * maxDeg
		scale := 1 + (maxScale-1)*env
		if scale < 1 {
			scale = 1
		}
		warped := imaging.RotateScale(dst, angle, scale)
		return imaging.Blend(src, warped, t), nil
	}), nil
}
