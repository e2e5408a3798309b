// Package imaging holds the pixel-level plumbing shared by the transition
// effects and the overlay renderer. All functions treat their inputs as
// immutable and return freshly allocated images normalized to a zero origin.
package imaging

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// New returns a zeroed (opaque black) canvas of the given size.
func New(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// Clone copies src into a new RGBA image anchored at (0,0).
func Clone(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// FromImage converts any image.Image to a zero-origin RGBA.
func FromImage(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == image.Pt(0, 0) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// SameSize reports whether two images share identical dimensions.
func SameSize(a, b *image.RGBA) bool {
	return a.Bounds().Dx() == b.Bounds().Dx() && a.Bounds().Dy() == b.Bounds().Dy()
}

// Resize scales img to exactly w x h with bilinear filtering. Used by the
// effects, which favor speed over resampling quality.
func Resize(img *image.RGBA, w, h int) *image.RGBA {
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		return Clone(img)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// Letterbox fits img inside a w x h canvas preserving aspect ratio, centered
// on a black field. Catmull-Rom is used here because the result is the long
// lived base image, not a per-frame intermediate.
func Letterbox(img image.Image, w, h int) *image.RGBA {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()

	dst := New(w, h)
	if srcW == 0 || srcH == 0 {
		return dst
	}

	scale := float64(w) / float64(srcW)
	if s := float64(h) / float64(srcH); s < scale {
		scale = s
	}
	fitW := int(float64(srcW) * scale)
	fitH := int(float64(srcH) * scale)
	if fitW < 1 {
		fitW = 1
	}
	if fitH < 1 {
		fitH = 1
	}
	x := (w - fitW) / 2
	y := (h - fitH) / 2
	rect := image.Rect(x, y, x+fitW, y+fitH)

	xdraw.CatmullRom.Scale(dst, rect, img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// CenterCrop returns the central w x h region of img. If img is smaller in a
// dimension the crop is clamped to the available pixels.
func CenterCrop(img *image.RGBA, w, h int) *image.RGBA {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if w > srcW {
		w = srcW
	}
	if h > srcH {
		h = srcH
	}
	x0 := (srcW - w) / 2
	y0 := (srcH - h) / 2

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, image.Pt(img.Bounds().Min.X+x0, img.Bounds().Min.Y+y0), draw.Src)
	return dst
}

// ResizeCover scales img to fill exactly w x h, center-cropping whichever
// dimension overflows.
func ResizeCover(img *image.RGBA, w, h int) *image.RGBA {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if srcW == 0 || srcH == 0 {
		return New(w, h)
	}

	aspectSrc := float64(srcW) / float64(srcH)
	aspectDst := float64(w) / float64(h)

	var cropped *image.RGBA
	if aspectSrc > aspectDst {
		newW := int(float64(srcH)*aspectDst + 0.5)
		if newW < 1 {
			newW = 1
		}
		cropped = CenterCrop(img, newW, srcH)
	} else {
		newH := int(float64(srcW)/aspectDst + 0.5)
		if newH < 1 {
			newH = 1
		}
		cropped = CenterCrop(img, srcW, newH)
	}
	return Resize(cropped, w, h)
}

// Fill paints img with a solid color.
func Fill(img *image.RGBA, c color.RGBA) {
	for y := 0; y < img.Bounds().Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+img.Bounds().Dx()*4]
		for x := 0; x < len(row); x += 4 {
			row[x] = c.R
			row[x+1] = c.G
			row[x+2] = c.B
			row[x+3] = c.A
		}
	}
}

// Luma returns per-pixel BT.601 luminance in [0,1], row-major.
func Luma(img *image.RGBA) []float32 {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	out := make([]float32, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			r := float32(row[i])
			g := float32(row[i+1])
			b := float32(row[i+2])
			out[y*w+x] = (0.299*r + 0.587*g + 0.114*b) / 255.0
		}
	}
	return out
}

// Blend returns a*(1-alpha) + b*alpha. Both images must share dimensions.
func Blend(a, b *image.RGBA, alpha float64) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, a.Bounds().Dx(), a.Bounds().Dy()))
	BlendInto(out, a, b, alpha)
	return out
}

// BlendInto writes a*(1-alpha) + b*alpha into out.
func BlendInto(out, a, b *image.RGBA, alpha float64) {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	w := out.Bounds().Dx()
	h := out.Bounds().Dy()
	ai := uint32(alpha*65536 + 0.5)
	inv := 65536 - ai
	for y := 0; y < h; y++ {
		ra := a.Pix[y*a.Stride:]
		rb := b.Pix[y*b.Stride:]
		ro := out.Pix[y*out.Stride:]
		for x := 0; x < w*4; x += 4 {
			ro[x] = uint8((uint32(ra[x])*inv + uint32(rb[x])*ai) >> 16)
			ro[x+1] = uint8((uint32(ra[x+1])*inv + uint32(rb[x+1])*ai) >> 16)
			ro[x+2] = uint8((uint32(ra[x+2])*inv + uint32(rb[x+2])*ai) >> 16)
			ro[x+3] = 0xff
		}
	}
}
