package effect

import (
	"image"

	"github.com/quenby/photoframed/internal/imaging"
)

// composeRows builds a frame taking each row from dst where rowOn[y] is true
// and from src otherwise.
func composeRows(src, dst *image.RGBA, rowOn []bool) *image.RGBA {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		from := src
		if rowOn[y] {
			from = dst
		}
		copy(out.Pix[y*out.Stride:y*out.Stride+w*4], from.Pix[y*from.Stride:y*from.Stride+w*4])
	}
	return out
}

// composeMask builds a frame taking pixels from dst where mask (row-major,
// w*h) is true and from src otherwise.
func composeMask(src, dst *image.RGBA, mask []bool) *image.RGBA {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		rs := src.Pix[y*src.Stride:]
		rd := dst.Pix[y*dst.Stride:]
		ro := out.Pix[y*out.Stride:]
		mrow := mask[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			i := x * 4
			if mrow[x] {
				ro[i] = rd[i]
				ro[i+1] = rd[i+1]
				ro[i+2] = rd[i+2]
			} else {
				ro[i] = rs[i]
				ro[i+1] = rs[i+1]
				ro[i+2] = rs[i+2]
			}
			ro[i+3] = 0xff
		}
	}
	return out
}

// copyRect copies the given zero-origin rectangle of pixels from src into dst
// at (dx, dy). Rectangles are clipped to both images.
func copyRect(dst *image.RGBA, dx, dy int, src *image.RGBA, r image.Rectangle) {
	r = r.Intersect(src.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		oy := dy + y - r.Min.Y
		if oy < 0 || oy >= dst.Bounds().Dy() {
			continue
		}
		w := r.Dx()
		if dx+w > dst.Bounds().Dx() {
			w = dst.Bounds().Dx() - dx
		}
		if w <= 0 {
			continue
		}
		copy(dst.Pix[oy*dst.Stride+dx*4:oy*dst.Stride+(dx+w)*4],
			src.Pix[y*src.Stride+r.Min.X*4:y*src.Stride+(r.Min.X+w)*4])
	}
}

func cloneFrame(img *image.RGBA) *image.RGBA { return imaging.Clone(img) }
