package imaging

import (
	"image"
	"math"
)

// reflect101 mirrors an out-of-range coordinate back into [0, n-1] without
// repeating the edge sample (gfedcb|abcdefgh|gfedcba).
func reflect101(x float64, n int) float64 {
	if n == 1 {
		return 0
	}
	period := float64(2 * (n - 1))
	x = math.Mod(x, period)
	if x < 0 {
		x += period
	}
	if x > float64(n-1) {
		x = period - x
	}
	return x
}

// SampleBilinear samples img at the fractional coordinate (x, y) with
// reflect-at-border handling. Non-finite coordinates resolve to the origin.
func SampleBilinear(img *image.RGBA, x, y float64) (r, g, b uint8) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = 0
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		y = 0
	}
	x = reflect101(x, w)
	y = reflect101(y, h)

	x0 := int(x)
	y0 := int(y)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > w-1 {
		x1 = w - 1
	}
	if y1 > h-1 {
		y1 = h - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	p00 := img.Pix[y0*img.Stride+x0*4:]
	p10 := img.Pix[y0*img.Stride+x1*4:]
	p01 := img.Pix[y1*img.Stride+x0*4:]
	p11 := img.Pix[y1*img.Stride+x1*4:]

	lerp := func(i int) uint8 {
		top := float64(p00[i])*(1-fx) + float64(p10[i])*fx
		bot := float64(p01[i])*(1-fx) + float64(p11[i])*fx
		return uint8(top*(1-fy) + bot*fy + 0.5)
	}
	return lerp(0), lerp(1), lerp(2)
}

// RotateScale rotates img by angle degrees around its center while scaling it
// by scale, resampling with bilinear interpolation and reflected borders. The
// output has the same dimensions as the input.
func RotateScale(img *image.RGBA, angleDeg, scale float64) *image.RGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	out := New(w, h)
	if scale <= 0 {
		scale = 1e-6
	}

	cx := float64(w-1) * 0.5
	cy := float64(h-1) * 0.5
	rad := angleDeg * math.Pi / 180
	// Inverse mapping: rotate by -angle, scale by 1/scale.
	cos := math.Cos(-rad) / scale
	sin := math.Sin(-rad) / scale

	for y := 0; y < h; y++ {
		dy := float64(y) - cy
		row := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			sx := cx + dx*cos - dy*sin
			sy := cy + dx*sin + dy*cos
			r, g, b := SampleBilinear(img, sx, sy)
			i := x * 4
			row[i] = r
			row[i+1] = g
			row[i+2] = b
			row[i+3] = 0xff
		}
	}
	return out
}
