package effect

import (
	"image"

	"github.com/quenby/photoframed/internal/imaging"
)

// Scroll pushes the source off one edge while the destination slides in
// behind it, like a film strip advancing.
type Scroll struct {
	Direction Direction
}

func (Scroll) Name() string { return "scroll" }

func (e Scroll) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
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

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		frame := image.NewRGBA(image.Rect(0, 0, w, h))
		switch dir {
		case DirectionLeft:
			off := clampInt(round(t*float64(w)), 0, w)
			copyRect(frame, 0, 0, src, image.Rect(off, 0, w, h))
			copyRect(frame, w-off, 0, dst, image.Rect(0, 0, off, h))
		case DirectionRight:
			off := clampInt(round(t*float64(w)), 0, w)
			copyRect(frame, 0, 0, dst, image.Rect(w-off, 0, w, h))
			copyRect(frame, off, 0, src, image.Rect(0, 0, w-off, h))
		case DirectionUp:
			off := clampInt(round(t*float64(h)), 0, h)
			copyRect(frame, 0, 0, src, image.Rect(0, off, w, h))
			copyRect(frame, 0, h-off, dst, image.Rect(0, 0, w, off))
		default: // down
			off := clampInt(round(t*float64(h)), 0, h)
			copyRect(frame, 0, 0, dst, image.Rect(0, h-off, w, h))
			copyRect(frame, 0, off, src, image.Rect(0, 0, w, h-off))
		}
		return frame, nil
	}), nil
}

// Stretch grows the destination from one edge, squashing it until it covers
// the canvas.
type Stretch struct {
	Direction Direction
}

func (Stretch) Name() string { return "stretch" }

func (e Stretch) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
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

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		frame := cloneFrame(src)
		if dir == DirectionLeft || dir == DirectionRight {
			cur := clampInt(round(float64(w)*t), 1, w)
			scaled := imaging.Resize(dst, cur, h)
			x := 0
			if dir == DirectionRight {
				x = w - cur
			}
			copyRect(frame, x, 0, scaled, scaled.Bounds())
		} else {
			cur := clampInt(round(float64(h)*t), 1, h)
			scaled := imaging.Resize(dst, w, cur)
			y := 0
			if dir == DirectionDown {
				y = h - cur
			}
			copyRect(frame, 0, y, scaled, scaled.Bounds())
		}
		return frame, nil
	}), nil
}

// Shrink squashes the source toward one edge, uncovering the destination.
type Shrink struct {
	Direction Direction
}

func (Shrink) Name() string { return "shrink" }

func (e Shrink) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
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

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		frame := cloneFrame(dst)
		if t >= 1 {
			return frame, nil
		}
		if dir == DirectionLeft || dir == DirectionRight {
			cur := clampInt(round(float64(w)*(1-t)), 1, w)
			scaled := imaging.Resize(src, cur, h)
			x := 0
			if dir == DirectionRight {
				x = w - cur
			}
			copyRect(frame, x, 0, scaled, scaled.Bounds())
		} else {
			cur := clampInt(round(float64(h)*(1-t)), 1, h)
			scaled := imaging.Resize(src, w, cur)
			y := 0
			if dir == DirectionDown {
				y = h - cur
			}
			copyRect(frame, 0, y, scaled, scaled.Bounds())
		}
		return frame, nil
	}), nil
}

// ZoomIn shrinks the source into the center until it vanishes over the
// destination.
type ZoomIn struct{}

func (ZoomIn) Name() string { return "zoom_in" }

func (ZoomIn) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		frame := cloneFrame(dst)
		if t >= 1 {
			return frame, nil
		}
		scale := 1 - t
		curW := clampInt(round(float64(w)*scale), 1, w)
		curH := clampInt(round(float64(h)*scale), 1, h)
		patch := imaging.Resize(src, curW, curH)
		copyRect(frame, (w-curW)/2, (h-curH)/2, patch, patch.Bounds())
		return frame, nil
	}), nil
}

// ZoomOut grows the destination from a point at the center until it covers
// the source.
type ZoomOut struct{}

func (ZoomOut) Name() string { return "zoom_out" }

func (ZoomOut) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		if t >= 1 {
			return cloneFrame(dst), nil
		}
		frame := cloneFrame(src)
		curW := clampInt(round(float64(w)*t), 1, w)
		curH := clampInt(round(float64(h)*t), 1, h)
		patch := imaging.Resize(dst, curW, curH)
		copyRect(frame, (w-curW)/2, (h-curH)/2, patch, patch.Bounds())
		return frame, nil
	}), nil
}
