package effect

import "image"

// BarnDoorOpen slides the two halves of the source outward, revealing the
// destination through the widening gap.
type BarnDoorOpen struct{}

func (BarnDoorOpen) Name() string { return "barn_door_open" }

func (BarnDoorOpen) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	leftW := w / 2
	rightW := w - leftW

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		// rightW covers the odd-width case; both halves are gone at t=1.
		shift := round(t * float64(rightW))
		frame := cloneFrame(dst)

		// Left half slides left; its visible width shrinks.
		if vis := leftW - shift; vis > 0 {
			copyRect(frame, 0, 0, src, image.Rect(shift, 0, shift+vis, h))
		}
		// Right half slides right.
		if vis := rightW - shift; vis > 0 {
			copyRect(frame, w-vis, 0, src, image.Rect(leftW, 0, leftW+vis, h))
		}
		return frame, nil
	}), nil
}

// BarnDoorClose slides the two halves of the destination inward from the
// edges until they meet over the source.
type BarnDoorClose struct{}

func (BarnDoorClose) Name() string { return "barn_door_close" }

func (BarnDoorClose) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	leftW := w / 2
	rightW := w - leftW

	return newSequence(opts, func(_ int, t float64) (*image.RGBA, error) {
		shift := round(t * float64(rightW))
		frame := cloneFrame(src)

		lw := shift
		if lw > leftW {
			lw = leftW
		}
		if lw > 0 {
			copyRect(frame, 0, 0, dst, image.Rect(leftW-lw, 0, leftW, h))
		}
		rw := shift
		if rw > rightW {
			rw = rightW
		}
		if rw > 0 {
			copyRect(frame, w-rw, 0, dst, image.Rect(leftW, 0, leftW+rw, h))
		}
		return frame, nil
	}), nil
}
