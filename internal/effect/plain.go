package effect

import "image"

// Plain holds the source for the full duration. Useful as a no-op transition
// and as a fixture in tests.
type Plain struct{}

func (Plain) Name() string { return "plain" }

func (Plain) Sequence(src, dst *image.RGBA, opts Options) (*Sequence, error) {
	if err := validatePair(src, dst); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return newSequence(opts, func(_ int, _ float64) (*image.RGBA, error) {
		return cloneFrame(src), nil
	}), nil
}
